package migrate

import (
	"fmt"
	"log/slog"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/config"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
)

// Record remembers where a window lived before it was parked on the scratch
// workspace. Built once at startup, consumed once on restore.
type Record struct {
	Address           string
	OriginalWorkspace int
}

// compositor is the slice of the Hyprland client the coordinator needs.
type compositor interface {
	Clients() ([]hypr.Window, error)
	Dispatch(args string) error
}

// Coordinator parks ordinary windows on a scratch workspace while the
// background players are created, so no window competes with a player for
// the master position, then moves them back where they were.
type Coordinator struct {
	cfg    *config.Config
	hypr   compositor
	logger *slog.Logger
}

// NewCoordinator creates a coordinator.
func NewCoordinator(cfg *config.Config, comp compositor, logger *slog.Logger) *Coordinator {
	return &Coordinator{cfg: cfg, hypr: comp, logger: logger}
}

// MigrateOut moves every non-player window on a configured workspace to the
// scratch workspace and returns one record per moved window. When no scratch
// workspace is free the migration is skipped entirely with a warning; the
// players may then appear behind existing windows at startup, which is
// accepted over refusing to start.
//
// Individual move failures are logged and skipped; an unmoved window simply
// keeps its place and gets no record.
func (c *Coordinator) MigrateOut() ([]Record, error) {
	scratch, ok := c.cfg.ResolveScratchWorkspace()
	if !ok {
		c.logger.Warn("no free scratch workspace, skipping window migration")
		return nil, nil
	}

	configured := make(map[int]bool)
	for _, id := range c.cfg.Workspaces() {
		configured[id] = true
	}

	clients, err := c.hypr.Clients()
	if err != nil {
		return nil, fmt.Errorf("cannot list windows for migration: %w", err)
	}

	var records []Record
	for _, w := range clients {
		if c.cfg.IsPlayerTitle(w.Title) {
			continue
		}
		if !configured[w.Workspace.ID] {
			continue
		}
		move := fmt.Sprintf("movetoworkspacesilent %d,address:%s", scratch, w.Address)
		if err := c.hypr.Dispatch(move); err != nil {
			c.logger.Warn("cannot park window", "address", w.Address, "error", err)
			continue
		}
		records = append(records, Record{Address: w.Address, OriginalWorkspace: w.Workspace.ID})
	}

	c.logger.Info("parked windows on scratch workspace", "count", len(records), "scratch", scratch)
	return records, nil
}

// MigrateBack silently returns every recorded window to its original
// workspace. The returned set holds the workspaces that received a window
// back, so the caller can run one layout pass per affected workspace.
func (c *Coordinator) MigrateBack(records []Record) map[int]bool {
	affected := make(map[int]bool)
	for _, r := range records {
		move := fmt.Sprintf("movetoworkspacesilent %d,address:%s", r.OriginalWorkspace, r.Address)
		if err := c.hypr.Dispatch(move); err != nil {
			c.logger.Warn("cannot restore window", "address", r.Address, "workspace", r.OriginalWorkspace, "error", err)
			continue
		}
		affected[r.OriginalWorkspace] = true
	}
	if len(records) > 0 {
		c.logger.Info("restored windows from scratch workspace", "count", len(records))
	}
	return affected
}
