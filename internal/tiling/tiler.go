package tiling

import (
	"fmt"
	"log"
	"sort"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/config"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
)

// compositor is the slice of the Hyprland client the tiler needs.
type compositor interface {
	Clients() ([]hypr.Window, error)
	FocusedMonitor() (*hypr.Monitor, error)
	Dispatch(args string) error
}

// Tiler arranges ordinary floating windows into the pseudo-tiled layout.
// It keeps no window state: every pass fetches the current window set fresh,
// because windows come and go under external control at any time.
type Tiler struct {
	cfg  *config.Config
	hypr compositor
}

// NewTiler creates a tiler against the given compositor.
func NewTiler(cfg *config.Config, comp compositor) *Tiler {
	return &Tiler{cfg: cfg, hypr: comp}
}

// ListTileable returns the windows on a workspace that participate in
// tiling: floating, and not a background player. Tiled or fullscreen windows
// the user arranged deliberately are left alone.
func (t *Tiler) ListTileable(workspace int) ([]hypr.Window, error) {
	clients, err := t.hypr.Clients()
	if err != nil {
		return nil, err
	}
	var out []hypr.Window
	for _, w := range clients {
		if w.Workspace.ID != workspace {
			continue
		}
		if !w.Floating {
			continue
		}
		if t.cfg.IsPlayerTitle(w.Title) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// Retile runs one full layout pass for a workspace. A failure to enumerate
// windows or resolve the monitor skips the pass; individual geometry command
// failures are logged and ignored, since the next pass self-corrects.
func (t *Tiler) Retile(workspace int) error {
	windows, err := t.ListTileable(workspace)
	if err != nil {
		return fmt.Errorf("cannot list windows on workspace %d: %w", workspace, err)
	}
	if len(windows) == 0 {
		return nil
	}

	monitor, err := t.monitorRect()
	if err != nil {
		return err
	}

	positions := ComputeLayout(len(windows), monitor, t.cfg.GapSize, t.cfg.TopGap)
	log.Printf("Tiling workspace %d: %d window(s)", workspace, len(windows))
	for i, w := range windows {
		t.applyRect(w.Address, positions[i])
	}
	return nil
}

// RetileOccupied runs a layout pass for every workspace that currently has
// tileable windows. Used after a window closes, since the close event does
// not say which workspace the window was on.
func (t *Tiler) RetileOccupied() error {
	clients, err := t.hypr.Clients()
	if err != nil {
		return fmt.Errorf("cannot list windows: %w", err)
	}

	occupied := make(map[int]bool)
	for _, w := range clients {
		if w.Floating && !t.cfg.IsPlayerTitle(w.Title) && w.Workspace.ID > 0 {
			occupied[w.Workspace.ID] = true
		}
	}

	ids := make([]int, 0, len(occupied))
	for id := range occupied {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if err := t.Retile(id); err != nil {
			log.Printf("Retile of workspace %d failed: %v", id, err)
		}
	}
	return nil
}

// PlaceProvisional immediately gives a just-opened window the near-full-area
// placement, before the settled layout pass runs.
func (t *Tiler) PlaceProvisional(address string) error {
	monitor, err := t.monitorRect()
	if err != nil {
		return err
	}
	t.applyRect(address, ProvisionalRect(monitor, t.cfg.GapSize, t.cfg.TopGap))
	return nil
}

func (t *Tiler) monitorRect() (Rect, error) {
	mon, err := t.hypr.FocusedMonitor()
	if err != nil {
		return Rect{}, fmt.Errorf("cannot resolve focused monitor: %w", err)
	}
	return Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height}, nil
}

func (t *Tiler) applyRect(address string, r Rect) {
	resize := fmt.Sprintf("resizewindowpixel exact %d %d,address:%s", r.Width, r.Height, address)
	if err := t.hypr.Dispatch(resize); err != nil {
		log.Printf("Resize of %s failed: %v", address, err)
	}
	move := fmt.Sprintf("movewindowpixel exact %d %d,address:%s", r.X, r.Y, address)
	if err := t.hypr.Dispatch(move); err != nil {
		log.Printf("Move of %s failed: %v", address, err)
	}
}
