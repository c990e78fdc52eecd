package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/config"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/ipc"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/migrate"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/player"
)

// eventSource is the slice of the Hyprland client the reactor needs.
type eventSource interface {
	Subscribe(ctx context.Context) (<-chan hypr.Event, error)
	ActiveWorkspace() (int, error)
}

// playerPool is the supervisor surface the reactor drives.
type playerPool interface {
	Workspaces() []int
	HasSlot(workspace int) bool
	LaunchAll(ctx context.Context) error
	SetPaused(workspace int, paused bool)
	TerminateAll()
	SlotStates() []player.SlotStatus
}

// windowTiler is the layout surface the reactor drives.
type windowTiler interface {
	Retile(workspace int) error
	RetileOccupied() error
	PlaceProvisional(address string) error
	FollowResize(address string, workspace int) error
}

// windowMigrator parks and restores windows around player startup.
type windowMigrator interface {
	MigrateOut() ([]migrate.Record, error)
	MigrateBack(records []migrate.Record) map[int]bool
}

// imageBackend shows static image wallpapers on non-video workspaces.
type imageBackend interface {
	Activate(workspace int)
	Blank()
	Shutdown()
}

// ReloadFunc re-reads the configuration from disk. Installed by the caller so
// the reactor does not care where the config file lives.
type ReloadFunc func() (*config.Config, error)

// command is one control request serialized into the reactor loop, so IPC
// clients never race against event handling.
type command struct {
	run  func() error
	done chan error
}

// Reactor is the daemon core: it runs the startup sequence, then processes
// compositor events and control commands one at a time on a single loop.
type Reactor struct {
	cfg       *config.Config
	hypr      eventSource
	players   playerPool
	tiler     windowTiler
	migrator  windowMigrator
	wallpaper imageBackend
	logger    *slog.Logger
	reload    ReloadFunc

	cmds    chan command
	started time.Time

	mu       sync.Mutex
	state    State
	activeWS int
}

// NewReactor wires the daemon core from its parts. reload may be nil when
// runtime config reloading is not wanted.
func NewReactor(cfg *config.Config, events eventSource, players playerPool, tiler windowTiler, migrator windowMigrator, wallpaper imageBackend, reload ReloadFunc, logger *slog.Logger) *Reactor {
	return &Reactor{
		cfg:       cfg,
		hypr:      events,
		players:   players,
		tiler:     tiler,
		migrator:  migrator,
		wallpaper: wallpaper,
		logger:    logger,
		reload:    reload,
		cmds:      make(chan command),
		state:     StateInit,
	}
}

// State returns the current lifecycle state.
func (r *Reactor) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Reactor) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	r.logger.Info("state changed", "state", s.String())
}

// ActiveWorkspace returns the last workspace the reactor switched playback to.
func (r *Reactor) ActiveWorkspace() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeWS
}

func (r *Reactor) setActiveWorkspace(ws int) {
	r.mu.Lock()
	r.activeWS = ws
	r.mu.Unlock()
}

// Run executes the full daemon lifecycle: park windows, launch players,
// restore windows, tile, then listen for events until ctx is cancelled.
// Teardown always runs, whatever made the loop exit.
func (r *Reactor) Run(ctx context.Context) error {
	r.started = time.Now()
	defer r.shutdown()

	r.setState(StateMigratingWindows)
	records, err := r.migrator.MigrateOut()
	if err != nil {
		r.logger.Warn("window migration failed, continuing without it", "error", err)
	}

	r.setState(StateLaunchingPlayers)
	if err := r.players.LaunchAll(ctx); err != nil {
		return fmt.Errorf("player launch aborted: %w", err)
	}

	r.setState(StateRestoringWindows)
	affected := r.migrator.MigrateBack(records)

	r.setState(StateInitialTiling)
	ids := make([]int, 0, len(affected))
	for id := range affected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if err := r.tiler.Retile(id); err != nil {
			r.logger.Warn("initial layout pass failed", "workspace", id, "error", err)
		}
	}

	active, err := r.hypr.ActiveWorkspace()
	if err != nil {
		r.logger.Warn("cannot determine active workspace, pausing all players", "error", err)
		active = 0
	}
	r.applyWorkspace(active)

	r.setState(StateListening)
	events, err := r.hypr.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("cannot subscribe to compositor events: %w", err)
	}
	r.logger.Info("listening for compositor events", "active_workspace", active)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("compositor event stream closed")
			}
			r.handleEvent(ctx, ev)
		case cmd := <-r.cmds:
			cmd.done <- cmd.run()
		}
	}
}

func (r *Reactor) shutdown() {
	r.setState(StateShuttingDown)
	r.players.TerminateAll()
	r.wallpaper.Shutdown()
	r.setState(StateTerminated)
}

func (r *Reactor) handleEvent(ctx context.Context, ev hypr.Event) {
	switch ev.Kind {
	case hypr.EventWorkspaceChanged:
		r.applyWorkspace(ev.Workspace)

	case hypr.EventWindowOpened:
		r.handleWindowOpened(ctx, ev)

	case hypr.EventWindowClosed:
		sleepCtx(ctx, r.cfg.Tiling.CloseSettle.Std())
		if err := r.tiler.RetileOccupied(); err != nil {
			r.logger.Warn("layout pass after window close failed", "error", err)
		}

	case hypr.EventWindowResized:
		ws := r.ActiveWorkspace()
		if ws <= 0 {
			return
		}
		if err := r.tiler.FollowResize(ev.Address, ws); err != nil {
			r.logger.Warn("resize follow failed", "address", ev.Address, "error", err)
		}
	}
}

// applyWorkspace switches playback so exactly the player assigned to ws runs
// and every other one is paused, then updates the image backend. A workspace
// with no slot pauses everything.
func (r *Reactor) applyWorkspace(ws int) {
	for _, slot := range r.players.Workspaces() {
		r.players.SetPaused(slot, slot != ws)
	}
	if r.players.HasSlot(ws) {
		r.wallpaper.Blank()
	} else {
		r.wallpaper.Activate(ws)
	}
	r.setActiveWorkspace(ws)
}

func (r *Reactor) handleWindowOpened(ctx context.Context, ev hypr.Event) {
	// Player windows are positioned by the supervisor, not the tiler.
	if r.cfg.IsPlayerTitle(ev.Title) {
		return
	}

	if err := r.tiler.PlaceProvisional(ev.Address); err != nil {
		r.logger.Warn("provisional placement failed", "address", ev.Address, "error", err)
	}
	sleepCtx(ctx, r.cfg.Tiling.OpenSettle.Std())

	ws := ev.Workspace
	if ws <= 0 {
		ws = r.ActiveWorkspace()
	}
	if ws <= 0 {
		return
	}
	if err := r.tiler.Retile(ws); err != nil {
		r.logger.Warn("layout pass after window open failed", "workspace", ws, "error", err)
	}
}

// exec runs fn inside the reactor loop and waits for its result. Fails fast
// when the daemon is still starting up or shutting down instead of blocking
// the IPC client indefinitely.
func (r *Reactor) exec(fn func() error) error {
	if s := r.State(); s != StateListening {
		return fmt.Errorf("daemon not ready (state: %s)", s)
	}
	cmd := command{run: fn, done: make(chan error, 1)}
	select {
	case r.cmds <- cmd:
	case <-time.After(5 * time.Second):
		return errors.New("daemon busy")
	}
	return <-cmd.done
}

// Status implements ipc.Controller. Safe to call from any goroutine.
func (r *Reactor) Status() ipc.StatusData {
	r.mu.Lock()
	state := r.state
	active := r.activeWS
	r.mu.Unlock()

	slots := r.players.SlotStates()
	infos := make([]ipc.SlotInfo, 0, len(slots))
	for _, s := range slots {
		infos = append(infos, ipc.SlotInfo{
			Workspace: s.Workspace,
			MediaPath: s.MediaPath,
			State:     s.State,
			PID:       s.PID,
		})
	}

	var uptime int64
	if !r.started.IsZero() {
		uptime = int64(time.Since(r.started).Seconds())
	}
	return ipc.StatusData{
		DaemonState:     state.String(),
		ActiveWorkspace: active,
		Slots:           infos,
		UptimeSeconds:   uptime,
	}
}

// Retile implements ipc.Controller. Workspace 0 means the active workspace.
func (r *Reactor) Retile(workspace int) error {
	return r.exec(func() error {
		ws := workspace
		if ws == 0 {
			ws = r.ActiveWorkspace()
		}
		if ws <= 0 {
			return errors.New("no workspace to tile")
		}
		return r.tiler.Retile(ws)
	})
}

// SetPaused implements ipc.Controller. It overrides the automatic playback
// choice until the next workspace change reasserts it.
func (r *Reactor) SetPaused(workspace int, paused bool) error {
	return r.exec(func() error {
		if !r.players.HasSlot(workspace) {
			return fmt.Errorf("no player on workspace %d", workspace)
		}
		r.players.SetPaused(workspace, paused)
		return nil
	})
}

// Reload implements ipc.Controller. Only layout parameters and settle delays
// take effect at runtime; changing the wallpaper assignments requires a
// restart, since the player set is fixed at startup.
func (r *Reactor) Reload() error {
	if r.reload == nil {
		return errors.New("config reloading is not enabled")
	}
	return r.exec(func() error {
		fresh, err := r.reload()
		if err != nil {
			return fmt.Errorf("config reload failed: %w", err)
		}
		if !sameWallpapers(r.cfg.Wallpapers, fresh.Wallpapers) {
			r.logger.Warn("wallpaper assignments changed on disk, restart to apply them")
		}
		r.cfg.GapSize = fresh.GapSize
		r.cfg.TopGap = fresh.TopGap
		r.cfg.Tiling = fresh.Tiling
		r.cfg.Player.Settle = fresh.Player.Settle
		r.cfg.Player.SocketTimeout = fresh.Player.SocketTimeout
		r.cfg.Player.PollInterval = fresh.Player.PollInterval
		r.logger.Info("configuration reloaded", "gap_size", r.cfg.GapSize, "top_gap", r.cfg.TopGap)
		return nil
	})
}

func sameWallpapers(a, b []config.Wallpaper) bool {
	if len(a) != len(b) {
		return false
	}
	byWS := make(map[int]string, len(a))
	for _, w := range a {
		byWS[w.Workspace] = w.Path
	}
	for _, w := range b {
		if byWS[w.Workspace] != w.Path {
			return false
		}
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
