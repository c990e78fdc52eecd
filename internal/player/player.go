package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/config"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
)

// PlayState is a player's pause/resume state as last asserted by the daemon.
type PlayState int

const (
	Paused PlayState = iota
	Playing
)

func (s PlayState) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

// Slot binds one workspace to one background player process. The slot set is
// fixed for the daemon's lifetime; only the play state changes.
type Slot struct {
	Workspace  int
	MediaPath  string
	SocketPath string
	Title      string

	cmd   *exec.Cmd
	state PlayState
}

// compositor is the slice of the Hyprland client the supervisor needs.
type compositor interface {
	FocusedMonitor() (*hypr.Monitor, error)
	Dispatch(args string) error
}

// Supervisor owns the workspace → player process mapping. It launches one mpv
// instance per configured video workspace, each bound to a private control
// socket, and kills them all on shutdown.
type Supervisor struct {
	cfg    *config.Config
	hypr   compositor
	logger *slog.Logger

	mu    sync.Mutex
	slots map[int]*Slot
	order []int
}

// NewSupervisor builds the slot set from the video assignments in cfg.
// Nothing is launched until LaunchAll.
func NewSupervisor(cfg *config.Config, comp compositor, logger *slog.Logger) *Supervisor {
	s := &Supervisor{
		cfg:    cfg,
		hypr:   comp,
		logger: logger,
		slots:  make(map[int]*Slot),
	}
	for _, w := range cfg.Videos() {
		s.slots[w.Workspace] = &Slot{
			Workspace:  w.Workspace,
			MediaPath:  w.Path,
			SocketPath: cfg.PlayerSocketPath(w.Workspace),
			Title:      cfg.PlayerTitle(w.Workspace),
			state:      Paused,
		}
		s.order = append(s.order, w.Workspace)
	}
	return s
}

// Workspaces returns the slot workspace ids in configuration order.
func (s *Supervisor) Workspaces() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// HasSlot reports whether a workspace has a video player assigned.
func (s *Supervisor) HasSlot(workspace int) bool {
	_, ok := s.slots[workspace]
	return ok
}

// State returns the last asserted play state for a workspace's slot.
func (s *Supervisor) State(workspace int) (PlayState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[workspace]
	if !ok {
		return Paused, false
	}
	return slot.state, true
}

// SlotStates returns a snapshot of all slots, in configuration order.
func (s *Supervisor) SlotStates() []SlotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SlotStatus, 0, len(s.order))
	for _, ws := range s.order {
		slot := s.slots[ws]
		status := SlotStatus{
			Workspace: slot.Workspace,
			MediaPath: slot.MediaPath,
			State:     slot.state.String(),
		}
		if slot.cmd != nil && slot.cmd.Process != nil {
			status.PID = slot.cmd.Process.Pid
		}
		out = append(out, status)
	}
	return out
}

// SlotStatus is the externally visible snapshot of one slot.
type SlotStatus struct {
	Workspace int    `json:"workspace"`
	MediaPath string `json:"media_path"`
	State     string `json:"state"`
	PID       int    `json:"pid,omitempty"`
}

// LaunchAll starts one player per slot and forces each into the master
// position of its target workspace. Players start paused. Individual launch
// failures are logged and skipped; the remaining slots still come up.
func (s *Supervisor) LaunchAll(ctx context.Context) error {
	width, height := s.screenSize()

	for _, ws := range s.order {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slot := s.slots[ws]
		if err := s.launch(ctx, slot, width, height); err != nil {
			s.logger.Error("player launch failed", "workspace", ws, "error", err)
			continue
		}
		s.logger.Info("player started", "workspace", ws, "media", slot.MediaPath, "pid", slot.cmd.Process.Pid)
	}
	return nil
}

// screenSize resolves the focused monitor's resolution for player geometry.
// Falls back to 1920x1080 when the query fails so launch can still proceed.
func (s *Supervisor) screenSize() (int, int) {
	mon, err := s.hypr.FocusedMonitor()
	if err != nil {
		s.logger.Warn("cannot determine monitor resolution, using 1920x1080", "error", err)
		return 1920, 1080
	}
	return mon.Width, mon.Height
}

func (s *Supervisor) launch(ctx context.Context, slot *Slot, width, height int) error {
	// A dangling socket from a crashed player would make mpv fail to bind.
	if err := os.Remove(slot.SocketPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("cannot remove stale player socket", "path", slot.SocketPath, "error", err)
	}

	cmd := exec.Command("mpv",
		"--no-osc",
		"--no-stop-screensaver",
		"--input-ipc-server="+slot.SocketPath,
		"--loop",
		"--video-sync=display-resample",
		"--title="+slot.Title,
		fmt.Sprintf("--geometry=%dx%d+0+0", width, height),
		slot.MediaPath,
	)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mpv: %w", err)
	}

	s.mu.Lock()
	slot.cmd = cmd
	s.mu.Unlock()

	// Reap the process when it exits so crashed players don't linger as
	// zombies.
	go func() { _ = cmd.Wait() }()

	// mpv creates the control socket asynchronously and signals nothing,
	// so wait for it with a bounded poll before trusting the window exists.
	if err := waitForSocket(ctx, slot.SocketPath, s.cfg.Player.SocketTimeout.Std(), s.cfg.Player.PollInterval.Std()); err != nil {
		s.logger.Warn("player control socket not ready, continuing", "workspace", slot.Workspace, "error", err)
	}
	sleepCtx(ctx, s.cfg.Player.Settle.Std())

	// Pin the window to its workspace and the master position so the video
	// sits behind everything the tiler later places.
	sel := "title:" + slot.Title
	for _, args := range []string{
		fmt.Sprintf("movetoworkspace %d,%s", slot.Workspace, sel),
		"focuswindow " + sel,
		"layoutmsg focusmaster master",
		"splitratio exact 1.0",
	} {
		if err := s.hypr.Dispatch(args); err != nil {
			s.logger.Warn("player placement command failed", "workspace", slot.Workspace, "args", args, "error", err)
		}
	}

	s.SetPaused(slot.Workspace, true)
	return nil
}

// SetPaused asserts the pause property on a slot's player. A missing control
// socket (player not ready, or crashed) makes this a silent no-op; the next
// workspace change re-asserts the state once the socket appears.
func (s *Supervisor) SetPaused(workspace int, paused bool) {
	s.mu.Lock()
	slot, ok := s.slots[workspace]
	s.mu.Unlock()
	if !ok {
		return
	}
	if !socketExists(slot.SocketPath) {
		return
	}
	if err := setPauseProperty(slot.SocketPath, paused); err != nil {
		s.logger.Debug("pause command failed", "workspace", workspace, "error", err)
		return
	}
	s.mu.Lock()
	if paused {
		slot.state = Paused
	} else {
		slot.state = Playing
	}
	s.mu.Unlock()
}

// TerminateAll kills every tracked player process and removes its control
// socket. Idempotent and fast; safe to call from a signal path more than
// once.
func (s *Supervisor) TerminateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ws := range s.order {
		slot := s.slots[ws]
		if slot.cmd != nil && slot.cmd.Process != nil {
			if err := slot.cmd.Process.Kill(); err != nil && !isProcessDone(err) {
				s.logger.Warn("failed to kill player", "workspace", ws, "error", err)
			}
			slot.cmd = nil
		}
		if err := os.Remove(slot.SocketPath); err != nil && !os.IsNotExist(err) {
			s.logger.Debug("failed to remove player socket", "path", slot.SocketPath, "error", err)
		}
		slot.state = Paused
	}
}

func isProcessDone(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}

// waitForSocket polls until path exists as a unix socket, the timeout
// elapses, or the context is cancelled.
func waitForSocket(ctx context.Context, path string, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		if socketExists(path) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("socket %s not ready after %v", path, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func socketExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode()&os.ModeSocket != 0
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
