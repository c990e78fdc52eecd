package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/config"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
)

type fakeCompositor struct {
	dispatched []string
}

func (f *fakeCompositor) FocusedMonitor() (*hypr.Monitor, error) {
	return &hypr.Monitor{Name: "DP-1", Width: 1920, Height: 1080, Focused: true}, nil
}

func (f *fakeCompositor) Dispatch(args string) error {
	f.dispatched = append(f.dispatched, args)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Player.SocketDir = t.TempDir()
	cfg.Wallpapers = []config.Wallpaper{
		{Workspace: 1, Path: "/media/a.mp4"},
		{Workspace: 2, Path: "/media/b.mp4"},
		{Workspace: 5, Path: "/media/c.png"}, // image: no slot
	}
	return cfg
}

func TestNewSupervisor_BuildsVideoSlotsOnly(t *testing.T) {
	s := NewSupervisor(testConfig(t), &fakeCompositor{}, discardLogger())

	ids := s.Workspaces()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("Workspaces() = %v, want [1 2]", ids)
	}
	if s.HasSlot(5) {
		t.Fatal("image workspace 5 should not have a player slot")
	}
	if state, ok := s.State(1); !ok || state != Paused {
		t.Fatalf("State(1) = %v,%v, want paused slot", state, ok)
	}
}

func TestSetPaused_MissingSocketIsSilentNoOp(t *testing.T) {
	s := NewSupervisor(testConfig(t), &fakeCompositor{}, discardLogger())

	done := make(chan struct{})
	go func() {
		s.SetPaused(1, false)
		s.SetPaused(99, true) // unconfigured workspace
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SetPaused blocked on a missing socket")
	}

	if state, _ := s.State(1); state != Paused {
		t.Fatalf("state changed despite missing socket: %v", state)
	}
}

func TestSetPaused_SendsMpvCommand(t *testing.T) {
	cfg := testConfig(t)
	s := NewSupervisor(cfg, &fakeCompositor{}, discardLogger())

	sock := cfg.PlayerSocketPath(1)
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		n, _ := conn.Read(buf)
		got <- string(buf[:n])
	}()

	s.SetPaused(1, false)

	select {
	case line := <-got:
		var cmd mpvCommand
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			t.Fatalf("player received invalid JSON %q: %v", line, err)
		}
		if len(cmd.Command) != 3 || cmd.Command[0] != "set_property" || cmd.Command[1] != "pause" || cmd.Command[2] != false {
			t.Fatalf("unexpected command %v", cmd.Command)
		}
	case <-time.After(time.Second):
		t.Fatal("no command received on player socket")
	}

	if state, _ := s.State(1); state != Playing {
		t.Fatalf("State(1) = %v, want playing", state)
	}
}

func TestWaitForSocket_SucceedsWhenSocketAppears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.sock")

	go func() {
		time.Sleep(50 * time.Millisecond)
		ln, err := net.Listen("unix", path)
		if err == nil {
			defer ln.Close()
			time.Sleep(time.Second)
		}
	}()

	err := waitForSocket(context.Background(), path, 2*time.Second, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("waitForSocket() error: %v", err)
	}
}

func TestWaitForSocket_TimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.sock")
	start := time.Now()
	err := waitForSocket(context.Background(), path, 100*time.Millisecond, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("waitForSocket took too long: %v", time.Since(start))
	}
}

func TestWaitForSocket_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := waitForSocket(ctx, filepath.Join(t.TempDir(), "never.sock"), time.Minute, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestIsProcessDone_MatchesWrappedError(t *testing.T) {
	if !isProcessDone(os.ErrProcessDone) {
		t.Fatal("bare ErrProcessDone not recognized")
	}
	if !isProcessDone(fmt.Errorf("kill: %w", os.ErrProcessDone)) {
		t.Fatal("wrapped ErrProcessDone not recognized")
	}
	if isProcessDone(errors.New("permission denied")) {
		t.Fatal("unrelated error misread as process-done")
	}
}

func TestTerminateAll_IdempotentWithoutProcesses(t *testing.T) {
	s := NewSupervisor(testConfig(t), &fakeCompositor{}, discardLogger())
	s.TerminateAll()
	s.TerminateAll()
}
