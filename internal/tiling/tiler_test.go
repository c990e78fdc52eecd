package tiling

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/config"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
)

type fakeCompositor struct {
	windows    []hypr.Window
	monitorErr error
	clientsErr error
	dispatched []string
}

func (f *fakeCompositor) Clients() ([]hypr.Window, error) {
	if f.clientsErr != nil {
		return nil, f.clientsErr
	}
	return f.windows, nil
}

func (f *fakeCompositor) FocusedMonitor() (*hypr.Monitor, error) {
	if f.monitorErr != nil {
		return nil, f.monitorErr
	}
	return &hypr.Monitor{Name: "DP-1", Width: 1920, Height: 1080, Focused: true}, nil
}

func (f *fakeCompositor) Dispatch(args string) error {
	f.dispatched = append(f.dispatched, args)
	return nil
}

func floating(addr string, ws, x, y, w, h int) hypr.Window {
	return hypr.Window{
		Address:   addr,
		At:        [2]int{x, y},
		Size:      [2]int{w, h},
		Workspace: hypr.WorkspaceRef{ID: ws, Name: fmt.Sprint(ws)},
		Floating:  true,
		Title:     "app-" + addr,
	}
}

func newTestTiler(comp *fakeCompositor) *Tiler {
	return NewTiler(config.DefaultConfig(), comp)
}

func TestListTileable_Filtering(t *testing.T) {
	comp := &fakeCompositor{windows: []hypr.Window{
		floating("0x1", 2, 0, 0, 100, 100),
		floating("0x2", 3, 0, 0, 100, 100), // wrong workspace
		{Address: "0x3", Workspace: hypr.WorkspaceRef{ID: 2}, Floating: false, Title: "tiled"},
		{Address: "0x4", Workspace: hypr.WorkspaceRef{ID: 2}, Floating: true, Title: "mpv-workspace-video-2"},
	}}
	tiler := newTestTiler(comp)

	got, err := tiler.ListTileable(2)
	if err != nil {
		t.Fatalf("ListTileable error: %v", err)
	}
	if len(got) != 1 || got[0].Address != "0x1" {
		t.Fatalf("ListTileable = %+v, want only 0x1", got)
	}
}

func TestRetile_DispatchesGeometryForEachWindow(t *testing.T) {
	comp := &fakeCompositor{windows: []hypr.Window{
		floating("0x1", 2, 0, 0, 100, 100),
		floating("0x2", 2, 500, 0, 100, 100),
		floating("0x3", 2, 900, 0, 100, 100),
	}}
	tiler := newTestTiler(comp)

	if err := tiler.Retile(2); err != nil {
		t.Fatalf("Retile error: %v", err)
	}

	// One resize and one move per window.
	if len(comp.dispatched) != 6 {
		t.Fatalf("dispatched %d commands, want 6: %v", len(comp.dispatched), comp.dispatched)
	}
	// First window of the n=3 pattern is the full-height left column.
	if comp.dispatched[0] != "resizewindowpixel exact 937 1020,address:0x1" {
		t.Fatalf("first resize = %q", comp.dispatched[0])
	}
	if comp.dispatched[1] != "movewindowpixel exact 15 45,address:0x1" {
		t.Fatalf("first move = %q", comp.dispatched[1])
	}
}

func TestRetile_EmptyWorkspaceIsNoOp(t *testing.T) {
	comp := &fakeCompositor{}
	tiler := newTestTiler(comp)
	if err := tiler.Retile(2); err != nil {
		t.Fatalf("Retile error: %v", err)
	}
	if len(comp.dispatched) != 0 {
		t.Fatalf("dispatched %v, want nothing", comp.dispatched)
	}
}

func TestRetile_MonitorQueryFailureSkipsPass(t *testing.T) {
	comp := &fakeCompositor{
		windows:    []hypr.Window{floating("0x1", 2, 0, 0, 100, 100)},
		monitorErr: errors.New("no monitors"),
	}
	tiler := newTestTiler(comp)
	if err := tiler.Retile(2); err == nil {
		t.Fatal("expected error when monitor cannot be resolved")
	}
	if len(comp.dispatched) != 0 {
		t.Fatalf("dispatched %v despite missing monitor", comp.dispatched)
	}
}

func TestRetileOccupied_CoversAllWorkspacesWithWindows(t *testing.T) {
	comp := &fakeCompositor{windows: []hypr.Window{
		floating("0x1", 1, 0, 0, 100, 100),
		floating("0x2", 4, 0, 0, 100, 100),
		{Address: "0x3", Workspace: hypr.WorkspaceRef{ID: 7}, Floating: true, Title: "mpv-workspace-video-7"},
	}}
	tiler := newTestTiler(comp)

	if err := tiler.RetileOccupied(); err != nil {
		t.Fatalf("RetileOccupied error: %v", err)
	}

	var touched []string
	for _, d := range comp.dispatched {
		if strings.HasPrefix(d, "movewindowpixel") {
			touched = append(touched, d)
		}
	}
	// Workspaces 1 and 4 each get one window moved; the player on 7 is
	// not tileable, so workspace 7 gets no pass.
	if len(touched) != 2 {
		t.Fatalf("moved %d windows, want 2: %v", len(touched), comp.dispatched)
	}
}

func TestPlaceProvisional(t *testing.T) {
	comp := &fakeCompositor{}
	tiler := newTestTiler(comp)

	if err := tiler.PlaceProvisional("0xabc"); err != nil {
		t.Fatalf("PlaceProvisional error: %v", err)
	}
	want := []string{
		"resizewindowpixel exact 1890 1035,address:0xabc",
		"movewindowpixel exact 15 45,address:0xabc",
	}
	if len(comp.dispatched) != 2 || comp.dispatched[0] != want[0] || comp.dispatched[1] != want[1] {
		t.Fatalf("dispatched %v, want %v", comp.dispatched, want)
	}
}

func TestFindAdjacent_PicksMinimumGapWithOverlap(t *testing.T) {
	target := floating("0xt", 1, 15, 45, 900, 1000)
	near := floating("0xa", 1, 930, 45, 400, 1000)    // gap 15
	farther := floating("0xb", 1, 960, 45, 400, 1000) // gap 45
	below := floating("0xc", 1, 930, 2000, 400, 100)  // no vertical overlap

	got := FindAdjacent([]hypr.Window{target, farther, near, below}, target, EdgeRight)
	if got == nil || got.Address != "0xa" {
		t.Fatalf("FindAdjacent = %+v, want 0xa", got)
	}
}

func TestFindAdjacent_NoCandidateBeyondTolerance(t *testing.T) {
	target := floating("0xt", 1, 15, 45, 900, 1000)
	far := floating("0xa", 1, 1200, 45, 400, 1000) // gap 285
	if got := FindAdjacent([]hypr.Window{target, far}, target, EdgeRight); got != nil {
		t.Fatalf("FindAdjacent = %+v, want nil", got)
	}
}

func TestFindAdjacent_LeftEdge(t *testing.T) {
	target := floating("0xt", 1, 500, 45, 400, 1000)
	left := floating("0xa", 1, 15, 45, 470, 1000) // right edge 485, gap 15
	got := FindAdjacent([]hypr.Window{target, left}, target, EdgeLeft)
	if got == nil || got.Address != "0xa" {
		t.Fatalf("FindAdjacent = %+v, want 0xa", got)
	}
}

func TestFollowResize_GrowsRightNeighbourToRestoreGap(t *testing.T) {
	// Target shrank from 937 to 930 wide; the right neighbour keeps its
	// right edge and grows leftward until the gap is 15 again.
	target := floating("0xt", 1, 15, 45, 930, 1000)
	right := floating("0xa", 1, 967, 45, 937, 1000)
	comp := &fakeCompositor{windows: []hypr.Window{target, right}}
	tiler := newTestTiler(comp)

	if err := tiler.FollowResize("0xt", 1); err != nil {
		t.Fatalf("FollowResize error: %v", err)
	}

	// Target's right edge is 945, so the neighbour moves to 960 and its
	// width becomes (967+937)-945-15 = 944.
	var gotResize, gotMove bool
	for _, d := range comp.dispatched {
		if d == "resizewindowpixel exact 944 1000,address:0xa" {
			gotResize = true
		}
		if d == "movewindowpixel exact 960 45,address:0xa" {
			gotMove = true
		}
	}
	if !gotResize || !gotMove {
		t.Fatalf("right neighbour not adjusted to restore gap: %v", comp.dispatched)
	}
}
