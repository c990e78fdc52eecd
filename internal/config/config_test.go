package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWallpaperKind(t *testing.T) {
	cases := []struct {
		path string
		want MediaKind
	}{
		{"/media/a.mp4", MediaVideo},
		{"/media/a.MKV", MediaVideo},
		{"/media/b.webm", MediaVideo},
		{"/media/c.png", MediaImage},
		{"/media/c.JPEG", MediaImage},
		{"/media/d.txt", ""},
		{"/media/noext", ""},
	}
	for _, tc := range cases {
		got := Wallpaper{Workspace: 1, Path: tc.path}.Kind()
		if got != tc.want {
			t.Errorf("Kind(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestValidate_RejectsDuplicateWorkspace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wallpapers = []Wallpaper{
		{Workspace: 1, Path: "/a.mp4"},
		{Workspace: 1, Path: "/b.mp4"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate workspace")
	}
}

func TestValidate_RejectsBadWorkspaceID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wallpapers = []Wallpaper{{Workspace: 0, Path: "/a.mp4"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for workspace id 0")
	}
}

func TestValidate_RejectsUnsupportedExtension(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wallpapers = []Wallpaper{{Workspace: 1, Path: "/a.gif"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestResolveScratchWorkspace_PicksFirstFreeID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wallpapers = []Wallpaper{
		{Workspace: 1, Path: "/a.mp4"},
		{Workspace: 2, Path: "/b.mp4"},
	}
	id, ok := cfg.ResolveScratchWorkspace()
	if !ok {
		t.Fatal("expected a scratch workspace")
	}
	if id != 3 {
		t.Fatalf("expected scratch workspace 3, got %d", id)
	}
}

func TestResolveScratchWorkspace_NoneFreeWhenAllConfigured(t *testing.T) {
	cfg := DefaultConfig()
	for i := 1; i <= 10; i++ {
		cfg.Wallpapers = append(cfg.Wallpapers, Wallpaper{Workspace: i, Path: "/a.mp4"})
	}
	if _, ok := cfg.ResolveScratchWorkspace(); ok {
		t.Fatal("expected no scratch workspace when all ten ids are configured")
	}
}

func TestResolveScratchWorkspace_ExplicitOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScratchWorkspace = 11
	if _, ok := cfg.ResolveScratchWorkspace(); ok {
		t.Fatal("expected explicit scratch workspace beyond 10 to be rejected")
	}
}

func TestPlayerSocketPathAndTitle(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.PlayerSocketPath(3); got != "/tmp/mpv-ws-3-ipc" {
		t.Fatalf("PlayerSocketPath(3) = %q", got)
	}
	if got := cfg.PlayerTitle(3); got != "mpv-workspace-video-3" {
		t.Fatalf("PlayerTitle(3) = %q", got)
	}
	if !cfg.IsPlayerTitle("mpv-workspace-video-3") {
		t.Fatal("IsPlayerTitle should match a player window title")
	}
	if cfg.IsPlayerTitle("firefox") {
		t.Fatal("IsPlayerTitle should not match ordinary titles")
	}
}

func TestLoadFromPath_AppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
wallpapers:
  - workspace: 1
    path: /media/ocean.mp4
  - workspace: 2
    path: /media/forest.png
gap_size: 20
player:
  settle: 1s
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.GapSize != 20 {
		t.Fatalf("GapSize = %d, want 20", cfg.GapSize)
	}
	if cfg.TopGap != 30 {
		t.Fatalf("TopGap = %d, want default 30", cfg.TopGap)
	}
	if cfg.Player.Settle.Std() != time.Second {
		t.Fatalf("Player.Settle = %v, want 1s", cfg.Player.Settle)
	}
	if cfg.Player.TitlePrefix != "mpv-workspace-video" {
		t.Fatalf("Player.TitlePrefix = %q, want default", cfg.Player.TitlePrefix)
	}
	if len(cfg.Videos()) != 1 || cfg.Videos()[0].Workspace != 1 {
		t.Fatalf("Videos() = %+v", cfg.Videos())
	}
	if len(cfg.Images()) != 1 || cfg.Images()[0].Workspace != 2 {
		t.Fatalf("Images() = %+v", cfg.Images())
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
