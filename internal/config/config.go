package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MediaKind classifies a wallpaper assignment by its file extension.
type MediaKind string

const (
	MediaVideo MediaKind = "video" // rendered by a looping mpv player
	MediaImage MediaKind = "image" // rendered by hyprpaper
)

var videoExts = map[string]bool{
	".mp4": true, ".mkv": true, ".webm": true, ".mov": true, ".avi": true,
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".webp": true,
}

// Wallpaper assigns one media file to one workspace.
type Wallpaper struct {
	Workspace int    `yaml:"workspace"`
	Path      string `yaml:"path"`
}

// Kind returns the media kind for the assignment, or an empty string when the
// extension is not a supported video or image format.
func (w Wallpaper) Kind() MediaKind {
	ext := strings.ToLower(filepath.Ext(w.Path))
	switch {
	case videoExts[ext]:
		return MediaVideo
	case imageExts[ext]:
		return MediaImage
	default:
		return ""
	}
}

// PlayerConfig controls the mpv player processes.
type PlayerConfig struct {
	// TitlePrefix names player windows so they can be told apart from
	// ordinary windows (window title = "<prefix>-<workspace>").
	TitlePrefix string `yaml:"title_prefix"`
	// SocketDir is where per-player control sockets live (default /tmp).
	SocketDir string `yaml:"socket_dir,omitempty"`
	// Settle is how long to wait after a player window appears before
	// forcing it into place.
	Settle Duration `yaml:"settle"`
	// SocketTimeout bounds the poll-until-ready wait for a player's
	// control socket after launch.
	SocketTimeout Duration `yaml:"socket_timeout"`
	// PollInterval is the readiness poll interval.
	PollInterval Duration `yaml:"poll_interval"`
}

// TilingConfig controls the pseudo-tiling settle delays.
type TilingConfig struct {
	// OpenSettle is the delay between a window-open event and the layout
	// pass, giving the compositor time to map the window.
	OpenSettle Duration `yaml:"open_settle"`
	// CloseSettle is the delay before re-tiling after a window closes.
	CloseSettle Duration `yaml:"close_settle"`
}

// Config is the daemon configuration. It is loaded once and passed into each
// component at construction; components never mutate it.
type Config struct {
	Wallpapers []Wallpaper `yaml:"wallpapers"`

	// GapSize is the uniform pixel gap between tiled windows and the
	// screen edges.
	GapSize int `yaml:"gap_size"`
	// TopGap is extra space reserved at the top of the screen for a
	// status bar.
	TopGap int `yaml:"top_gap"`
	// ScratchWorkspace is the holding workspace used during startup
	// migration. 0 picks the first unconfigured id in 1..10.
	ScratchWorkspace int `yaml:"scratch_workspace,omitempty"`

	Player PlayerConfig `yaml:"player"`
	Tiling TilingConfig `yaml:"tiling"`
}

// DefaultConfig returns the built-in defaults (no wallpapers assigned).
func DefaultConfig() *Config {
	return &Config{
		GapSize: 15,
		TopGap:  30,
		Player: PlayerConfig{
			TitlePrefix:   "mpv-workspace-video",
			Settle:        Duration(2 * time.Second),
			SocketTimeout: Duration(5 * time.Second),
			PollInterval:  Duration(100 * time.Millisecond),
		},
		Tiling: TilingConfig{
			OpenSettle:  Duration(300 * time.Millisecond),
			CloseSettle: Duration(100 * time.Millisecond),
		},
	}
}

// maxAddressableWorkspace bounds the workspace ids the migration scratch
// logic considers; matches Hyprland's default ten-workspace binds.
const maxAddressableWorkspace = 10

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.GapSize < 0 {
		return fmt.Errorf("gap_size must not be negative (got %d)", c.GapSize)
	}
	if c.TopGap < 0 {
		return fmt.Errorf("top_gap must not be negative (got %d)", c.TopGap)
	}
	if c.Player.TitlePrefix == "" {
		return fmt.Errorf("player.title_prefix must not be empty")
	}

	seen := make(map[int]bool, len(c.Wallpapers))
	for _, w := range c.Wallpapers {
		if w.Workspace < 1 {
			return fmt.Errorf("wallpaper workspace id must be >= 1 (got %d)", w.Workspace)
		}
		if seen[w.Workspace] {
			return fmt.Errorf("workspace %d has more than one wallpaper assigned", w.Workspace)
		}
		seen[w.Workspace] = true
		if w.Path == "" {
			return fmt.Errorf("wallpaper for workspace %d has no path", w.Workspace)
		}
		if w.Kind() == "" {
			return fmt.Errorf("wallpaper %q for workspace %d has an unsupported extension", w.Path, w.Workspace)
		}
	}

	if c.ScratchWorkspace < 0 {
		return fmt.Errorf("scratch_workspace must not be negative (got %d)", c.ScratchWorkspace)
	}
	return nil
}

// Videos returns the video assignments in configuration order.
func (c *Config) Videos() []Wallpaper {
	var out []Wallpaper
	for _, w := range c.Wallpapers {
		if w.Kind() == MediaVideo {
			out = append(out, w)
		}
	}
	return out
}

// Images returns the image assignments in configuration order.
func (c *Config) Images() []Wallpaper {
	var out []Wallpaper
	for _, w := range c.Wallpapers {
		if w.Kind() == MediaImage {
			out = append(out, w)
		}
	}
	return out
}

// Workspaces returns the configured workspace ids in configuration order.
func (c *Config) Workspaces() []int {
	ids := make([]int, 0, len(c.Wallpapers))
	for _, w := range c.Wallpapers {
		ids = append(ids, w.Workspace)
	}
	return ids
}

// ResolveScratchWorkspace picks the workspace used as the migration holding
// area. When scratch_workspace is 0 it returns the first id in 1..10 with no
// wallpaper assigned. A second return of false means no usable scratch
// workspace exists and migration must be skipped.
func (c *Config) ResolveScratchWorkspace() (int, bool) {
	if c.ScratchWorkspace > 0 {
		if c.ScratchWorkspace > maxAddressableWorkspace {
			return 0, false
		}
		return c.ScratchWorkspace, true
	}

	assigned := make(map[int]bool, len(c.Wallpapers))
	for _, w := range c.Wallpapers {
		assigned[w.Workspace] = true
	}
	for id := 1; id <= maxAddressableWorkspace; id++ {
		if !assigned[id] {
			return id, true
		}
	}
	return 0, false
}

// PlayerSocketPath returns the mpv control socket path for a workspace.
func (c *Config) PlayerSocketPath(workspace int) string {
	dir := c.Player.SocketDir
	if dir == "" {
		dir = "/tmp"
	}
	return filepath.Join(dir, fmt.Sprintf("mpv-ws-%d-ipc", workspace))
}

// PlayerTitle returns the window title a player on the given workspace uses.
func (c *Config) PlayerTitle(workspace int) string {
	return fmt.Sprintf("%s-%d", c.Player.TitlePrefix, workspace)
}

// IsPlayerTitle reports whether a window title belongs to a background player.
func (c *Config) IsPlayerTitle(title string) bool {
	return strings.HasPrefix(title, c.Player.TitlePrefix)
}

// ExpandPath expands a leading ~ in wallpaper paths.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
