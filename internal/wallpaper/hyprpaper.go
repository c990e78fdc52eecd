package wallpaper

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/config"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/runtimepath"
)

// compositor is the slice of the Hyprland client the image backend needs.
// hyprpaper keywords go to hyprpaper's own IPC socket, not Hyprland's
// command socket; only monitor enumeration touches the compositor itself.
type compositor interface {
	Hyprpaper(args string) ([]byte, error)
	Monitors() ([]hypr.Monitor, error)
}

// Manager drives hyprpaper for workspaces assigned a static image instead of
// a video. Video workspaces and bare workspaces get a generated blank frame
// so no stale image shines through behind a player.
type Manager struct {
	hypr   compositor
	logger *slog.Logger

	images map[int]string // workspace → image path
	proc   *exec.Cmd      // hyprpaper instance we started, nil when external
	blank  string
}

// NewManager builds the image map from cfg. The manager is inert when no
// image wallpapers are configured.
func NewManager(cfg *config.Config, comp compositor, logger *slog.Logger) *Manager {
	images := make(map[int]string)
	for _, w := range cfg.Images() {
		images[w.Workspace] = w.Path
	}
	return &Manager{hypr: comp, logger: logger, images: images}
}

// Enabled reports whether any image wallpapers are configured.
func (m *Manager) Enabled() bool {
	return len(m.images) > 0
}

// HasImage reports whether a workspace has an image assigned.
func (m *Manager) HasImage(workspace int) bool {
	_, ok := m.images[workspace]
	return ok
}

// Activate shows the image assigned to a workspace on every monitor.
// Workspaces without an image fall through to Blank. All failures are best
// effort: the next workspace change tries again.
func (m *Manager) Activate(workspace int) {
	if !m.Enabled() {
		return
	}
	path, ok := m.images[workspace]
	if !ok {
		m.Blank()
		return
	}

	m.ensureRunning()
	m.keyword("preload " + path)
	m.setOnAllMonitors(path)
}

// Blank replaces any visible image with the generated blank frame and
// unloads the real images, so video workspaces show only their player.
func (m *Manager) Blank() {
	if !m.Enabled() {
		return
	}
	blank, err := m.ensureBlankImage()
	if err != nil {
		m.logger.Warn("cannot create blank wallpaper", "error", err)
		return
	}

	m.ensureRunning()
	m.keyword("preload " + blank)
	m.setOnAllMonitors(blank)
	for _, path := range m.images {
		m.keyword("unload " + path)
	}
}

// Shutdown stops a hyprpaper instance this manager started. An externally
// started hyprpaper is left alone.
func (m *Manager) Shutdown() {
	if m.proc != nil && m.proc.Process != nil {
		_ = m.proc.Process.Kill()
		m.proc = nil
	}
}

func (m *Manager) setOnAllMonitors(path string) {
	monitors, err := m.hypr.Monitors()
	if err != nil {
		m.logger.Warn("cannot enumerate monitors for wallpaper", "error", err)
		return
	}
	for _, mon := range monitors {
		m.keyword(fmt.Sprintf("wallpaper %s,%s", mon.Name, path))
	}
}

// keyword sends one keyword to hyprpaper's IPC socket.
func (m *Manager) keyword(args string) {
	out, err := m.hypr.Hyprpaper(args)
	if err != nil {
		m.logger.Debug("hyprpaper command failed", "args", args, "error", err)
		return
	}
	if reply := strings.TrimSpace(string(out)); reply != "ok" && reply != "" {
		m.logger.Debug("hyprpaper command rejected", "args", args, "reply", reply)
	}
}

// ensureRunning starts hyprpaper when its socket does not answer. A probe
// error means no instance is listening; the socket only exists while
// hyprpaper runs.
func (m *Manager) ensureRunning() {
	if _, err := m.hypr.Hyprpaper("listloaded"); err == nil {
		return
	}
	if m.proc != nil {
		return
	}

	cmd := exec.Command("hyprpaper")
	if err := cmd.Start(); err != nil {
		m.logger.Warn("cannot start hyprpaper", "error", err)
		return
	}
	m.proc = cmd
	go func() { _ = cmd.Wait() }()
	m.logger.Info("started hyprpaper", "pid", cmd.Process.Pid)
	time.Sleep(time.Second)
}

// ensureBlankImage generates a small black frame once per runtime dir.
func (m *Manager) ensureBlankImage() (string, error) {
	if m.blank != "" {
		return m.blank, nil
	}
	path, err := runtimepath.BlankImagePath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		m.blank = path
		return path, nil
	}

	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "color=black:s=10x10:d=0.1",
		"-frames:v", "1", path, "-y",
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg blank frame generation failed: %w", err)
	}
	m.blank = path
	return path, nil
}
