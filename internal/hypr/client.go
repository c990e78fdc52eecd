package hypr

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const dialTimeout = 2 * time.Second

// Client talks to Hyprland's control socket. It executes dispatch mutations
// and JSON queries; it keeps no state of its own and opens one connection
// per request, which is how the socket is meant to be used.
type Client struct {
	commandSocket string
	eventSocket   string
}

// NewClient locates the Hyprland sockets for the current instance. A missing
// command socket is fatal; none of this works without it.
func NewClient() (*Client, error) {
	cmdSock, err := discoverCommandSocket()
	if err != nil {
		return nil, err
	}
	evtSock, err := discoverEventSocket()
	if err != nil {
		return nil, err
	}
	return &Client{commandSocket: cmdSock, eventSocket: evtSock}, nil
}

func instanceDir() string {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return ""
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/tmp"
	}
	return filepath.Join(runtimeDir, "hypr", sig)
}

func discoverCommandSocket() (string, error) {
	if dir := instanceDir(); dir != "" {
		p := filepath.Join(dir, ".socket.sock")
		if isSocket(p) {
			return p, nil
		}
	}
	if p := scanForSocket(".socket.sock"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("cannot locate Hyprland command socket (is Hyprland running?)")
}

func discoverEventSocket() (string, error) {
	if dir := instanceDir(); dir != "" {
		p := filepath.Join(dir, ".socket2.sock")
		if isSocket(p) {
			return p, nil
		}
	}
	if p := scanForSocket(".socket2.sock"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("cannot locate Hyprland event socket (is Hyprland running?)")
}

// scanForSocket walks the known hypr runtime directories looking for a
// socket with the given name. Covers sessions where
// HYPRLAND_INSTANCE_SIGNATURE is not exported to the daemon's environment.
func scanForSocket(name string) string {
	searchRoots := []string{"/tmp/hypr"}
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		searchRoots = append([]string{filepath.Join(runtimeDir, "hypr")}, searchRoots...)
	}
	for _, root := range searchRoots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			p := filepath.Join(root, e.Name(), name)
			if isSocket(p) {
				return p
			}
		}
	}
	return ""
}

func isSocket(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode()&os.ModeSocket != 0
}

// EventSocketPath returns the discovered event socket path.
func (c *Client) EventSocketPath() string {
	return c.eventSocket
}

func (c *Client) roundTrip(cmd string) ([]byte, error) {
	return roundTripSocket(c.commandSocket, cmd)
}

// roundTripSocket performs one write-request, read-reply exchange against a
// hyprland-style one-shot socket.
func roundTripSocket(socketPath, cmd string) ([]byte, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("cannot open socket %s: %w", socketPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(dialTimeout))

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return nil, fmt.Errorf("failed to send %q: %w", cmd, err)
	}
	out, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply for %q: %w", cmd, err)
	}
	return out, nil
}

// Dispatch issues a mutation, e.g. Dispatch("movetoworkspacesilent 3,address:0x1234").
func (c *Client) Dispatch(args string) error {
	out, err := c.roundTrip("dispatch " + args)
	if err != nil {
		return err
	}
	if reply := strings.TrimSpace(string(out)); reply != "ok" {
		return fmt.Errorf("dispatch %q rejected: %s", args, reply)
	}
	return nil
}

// HyprpaperSocketPath returns hyprpaper's IPC socket path. hyprpaper
// creates it next to Hyprland's sockets in the instance directory, and it
// only exists while hyprpaper runs.
func (c *Client) HyprpaperSocketPath() string {
	return filepath.Join(filepath.Dir(c.commandSocket), ".hyprpaper.sock")
}

// Hyprpaper sends one keyword to hyprpaper's own IPC socket, which speaks
// the same one-shot request framing as the command socket. Hyprland's
// command socket does not forward these, so they must not go through
// Dispatch or roundTrip. A dial error means no hyprpaper instance is
// listening.
func (c *Client) Hyprpaper(args string) ([]byte, error) {
	return roundTripSocket(c.HyprpaperSocketPath(), args)
}

func (c *Client) queryJSON(cmd string, v interface{}) error {
	out, err := c.roundTrip("j/" + cmd)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("failed to parse %q reply: %w", cmd, err)
	}
	return nil
}

// Clients returns all windows known to the compositor.
func (c *Client) Clients() ([]Window, error) {
	var windows []Window
	if err := c.queryJSON("clients", &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

// Monitors returns all outputs.
func (c *Client) Monitors() ([]Monitor, error) {
	var monitors []Monitor
	if err := c.queryJSON("monitors", &monitors); err != nil {
		return nil, err
	}
	return monitors, nil
}

// FocusedMonitor returns the monitor that currently has focus.
func (c *Client) FocusedMonitor() (*Monitor, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return nil, err
	}
	for i := range monitors {
		if monitors[i].Focused {
			return &monitors[i], nil
		}
	}
	return nil, fmt.Errorf("no focused monitor reported")
}

// ActiveWorkspace returns the active workspace id on the focused monitor.
func (c *Client) ActiveWorkspace() (int, error) {
	mon, err := c.FocusedMonitor()
	if err != nil {
		return 0, err
	}
	return mon.ActiveWorkspace.ID, nil
}
