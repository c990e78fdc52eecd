package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/runtimepath"
)

// Client handles control-socket communication with the daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new control client.
func NewClient() *Client {
	socketPath, err := runtimepath.ControlSocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// GetStatus retrieves daemon status.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// Retile asks the daemon for a layout pass. Workspace 0 means the focused
// workspace.
func (c *Client) Retile(workspace int) error {
	payload, err := json.Marshal(RetilePayload{Workspace: workspace})
	if err != nil {
		return fmt.Errorf("failed to marshal retile payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandRetile, Payload: payload})
	return err
}

// SetPaused asks the daemon to pause or resume one workspace's player.
func (c *Client) SetPaused(workspace int, paused bool) error {
	payload, err := json.Marshal(SetPausedPayload{Workspace: workspace, Paused: paused})
	if err != nil {
		return fmt.Errorf("failed to marshal set-paused payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandSetPaused, Payload: payload})
	return err
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}
