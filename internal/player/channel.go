package player

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const channelTimeout = time.Second

// mpvCommand is the single-line JSON IPC request mpv accepts on its control
// socket.
type mpvCommand struct {
	Command []interface{} `json:"command"`
}

// setPauseProperty sends a pause/resume command to a player's control socket.
// Delivery is best effort: the response is not consumed and the connection is
// dropped immediately after the write.
func setPauseProperty(socketPath string, paused bool) error {
	return sendCommand(socketPath, mpvCommand{
		Command: []interface{}{"set_property", "pause", paused},
	})
}

func sendCommand(socketPath string, cmd mpvCommand) error {
	conn, err := net.DialTimeout("unix", socketPath, channelTimeout)
	if err != nil {
		return fmt.Errorf("cannot reach player socket %s: %w", socketPath, err)
	}
	defer conn.Close()
	conn.SetWriteDeadline(time.Now().Add(channelTimeout))

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode player command: %w", err)
	}
	payload = append(payload, '\n')
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send player command: %w", err)
	}
	return nil
}
