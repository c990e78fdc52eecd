package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different control commands.
type CommandType string

const (
	CommandGetStatus CommandType = "GET_STATUS"
	CommandRetile    CommandType = "RETILE"
	CommandSetPaused CommandType = "SET_PAUSED"
	CommandReload    CommandType = "RELOAD"
)

// Request represents a control request from client to daemon.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents a control response from daemon to client.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SlotInfo describes one background-player slot in a status reply.
type SlotInfo struct {
	Workspace int    `json:"workspace"`
	MediaPath string `json:"media_path"`
	State     string `json:"state"`
	PID       int    `json:"pid,omitempty"`
}

// StatusData represents the data returned by GET_STATUS.
type StatusData struct {
	DaemonState     string     `json:"daemon_state"`
	ActiveWorkspace int        `json:"active_workspace"`
	Slots           []SlotInfo `json:"slots"`
	UptimeSeconds   int64      `json:"uptime_seconds"`
}

// RetilePayload represents the payload for RETILE. Workspace 0 means the
// currently focused workspace.
type RetilePayload struct {
	Workspace int `json:"workspace,omitempty"`
}

// SetPausedPayload represents the payload for SET_PAUSED.
type SetPausedPayload struct {
	Workspace int  `json:"workspace"`
	Paused    bool `json:"paused"`
}

// NewOKResponse creates a successful response with optional data.
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message.
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
