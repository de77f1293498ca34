package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/tilewm/internal/compositor"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandSetSplit    CommandType = "SET_SPLIT"
	CommandToggle      CommandType = "TOGGLE_TILING"
	CommandClose       CommandType = "CLOSE_WINDOW"
	CommandFocus       CommandType = "FOCUS_WINDOW"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is the data returned by GET_STATUS.
type StatusData = compositor.Status

// WindowsData is the data returned by LIST_WINDOWS.
type WindowsData struct {
	Windows []compositor.WindowInfo `json:"windows"`
}

// SetSplitPayload is the payload for SET_SPLIT.
type SetSplitPayload struct {
	Axis string `json:"axis"`
}

// WindowPayload names the window for TOGGLE_TILING, CLOSE_WINDOW and FOCUS_WINDOW.
type WindowPayload struct {
	ID uint32 `json:"id"`
}

// NewOKResponse creates a successful response with optional data
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

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
