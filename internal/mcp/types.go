package mcp

import "github.com/1broseidon/tilewm/internal/compositor"

// StatusInput is the input for the get_status tool.
type StatusInput struct{}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	State string `json:"state,omitempty" jsonschema:"Only return windows in this state (e.g. tiled, untiled)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []compositor.WindowInfo `json:"windows"`
}

// SetSplitInput is the input for the set_split tool.
type SetSplitInput struct {
	Axis string `json:"axis" jsonschema:"Split axis for the next tiled window: horizontal or vertical"`
}

// WindowInput names a window for the per-window tools.
type WindowInput struct {
	ID uint32 `json:"id" jsonschema:"Window id as reported by list_windows"`
}

// ActionOutput reports the outcome of a command.
type ActionOutput struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
