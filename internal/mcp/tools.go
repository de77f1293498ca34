package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tilewm/internal/compositor"
	"github.com/1broseidon/tilewm/internal/tiling"
)

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, compositor.Status, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, compositor.Status{}, err
	}
	return nil, *st, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	want := strings.ToLower(strings.TrimSpace(args.State))
	out := ListWindowsOutput{Windows: make([]compositor.WindowInfo, 0, len(data.Windows))}
	for _, w := range data.Windows {
		if want != "" && w.State != want {
			continue
		}
		out.Windows = append(out.Windows, w)
	}
	return nil, out, nil
}

func (s *Server) handleSetSplit(_ context.Context, _ *mcpsdk.CallToolRequest, args SetSplitInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	axis, err := tiling.ParseSplitAxis(args.Axis)
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if err := s.daemon.SetSplit(axis.String()); err != nil {
		return nil, ActionOutput{}, err
	}
	s.log.Debug("split set", "axis", axis)
	return nil, ActionOutput{OK: true, Message: fmt.Sprintf("next window splits %s", axis)}, nil
}

func (s *Server) windowTool(verb string, fn func(Daemon, uint32) error) mcpsdk.ToolHandlerFor[WindowInput, ActionOutput] {
	return func(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
		if args.ID == 0 {
			return nil, ActionOutput{}, fmt.Errorf("id is required")
		}
		if err := fn(s.daemon, args.ID); err != nil {
			return nil, ActionOutput{}, err
		}
		return nil, ActionOutput{OK: true, Message: fmt.Sprintf("window %d %s", args.ID, verb)}, nil
	}
}
