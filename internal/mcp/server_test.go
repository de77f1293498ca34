package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tilewm/internal/compositor"
	"github.com/1broseidon/tilewm/internal/ipc"
)

type fakeDaemon struct {
	split   string
	toggled []uint32
	closed  []uint32
	focused []uint32
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{Backend: "headless", Split: "horizontal", Windows: 2, Focus: 1}, nil
}

func (f *fakeDaemon) ListWindows() (*ipc.WindowsData, error) {
	return &ipc.WindowsData{Windows: []compositor.WindowInfo{
		{ID: 1, Title: "a", State: "tiled"},
		{ID: 2, Title: "b", State: "untiled"},
	}}, nil
}

func (f *fakeDaemon) SetSplit(axis string) error {
	f.split = axis
	return nil
}

func (f *fakeDaemon) ToggleTiling(id uint32) error {
	if id != 1 && id != 2 {
		return compositor.ErrNoSuchWindow
	}
	f.toggled = append(f.toggled, id)
	return nil
}

func (f *fakeDaemon) CloseWindow(id uint32) error {
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeDaemon) FocusWindow(id uint32) error {
	f.focused = append(f.focused, id)
	return nil
}

func connect(t *testing.T, d Daemon) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()
	srv := NewServer(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
	serverT, clientT := mcpsdk.NewInMemoryTransports()
	if _, err := srv.Connect(ctx, serverT); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func call(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return res
}

func decode(t *testing.T, res *mcpsdk.CallToolResult, out any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
}

func TestTools_Listed(t *testing.T) {
	session := connect(t, &fakeDaemon{})
	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{
		"get_status": false, "list_windows": false, "set_split": false,
		"toggle_tiling": false, "close_window": false, "focus_window": false,
	}
	for _, tool := range res.Tools {
		want[tool.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("tool %s not registered", name)
		}
	}
}

func TestTools_StatusAndWindows(t *testing.T) {
	session := connect(t, &fakeDaemon{})

	var st compositor.Status
	decode(t, call(t, session, "get_status", map[string]any{}), &st)
	if st.Backend != "headless" || st.Windows != 2 || st.Focus != 1 {
		t.Fatalf("unexpected status %+v", st)
	}

	var all ListWindowsOutput
	decode(t, call(t, session, "list_windows", map[string]any{}), &all)
	if len(all.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %+v", all)
	}

	var untiled ListWindowsOutput
	decode(t, call(t, session, "list_windows", map[string]any{"state": "untiled"}), &untiled)
	if len(untiled.Windows) != 1 || untiled.Windows[0].ID != 2 {
		t.Fatalf("unexpected filtered windows %+v", untiled)
	}
}

func TestTools_Commands(t *testing.T) {
	d := &fakeDaemon{}
	session := connect(t, d)

	var out ActionOutput
	decode(t, call(t, session, "set_split", map[string]any{"axis": "v"}), &out)
	if !out.OK || d.split != "vertical" {
		t.Fatalf("split not forwarded: %+v split=%q", out, d.split)
	}
	if res := call(t, session, "set_split", map[string]any{"axis": "diagonal"}); !res.IsError {
		t.Fatalf("expected invalid axis to fail")
	}

	decode(t, call(t, session, "toggle_tiling", map[string]any{"id": 2}), &out)
	decode(t, call(t, session, "close_window", map[string]any{"id": 1}), &out)
	decode(t, call(t, session, "focus_window", map[string]any{"id": 2}), &out)
	if len(d.toggled) != 1 || len(d.closed) != 1 || len(d.focused) != 1 {
		t.Fatalf("unexpected calls toggled=%v closed=%v focused=%v", d.toggled, d.closed, d.focused)
	}

	if res := call(t, session, "toggle_tiling", map[string]any{"id": 42}); !res.IsError {
		t.Fatalf("expected unknown window to fail")
	}
	if res := call(t, session, "close_window", map[string]any{}); !res.IsError {
		t.Fatalf("expected missing id to fail")
	}
}
