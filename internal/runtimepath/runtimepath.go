// Package runtimepath resolves per-user runtime files such as the IPC socket.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDir = "tilewm"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) the xdg package's runtime dir (/run/user/<uid> when present)
// 3) /tmp/tilewm-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	if info, err := os.Stat(xdg.RuntimeDir); err == nil && info.IsDir() {
		return xdg.RuntimeDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/tilewm-runtime-%d", os.Getuid())
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path, creating its directory.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(runtimeDir, appDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create socket dir: %w", err)
	}
	return filepath.Join(dir, "tilewm.sock"), nil
}
