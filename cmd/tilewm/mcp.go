package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tilewm/internal/ipc"
	"github.com/1broseidon/tilewm/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
	}
	mcpCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start an MCP server on stdio backed by the running compositor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := ipc.NewClient()
			if err := client.Ping(); err != nil {
				slog.Warn("compositor not reachable yet; tools will fail until it starts", "error", err)
			}
			err := mcp.NewServer(client, slog.Default()).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	})
	return mcpCmd
}
