package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tilewm/internal/ipc"
	"github.com/1broseidon/tilewm/internal/tui"
)

func newTopCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Live view of managed windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(ipc.NewClient(), interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Refresh interval")
	return cmd
}
