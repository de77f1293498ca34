package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tilewm/internal/ipc"
	"github.com/1broseidon/tilewm/internal/palette"
)

func newPaletteCmd() *cobra.Command {
	var launcherName string
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Pick a window or command with rofi or dmenu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			launcher, err := palette.NewLauncher(launcherName)
			if err != nil {
				return err
			}
			client := ipc.NewClient()
			status, err := client.GetStatus()
			if err != nil {
				return err
			}
			data, err := client.ListWindows()
			if err != nil {
				return err
			}
			item, err := launcher.Show("tilewm", palette.Items(data.Windows, status.Focus))
			if errors.Is(err, palette.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			return palette.Execute(client, item.Action)
		},
	}
	cmd.Flags().StringVar(&launcherName, "launcher", "auto", "Launcher: auto, rofi or dmenu")
	return cmd
}
