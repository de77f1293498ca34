package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/1broseidon/tilewm/internal/ipc"
)

// ipcClient is the subset of ipc.Client the window commands use.
type ipcClient interface {
	ToggleTiling(id uint32) error
	CloseWindow(id uint32) error
	FocusWindow(id uint32) error
}

func newStatusCmd() *cobra.Command {
	var asJSON, pretty bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show compositor status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ipc.NewClient().GetStatus()
			if err != nil {
				return err
			}
			switch {
			case asJSON:
				return printJSON(status)
			case pretty:
				pp.Println(status)
				return nil
			}
			fmt.Printf("Backend:  %s\n", status.Backend)
			fmt.Printf("Uptime:   %ds\n", status.UptimeSecs)
			fmt.Printf("Split:    %s\n", status.Split)
			fmt.Printf("Windows:  %d (tiled %d, untiled %d)\n", status.Windows, status.Tiled, status.Untiled)
			if status.Focus != 0 {
				fmt.Printf("Focus:    %d\n", status.Focus)
			}
			if status.Grabbing {
				fmt.Println("Grab:     active")
			}
			for _, o := range status.Outputs {
				fmt.Printf("Output:   %s %s\n", o.Name, o.Geometry)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print the status structure")
	return cmd
}

func newWindowsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List managed windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ipc.NewClient().ListWindows()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(data)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATE\tBOUNDS\tFOCUS\tTITLE")
			for _, w := range data.Windows {
				state := w.State
				if w.Fixed {
					state += " (fixed)"
				}
				focus := ""
				if w.Focused {
					focus = "*"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", w.ID, state, w.Bounds, focus, w.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print windows as JSON")
	return cmd
}

func newSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "split horizontal|vertical",
		Short:     "Set the split axis for the next tiled window",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"horizontal", "vertical"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.NewClient().SetSplit(args[0])
		},
	}
}

func newWindowCmd(use, short string, fn func(ipcClient, uint32) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWindowID(args[0])
			if err != nil {
				return err
			}
			return fn(ipc.NewClient(), id)
		},
	}
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the configuration of the running compositor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ipc.NewClient().Reload(); err != nil {
				return err
			}
			fmt.Println("Config reloaded")
			return nil
		},
	}
}

// parseWindowID accepts decimal or 0x-prefixed hex ids.
func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
