package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tilewm/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			res, err := config.LoadFromPath(path)
			if err != nil {
				return err
			}
			if res.File == "" {
				fmt.Printf("%s does not exist; defaults are valid\n", path)
				return nil
			}
			fmt.Printf("%s is valid\n", res.File)
			return nil
		},
	})

	var defaults bool
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				path, err := resolveConfigPath()
				if err != nil {
					return err
				}
				res, err := config.LoadFromPath(path)
				if err != nil {
					return err
				}
				cfg = res.Config
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
	printCmd.Flags().BoolVar(&defaults, "defaults", false, "Print the built-in defaults instead")
	configCmd.AddCommand(printCmd)

	return configCmd
}
