// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/toeirei/keyprint/internal/config"
	"github.com/toeirei/keyprint/internal/logging"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Open the interactive key inspector",
		Long:  `Opens a terminal UI that validates a pasted key while you type and shows its fingerprints and policy verdict.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspector(a.policy)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or persist the effective configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	var system bool
	write := &cobra.Command{
		Use:   "write [path]",
		Short: "Write the effective configuration to a config file",
		Long:  `Writes the effective configuration to the given path, or to the user (or with --system the system wide) keyprint.yaml when no path is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				var err error
				if path, err = config.GetConfigPath(system); err != nil {
					return err
				}
			}
			if err := config.WriteConfigFileTo(&a.cfg, path); err != nil {
				return err
			}
			logging.Infof("wrote config to %s", path)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
	write.Flags().BoolVar(&system, "system", false, "Write the system wide config file")

	cmd.AddCommand(show, write)
	return cmd
}
