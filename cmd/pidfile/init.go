package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arumata/pidfile/internal/config"
)

func newInitCmd(opts *rootOptions, exitCode *int) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path := opts.configPath
			if path == "" {
				p, err := defaultConfigPath()
				if err != nil {
					handleCmdError(exitCode, err)
					return
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				handleCmdError(exitCode, fmt.Errorf("config already exists at %s (use --force to overwrite)", path))
				return
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				handleCmdError(exitCode, fmt.Errorf("create config dir: %w", err))
				return
			}
			if err := config.Save(path, config.Default()); err != nil {
				handleCmdError(exitCode, fmt.Errorf("write config: %w", err))
				return
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			*exitCode = exitSuccess
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}
