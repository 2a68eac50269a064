package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arumata/pidfile"
)

func newCheckCmd(opts *rootOptions, exitCode *int) *cobra.Command {
	var alive bool

	cmd := &cobra.Command{
		Use:   "check <name>",
		Short: "Report whether a pidfile currently represents a live lock",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger, err := opts.load()
			if err != nil {
				handleCmdError(exitCode, err)
				return
			}
			path := resolvePidfilePath(cfg, args[0])

			pf, err := pidfile.At(path).WithLogger(logger).Check()
			if err != nil {
				handleCmdError(exitCode, fmt.Errorf("check %s: %w", path, err))
				return
			}
			if pf == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no live lock\n", path)
				*exitCode = exitNoLock
				return
			}

			if alive {
				state := "running"
				if !pf.Alive() {
					state = "not running"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: locked by pid %d (%s)\n", path, pf.PID(), state)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: locked by pid %d\n", path, pf.PID())
			}
			*exitCode = exitSuccess
		},
	}

	cmd.Flags().BoolVar(&alive, "alive", false, "also probe whether the recorded pid is a running process")

	return cmd
}
