package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arumata/pidfile"
)

func newLockCmd(opts *rootOptions, exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock <name>",
		Short: "Acquire a pidfile and hold it until interrupted",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger, err := opts.load()
			if err != nil {
				handleCmdError(exitCode, err)
				return
			}
			path := resolvePidfilePath(cfg, args[0])

			lock, err := pidfile.At(path).
				WithPerm(cfg.FilePerm()).
				WithLogger(logger).
				Lock()
			if err != nil {
				handleCmdError(exitCode, err)
				return
			}
			defer lock.Release()

			logger.Info("holding lock", "path", lock.Path(), "pid", lock.Pidfile().PID())
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", lock.Pidfile().PID())

			<-cmd.Context().Done()
			logger.Info("releasing lock", "path", lock.Path())
			*exitCode = exitInterrupted
		},
	}

	return cmd
}
