package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/arumata/pidfile"
)

func newRunCmd(opts *rootOptions, exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <name> -- <command> [args...]",
		Short: "Run a command while holding a pidfile lock",
		Args:  cobra.MinimumNArgs(2),
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

			logger.Debug("running command under lock",
				"path", lock.Path(), "command", args[1])

			child := exec.CommandContext(cmd.Context(), args[1], args[2:]...) // #nosec G204 - command comes from the CLI user
			child.Stdin = os.Stdin
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr

			if err := child.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					*exitCode = exitErr.ExitCode()
					return
				}
				handleCmdError(exitCode, fmt.Errorf("run %s: %w", args[1], err))
				return
			}
			*exitCode = exitSuccess
		},
	}

	return cmd
}
