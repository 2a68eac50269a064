package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/arumata/pidfile"
)

const (
	exitSuccess       = 0
	exitCriticalError = 1
	exitUsageError    = 2
	exitNoLock        = 3
	exitLockBusy      = 76
	exitInterrupted   = 130
)

// handleCmdError prints error to stderr and sets exit code.
func handleCmdError(exitCode *int, err error) {
	if err == nil {
		*exitCode = exitSuccess
		return
	}
	fmt.Fprintln(os.Stderr, err)
	*exitCode = mapExitCode(err)
}

func mapExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch {
	case pidfile.IsConflict(err):
		return exitLockBusy
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitCriticalError
	}
}
