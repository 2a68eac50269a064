//go:build unix

package proc

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsRunning reports whether a process with the given pid currently exists.
// Signal 0 performs the existence check without delivering anything; EPERM
// means the process exists but belongs to another user.
func IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, unix.EPERM)
}
