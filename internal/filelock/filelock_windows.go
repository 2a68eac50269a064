//go:build windows

package filelock

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// Windows byte-range locks are mandatory: another handle's ReadFile over a
// locked region fails with ERROR_LOCK_VIOLATION. The pid text lives at offset
// zero and must stay readable to checkers while the lock is held, so the lock
// byte sits far past any possible pid content instead.
const lockOffset = 0xFFFFFFFF

// lockNB attempts an exclusive LockFileEx on the reserved lock byte. The
// LOCKFILE_FAIL_IMMEDIATELY flag mirrors LOCK_NB on unix: a held lock
// surfaces as ERROR_LOCK_VIOLATION instead of blocking.
func lockNB(f *os.File) (bool, error) {
	ol := &windows.Overlapped{Offset: lockOffset}
	err := windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		1, 0,
		ol,
	)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return false, nil
	}
	return false, err
}

func unlock(f *os.File) error {
	ol := &windows.Overlapped{Offset: lockOffset}
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, ol)
}
