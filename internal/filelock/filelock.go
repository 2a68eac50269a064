// Package filelock is the platform lock backend: it owns the open pidfile
// descriptor and normalizes the host OS advisory-locking facility (flock on
// unix, LockFileEx on windows) to one shape, so the rest of the module stays
// platform-agnostic. Platform variants are selected at build time via
// //go:build files.
package filelock

import (
	"io"
	"os"
	"strconv"
	"strings"
)

// Handle owns exactly one open descriptor against a pidfile path. It is a
// move-only resource: callers must not copy it, and Close invalidates it.
type Handle struct {
	f *os.File
}

// Create opens path read-write, creating it with perm when absent.
func Create(path string, perm os.FileMode) (*Handle, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, perm) // #nosec G304 - path is caller-supplied by design
	if err != nil {
		return nil, err
	}
	return &Handle{f: f}, nil
}

// Open opens path read-only and never creates it. The caller distinguishes
// a missing file via errors.Is(err, os.ErrNotExist).
func Open(path string) (*Handle, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0) // #nosec G304 - path is caller-supplied by design
	if err != nil {
		return nil, err
	}
	return &Handle{f: f}, nil
}

// TryLock attempts a non-blocking exclusive advisory lock on the descriptor.
// It returns (true, nil) when the lock was acquired, (false, nil) when
// another process holds it, and (false, err) on any other failure. It never
// blocks on contention.
func (h *Handle) TryLock() (bool, error) {
	return lockNB(h.f)
}

// Unlock releases the advisory lock. The OS also releases it implicitly when
// the descriptor closes or the owning process dies.
func (h *Handle) Unlock() error {
	return unlock(h.f)
}

// Truncate discards the current file contents.
func (h *Handle) Truncate() error {
	return h.f.Truncate(0)
}

// WritePID records pid as decimal text with a trailing newline, starting at
// offset zero. Callers must hold the lock and truncate first.
func (h *Handle) WritePID(pid int) error {
	if _, err := h.f.WriteAt([]byte(strconv.Itoa(pid)+"\n"), 0); err != nil {
		return err
	}
	return h.f.Sync()
}

// ReadPID parses the recorded process identifier. Empty, non-numeric, zero
// or negative content yields (0, nil): such a file does not represent a live
// holder. Only read failures are errors.
func (h *Handle) ReadPID() (int, error) {
	if _, err := h.f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	data, err := io.ReadAll(h.f)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	return pid, nil
}

// Close releases the descriptor (and with it any advisory lock still held).
// Safe to call more than once.
func (h *Handle) Close() error {
	if h.f == nil {
		return nil
	}
	err := h.f.Close()
	h.f = nil
	return err
}
