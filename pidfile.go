// Package pidfile coordinates process singletons through a pidfile: a
// filesystem path that, while exclusively locked and populated with a process
// identifier, proves that exactly one instance of a cooperating process group
// is active.
//
// A caller builds a Request with At and then either attempts acquisition with
// Lock or inspects the current state with Check. Acquisition is always a
// single non-blocking probe: it either succeeds immediately or reports that
// another live process holds the lock. The OS advisory lock is the source of
// truth; the pid recorded in the file is informational and is released
// together with the descriptor when the owning process dies, even when it
// dies without running any cleanup.
//
// The lock is valid only within one filesystem's view. This is not a
// distributed lock and offers no cross-host guarantees.
package pidfile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/arumata/pidfile/internal/filelock"
	"github.com/arumata/pidfile/internal/proc"
)

// DefaultPerm is used for pidfiles created by a Request that did not override
// the permission bits.
const DefaultPerm os.FileMode = 0o644

var errRequestUsed = errors.New("request already consumed")

// Request captures one pending pidfile operation: the target path, the pid to
// record, and the permission bits used if the file must be created. A Request
// is single-use: exactly one of Lock or Check may consume it.
type Request struct {
	pid    int
	path   string
	perm   os.FileMode
	logger *slog.Logger
	used   bool
}

// At builds a Request for the pidfile at path. It records the current
// process's identifier and defaults the creation permissions to 0644.
func At(path string) *Request {
	return &Request{
		pid:    proc.CurrentPID(),
		path:   path,
		perm:   DefaultPerm,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithPID overrides the process identifier recorded on a successful Lock.
// Orchestration layers use it to write a child's pid; tests use it to make
// the recorded value deterministic.
func (r *Request) WithPID(pid int) *Request {
	r.pid = pid
	return r
}

// WithPerm overrides the permission bits used when the pidfile is created.
func (r *Request) WithPerm(perm os.FileMode) *Request {
	r.perm = perm
	return r
}

// WithLogger enables debug logging for this Request and the Lock it produces.
func (r *Request) WithLogger(logger *slog.Logger) *Request {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Lock attempts to acquire the pidfile. On success the file contains r's pid
// and the returned Lock holds the OS advisory lock until released. The
// returned error is always a *LockError: Conflict set when another live
// process holds the lock, IO set for any underlying failure.
//
// The file is truncated and written only after the lock is confirmed held;
// writing earlier could corrupt a file another process still owns.
func (r *Request) Lock() (*Lock, error) {
	if r.used {
		return nil, ioError(errRequestUsed)
	}
	r.used = true

	h, err := filelock.Create(r.path, r.perm)
	if err != nil {
		return nil, ioError(err)
	}

	acquired, err := h.TryLock()
	if err != nil {
		_ = h.Close()
		return nil, ioError(err)
	}
	if !acquired {
		r.logger.Debug("lock held elsewhere", "path", r.path)
		_ = h.Close()
		return nil, conflictError()
	}

	if err := h.Truncate(); err != nil {
		_ = h.Close()
		return nil, ioError(err)
	}
	if err := h.WritePID(r.pid); err != nil {
		_ = h.Close()
		return nil, ioError(err)
	}

	r.logger.Debug("lock acquired", "path", r.path, "pid", r.pid)

	return &Lock{
		pidfile: Pidfile{pid: r.pid},
		path:    r.path,
		handle:  h,
		logger:  r.logger,
	}, nil
}

// Check reports whether the pidfile currently represents a live lock, without
// acquiring one. A missing file means no lock and returns (nil, nil). Any
// other failure is returned as a plain I/O error.
//
// The probe opens the file read-only and attempts the same non-blocking
// exclusive lock used by Lock on a descriptor scoped to this call; a held
// lock together with a parseable positive pid yields that holder's Pidfile.
// An unheld lock, or empty/zero/unparseable content, is a stale placeholder
// and yields (nil, nil). Check never mutates the file.
func (r *Request) Check() (*Pidfile, error) {
	if r.used {
		return nil, errRequestUsed
	}
	r.used = true

	r.logger.Debug("checking for lock", "path", r.path)

	h, err := filelock.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Debug("no lock, file not found", "path", r.path)
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = h.Close() }()

	acquired, err := h.TryLock()
	if err != nil {
		return nil, err
	}
	if acquired {
		// Nobody holds the lock; whatever the file says is stale. The probe
		// lock dies with the descriptor on return.
		r.logger.Debug("no lock, file unlocked", "path", r.path)
		return nil, nil
	}

	pid, err := h.ReadPID()
	if err != nil {
		return nil, err
	}
	if pid == 0 {
		r.logger.Debug("no lock, file has no usable pid", "path", r.path)
		return nil, nil
	}

	r.logger.Debug("lock held", "path", r.path, "pid", pid)
	return &Pidfile{pid: pid}, nil
}

// Pidfile is a snapshot fact: a process identifier believed to hold (or have
// held) a lock. It owns no resource and is freely copyable.
type Pidfile struct {
	pid int
}

// PID returns the recorded process identifier.
func (p Pidfile) PID() int {
	return p.pid
}

// Alive reports whether a process with the recorded identifier currently
// exists. It is a point-in-time probe offered for staleness policies; the
// advisory lock, not this check, decides whether a pidfile is live.
func (p Pidfile) Alive() bool {
	return proc.IsRunning(p.pid)
}

// Lock is the capability returned by a successful acquisition. It exclusively
// owns the locked descriptor; holders must call Release (typically deferred)
// when the singleton scope ends.
type Lock struct {
	pidfile Pidfile
	path    string
	handle  *filelock.Handle
	logger  *slog.Logger
}

// Pidfile returns the snapshot describing this lock's own holder.
func (l *Lock) Pidfile() Pidfile {
	return l.pidfile
}

// Path returns the pidfile location this lock guards.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the pidfile (best-effort), then unlocks and closes it. It
// is idempotent and never fails: cleanup problems are logged at debug level
// and swallowed. If the owning process is killed before Release runs, the OS
// still drops the advisory lock; only the file itself may be left behind,
// which later checks ignore once the lock is gone.
func (l *Lock) Release() {
	if l.handle == nil {
		return
	}
	// Unlink while the lock is still held. Once the lock drops a competitor
	// may acquire the path immediately, and a remove after that would delete
	// the new holder's live pidfile; unlinking first leaves the competitor a
	// fresh inode and this holder an unreachable one.
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.logger.Debug("remove failed", "path", l.path, "error", err)
	}
	if err := l.handle.Unlock(); err != nil {
		l.logger.Debug("unlock failed", "path", l.path, "error", err)
	}
	if err := l.handle.Close(); err != nil {
		l.logger.Debug("close failed", "path", l.path, "error", err)
	}
	l.handle = nil
}

// LockError is the failure result of Request.Lock. Exactly one field is
// informative: Conflict true (IO nil) when another live process holds the
// lock, IO non-nil (Conflict false) when an underlying operation failed.
type LockError struct {
	Conflict bool
	IO       error
}

func conflictError() *LockError {
	return &LockError{Conflict: true}
}

func ioError(err error) *LockError {
	return &LockError{IO: err}
}

// Error implements the error interface.
func (e *LockError) Error() string {
	if e.Conflict {
		return "pidfile: lock held by another process"
	}
	return fmt.Sprintf("pidfile: %v", e.IO)
}

// Unwrap exposes the underlying I/O error, if any.
func (e *LockError) Unwrap() error {
	return e.IO
}

// IsConflict reports whether err is a contention failure: another live
// process holds the lock.
func IsConflict(err error) bool {
	var le *LockError
	return errors.As(err, &le) && le.Conflict
}
