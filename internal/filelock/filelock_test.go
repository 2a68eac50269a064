package filelock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateAndTryLock(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.pid")

	h, err := Create(path, 0o644)
	if err != nil {
		t.Fatalf("failed to create handle: %v", err)
	}
	defer func() { _ = h.Close() }()

	acquired, err := h.TryLock()
	if err != nil {
		t.Fatalf("unexpected trylock error: %v", err)
	}
	if !acquired {
		t.Fatal("expected fresh file to be lockable")
	}

	// A second descriptor against the same path must see contention, not an
	// error, and must not block.
	h2, err := Create(path, 0o644)
	if err != nil {
		t.Fatalf("failed to open second handle: %v", err)
	}
	defer func() { _ = h2.Close() }()

	acquired, err = h2.TryLock()
	if err != nil {
		t.Fatalf("expected contention, got error: %v", err)
	}
	if acquired {
		t.Fatal("expected second handle to be refused the lock")
	}
}

func TestUnlockAllowsReacquire(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.pid")

	h, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = h.Close() }()
	if acquired, err := h.TryLock(); err != nil || !acquired {
		t.Fatalf("failed to acquire: %v", err)
	}
	if err := h.Unlock(); err != nil {
		t.Fatalf("failed to unlock: %v", err)
	}

	h2, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = h2.Close() }()
	if acquired, err := h2.TryLock(); err != nil || !acquired {
		t.Fatalf("expected lock to be free after unlock, got %v", err)
	}
}

func TestCloseReleasesLock(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.pid")

	h, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if acquired, err := h.TryLock(); err != nil || !acquired {
		t.Fatalf("failed to acquire: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("expected double close to be safe, got %v", err)
	}

	h2, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = h2.Close() }()
	if acquired, err := h2.TryLock(); err != nil || !acquired {
		t.Fatalf("expected close to release the lock, got %v", err)
	}
}

func TestReadPIDWhileLockedElsewhere(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.pid")

	holder, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = holder.Close() }()
	if acquired, err := holder.TryLock(); err != nil || !acquired {
		t.Fatalf("failed to acquire: %v", err)
	}
	if err := holder.WritePID(4242); err != nil {
		t.Fatal(err)
	}

	// A checker must be able to read the pid through its own descriptor
	// while the holder keeps the lock. On windows the lock range is
	// mandatory, so this only works because the locked byte sits outside
	// the pid text.
	checker, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = checker.Close() }()
	if acquired, err := checker.TryLock(); err != nil || acquired {
		t.Fatalf("expected checker probe to contend, got acquired=%v err=%v", acquired, err)
	}

	pid, err := checker.ReadPID()
	if err != nil {
		t.Fatalf("expected pid to be readable while locked elsewhere, got %v", err)
	}
	if pid != 4242 {
		t.Errorf("expected pid 4242, got %d", pid)
	}
}

func TestUnlinkWhileLockedYieldsFreshFileToCompetitor(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.pid")

	// A releasing holder unlinks the path before dropping its lock. A
	// competitor arriving after the unlink must get a fresh file it can
	// lock on its own, and must keep it once the old holder's lock and
	// descriptor go away.
	old, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = old.Close() }()
	if acquired, err := old.TryLock(); err != nil || !acquired {
		t.Fatalf("failed to acquire: %v", err)
	}
	if err := old.WritePID(200); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to unlink while locked: %v", err)
	}

	next, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = next.Close() }()
	if acquired, err := next.TryLock(); err != nil || !acquired {
		t.Fatalf("expected fresh file to be lockable, got acquired=%v err=%v", acquired, err)
	}
	if err := next.WritePID(300); err != nil {
		t.Fatal(err)
	}

	if err := old.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := old.Close(); err != nil {
		t.Fatal(err)
	}

	// The competitor's file survived the old holder's teardown and is still
	// exclusively held.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected competitor's pidfile to survive, got %v", err)
	}
	if string(data) != "300\n" {
		t.Errorf("expected competitor's pid on disk, got %q", data)
	}

	probe, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = probe.Close() }()
	if acquired, err := probe.TryLock(); err != nil || acquired {
		t.Fatalf("expected competitor to remain sole holder, got acquired=%v err=%v", acquired, err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "absent.pid")

	_, err := Open(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestWriteAndReadPID(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.pid")

	h, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = h.Close() }()

	if err := h.Truncate(); err != nil {
		t.Fatal(err)
	}
	if err := h.WritePID(4242); err != nil {
		t.Fatal(err)
	}

	pid, err := h.ReadPID()
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if pid != 4242 {
		t.Errorf("expected pid 4242, got %d", pid)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "4242\n" {
		t.Errorf("expected decimal text encoding, got %q", data)
	}
}

func TestTruncateDiscardsOldContent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.pid")
	if err := os.WriteFile(path, []byte("123456789\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := Create(path, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = h.Close() }()

	if err := h.Truncate(); err != nil {
		t.Fatal(err)
	}
	if err := h.WritePID(7); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "7\n" {
		t.Errorf("expected old content to be gone, got %q", data)
	}
}

func TestReadPID_UnusableContent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Empty":        "",
		"Garbage":      "hello world\n",
		"Zero":         "0\n",
		"Negative":     "-42\n",
		"TrailingJunk": "42abc\n",
	}

	for name, content := range tests {
		content := content
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "test.pid")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}

			h, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = h.Close() }()

			pid, err := h.ReadPID()
			if err != nil {
				t.Fatalf("unusable content must not be an error, got %v", err)
			}
			if pid != 0 {
				t.Errorf("expected pid 0, got %d", pid)
			}
		})
	}
}

func TestReadPID_ToleratesSurroundingSpace(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.pid")
	if err := os.WriteFile(path, []byte("  314 \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = h.Close() }()

	pid, err := h.ReadPID()
	if err != nil {
		t.Fatal(err)
	}
	if pid != 314 {
		t.Errorf("expected pid 314, got %d", pid)
	}
}
