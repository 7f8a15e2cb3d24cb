package toolcache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTryLock(t *testing.T) {
	t.Run("creates lock file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", ".i386.lock")

		lock, err := tryLock(path)
		if err != nil {
			t.Fatalf("tryLock failed: %v", err)
		}
		defer lock.Release()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("lock file not created: %v", err)
		}
	})

	t.Run("prevents concurrent locks", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".i386.lock")

		first, err := tryLock(path)
		if err != nil {
			t.Fatalf("first tryLock failed: %v", err)
		}
		defer first.Release()

		if _, err := tryLock(path); !errors.Is(err, ErrLockExists) {
			t.Errorf("expected ErrLockExists, got %v", err)
		}
	})

	t.Run("breaks stale lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".i386.lock")
		if err := os.WriteFile(path, []byte("pid=1\n"), 0o600); err != nil {
			t.Fatalf("write stale lock: %v", err)
		}
		old := time.Now().Add(-2 * StaleLockThreshold)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("age lock: %v", err)
		}

		lock, err := tryLock(path)
		if err != nil {
			t.Fatalf("stale lock was not broken: %v", err)
		}
		lock.Release()
	})

	t.Run("release removes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".i386.lock")
		lock, err := tryLock(path)
		if err != nil {
			t.Fatalf("tryLock failed: %v", err)
		}
		if err := lock.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("lock file still present after release")
		}
		// second release is a no-op
		if err := lock.Release(); err != nil {
			t.Errorf("second Release failed: %v", err)
		}
	})
}

func TestAcquireLock_WaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".i386.lock")

	held, err := tryLock(path)
	if err != nil {
		t.Fatalf("tryLock failed: %v", err)
	}
	go func() {
		time.Sleep(3 * lockPollInterval / 2)
		held.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lock, err := acquireLock(ctx, path)
	if err != nil {
		t.Fatalf("acquireLock failed: %v", err)
	}
	lock.Release()
}

func TestAcquireLock_RespectsContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".i386.lock")

	held, err := tryLock(path)
	if err != nil {
		t.Fatalf("tryLock failed: %v", err)
	}
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := acquireLock(ctx, path); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}
