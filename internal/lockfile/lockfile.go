// Package lockfile provides cross-process exclusive locking used to
// enforce the "mirror database opened exclusively by one process at a time
// per daemon kind" rule (spec.md §5).
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock wraps an exclusive, non-blocking file lock on a sidecar path.
type Lock struct {
	fl   *flock.Flock
	path string
}

// New builds a Lock for path. The lock file itself is created lazily on
// the first TryLock call; it is never the daemon's own database file.
func New(path string) *Lock {
	return &Lock{fl: flock.New(path), path: path}
}

// TryLock attempts to acquire the lock without blocking. A false return
// with a nil error means another process already holds it.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}
	return l.fl.TryLock()
}

// Unlock releases the lock. Safe to call even if TryLock never succeeded.
func (l *Lock) Unlock() error {
	return l.fl.Unlock()
}

// Locked reports whether this process currently holds the lock.
func (l *Lock) Locked() bool {
	return l.fl.Locked()
}
