package indexer

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
)

// IndexLock serializes indexing runs across processes. A second
// `airdocs index` started while one is running fails fast instead of
// interleaving writes.
type IndexLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewIndexLock creates a lock scoped to the database directory.
// The lock file lives at <dir>/.index.lock.
func NewIndexLock(dir string) *IndexLock {
	lockPath := filepath.Join(dir, ".index.lock")
	return &IndexLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Acquire takes the lock without blocking. A held lock surfaces as
// ErrCodeIndexLocked.
func (l *IndexLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return airerrors.StorageError("failed to create lock directory", filepath.Dir(l.path), err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return airerrors.StorageError("failed to acquire index lock", l.path, err)
	}
	if !acquired {
		return airerrors.New(airerrors.ErrCodeIndexLocked,
			"another indexing run is in progress", nil).
			WithDetail("lock", l.path).
			WithSuggestion("wait for the other run to finish or remove a stale lock file")
	}

	l.locked = true
	return nil
}

// Release drops the lock. Safe to call when not held.
func (l *IndexLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	return l.flock.Unlock()
}

// Path returns the lock file path.
func (l *IndexLock) Path() string {
	return l.path
}
