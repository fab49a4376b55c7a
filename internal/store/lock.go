package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// WriteLock is a cross-process advisory lock guarding the single-writer
// contract the store relies on: one writer per database file at a time,
// with WAL journaling covering concurrent readers.
type WriteLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewWriteLock returns a lock for dbPath, held at "<dbPath>.lock".
func NewWriteLock(dbPath string) *WriteLock {
	lockPath := dbPath + ".lock"
	return &WriteLock{path: lockPath, flock: flock.New(lockPath)}
}

// TryLock attempts to acquire the write lock without blocking.
func (l *WriteLock) TryLock() (bool, error) {
	if dir := filepath.Dir(l.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating lock directory: %w", err)
		}
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquiring write lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call on an unlocked WriteLock.
func (l *WriteLock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("releasing write lock: %w", err)
	}
	l.locked = false
	return nil
}
