package flock

import (
	"context"
	"fmt"
	"os"
	"time"

	bwcerrors "github.com/mrz1836/bwckit/internal/errors"
)

// lockFilePerm is the permission mode for lock files.
const lockFilePerm = 0o600

// Lock is a held exclusive file lock. Release it exactly once.
type Lock struct {
	f *os.File
}

// Acquire opens (creating if needed) the lock file at path and polls for an
// exclusive lock until it succeeds, the timeout elapses, or ctx is canceled.
// The lock file is left in place after release; only the lock matters.
func Acquire(ctx context.Context, path string, timeout, interval time.Duration) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFilePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed internally
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := Exclusive(f.Fd()); err == nil {
			return &Lock{f: f}, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, bwcerrors.ErrLockTimeout)
		}

		time.Sleep(interval)
	}
}

// Release unlocks and closes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}

	if err := Unlock(l.f.Fd()); err != nil {
		// Still try to close the file
		_ = l.f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return l.f.Close()
}
