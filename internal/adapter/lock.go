package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	m "pscan.dev/pkg/pscan/internal/model"
)

// Lease is a held exclusive lock.
type Lease interface {
	Release() error
}

// Locker grants exclusive leases on named durable resources. A lease must
// exclude every other holder, in this process or any other, and must be
// dropped by the operating system when the holding process dies.
type Locker interface {
	Acquire(ctx context.Context, name m.Path) (Lease, error)
}

// DefaultLockRetryDelay is the poll interval while waiting for a lock.
const DefaultLockRetryDelay = 50 * time.Millisecond

// FileLocker implements Locker with OS advisory file locks (flock on unix,
// LockFileEx on windows).
type FileLocker struct {
	retryDelay time.Duration
}

// NewFileLocker constructs a FileLocker polling every retryDelay while the
// lock is contended. A zero delay uses DefaultLockRetryDelay.
func NewFileLocker(retryDelay time.Duration) *FileLocker {
	if retryDelay <= 0 {
		retryDelay = DefaultLockRetryDelay
	}

	return &FileLocker{retryDelay: retryDelay}
}

// Acquire blocks until the lock file at name is held or ctx is done. The
// wait bound is the ctx deadline. Every failure wraps m.ErrLockAcquisition.
func (l *FileLocker) Acquire(ctx context.Context, name m.Path) (Lease, error) {
	fl := flock.New(string(name))

	locked, err := fl.TryLockContext(ctx, l.retryDelay)
	if err != nil || !locked {
		l.discard(fl)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			slog.Warn("Gave up waiting for lock", "lock", name, "error", err)
		} else {
			slog.Error("Failed to acquire lock", "lock", name, "error", err)
		}

		return nil, fmt.Errorf("%w: %s: %w", m.ErrLockAcquisition, name, err)
	}

	if !locked {
		return nil, fmt.Errorf("%w: %s: not acquired", m.ErrLockAcquisition, name)
	}

	return &fileLease{lock: fl}, nil
}

func (l *FileLocker) discard(fl *flock.Flock) {
	if err := fl.Close(); err != nil {
		slog.Warn("Failed to close lock file", "lock", fl.Path(), "error", err)
	}
}

type fileLease struct {
	lock *flock.Flock
}

func (f *fileLease) Release() error {
	if err := f.lock.Unlock(); err != nil {
		slog.Error("Failed to release lock", "lock", f.lock.Path(), "error", err)
		return fmt.Errorf("release lock %s: %w", f.lock.Path(), err)
	}

	return nil
}
