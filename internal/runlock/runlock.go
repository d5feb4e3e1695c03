// Package runlock guards a data directory against concurrent update runs.
package runlock

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"titledb/internal/logging"
)

// ErrLocked reports that another run holds the lock.
var ErrLocked = errors.New("another titledb run is using the data directory")

// Lock is a held advisory lock.
type Lock struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Acquire takes the lock at path without waiting.
func Acquire(path string, logger *slog.Logger) (*Lock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
	}
	return &Lock{path: path, lock: lock, logger: logging.NewComponentLogger(logger, "runlock")}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() {
	if l == nil || l.lock == nil {
		return
	}
	if err := l.lock.Unlock(); err != nil {
		l.logger.Warn("failed to release run lock",
			logging.String("lock", l.path),
			logging.Error(err),
		)
	}
	l.lock = nil
}
