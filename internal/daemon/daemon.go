// Package daemon enforces single-instance execution for the bot process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"ytcourier/internal/config"
	"ytcourier/internal/logging"
)

// ErrAlreadyRunning reports that another daemon instance holds the lock.
var ErrAlreadyRunning = errors.New("another ytcourier daemon instance is already running")

// Daemon wraps the bot's long-running loop with a file lock so only one
// poller talks to the Bot API at a time.
type Daemon struct {
	logger   *slog.Logger
	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
}

// New constructs a daemon. The lock file lives next to the logs.
func New(cfg *config.Config, logger *slog.Logger) *Daemon {
	lockPath := filepath.Join(cfg.Paths.LogDir, "ytcourierd.lock")
	return &Daemon{
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// Run acquires the instance lock, invokes run, and releases the lock when
// run returns. A context cancellation propagated out of run is reported as
// a clean shutdown.
func (d *Daemon) Run(ctx context.Context, run func(context.Context) error) error {
	if d.running.Load() {
		return ErrAlreadyRunning
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	d.running.Store(true)
	defer func() {
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(unlockErr))
		}
		d.running.Store(false)
	}()

	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	err = run(ctx)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		err = nil
	}
	if err != nil {
		d.logger.Error("daemon stopped with error", logging.Error(err))
		return err
	}
	d.logger.Info("daemon stopped")
	return nil
}

// LockPath returns the instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
