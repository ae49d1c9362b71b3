package daemon_test

import (
	"context"
	"errors"
	"testing"

	"ytcourier/internal/daemon"
	"ytcourier/internal/logging"
	"ytcourier/internal/testsupport"
)

func TestRunHoldsInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	first := daemon.New(cfg, logging.NewNop())
	second := daemon.New(cfg, logging.NewNop())

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- first.Run(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := second.Run(context.Background(), func(ctx context.Context) error {
		t.Error("second instance must not run")
		return nil
	})
	if !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Errorf("second Run = %v, want ErrAlreadyRunning", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Run = %v", err)
	}

	// Lock released; a new instance can start.
	if err := second.Run(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("rerun after release = %v", err)
	}
}

func TestRunTreatsCancellationAsCleanShutdown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	d := daemon.New(cfg, logging.NewNop())
	err := d.Run(context.Background(), func(ctx context.Context) error {
		return context.Canceled
	})
	if err != nil {
		t.Errorf("Run = %v, want nil for cancellation", err)
	}
}

func TestRunPropagatesFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	boom := errors.New("poll loop failed")
	d := daemon.New(cfg, logging.NewNop())
	if err := d.Run(context.Background(), func(ctx context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want %v", err, boom)
	}
}
