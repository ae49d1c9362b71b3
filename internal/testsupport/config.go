// Package testsupport provides helpers shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ytcourier/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.WhitelistPath = filepath.Join(base, "whitelist.json")
	cfgVal.Paths.HistoryDBPath = filepath.Join(base, "history.db")
	cfgVal.Telegram.Token = "test-token"
	cfgVal.Telegram.AdminID = 1000
	cfgVal.Downloads.FetchTimeout = 60

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAdminID overrides the admin user ID on the test config.
func WithAdminID(id int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Telegram.AdminID = id
	}
}

// WithMaxFileBytes overrides the delivery size ceiling on the test config.
func WithMaxFileBytes(n int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Downloads.MaxFileBytes = n
	}
}

// WithStubbedYtDlp writes a stub yt-dlp executable that exits successfully
// and points the config at it.
func WithStubbedYtDlp() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "yt-dlp")
		if err := os.WriteFile(target, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			b.t.Fatalf("write stub yt-dlp: %v", err)
		}
		b.cfg.Downloads.YtDlpBinary = target
	}
}
