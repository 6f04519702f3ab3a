package testsupport

import (
	"path/filepath"
	"testing"

	"reelsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Trakt.ClientID = "test-client"
	cfg.Trakt.ClientSecret = "test-secret"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Plex.UserDataDir = filepath.Join(base, "browser")
	cfg.Dashboard.Bind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithPageSize overrides the history pagination size on the test config.
func WithPageSize(size int) ConfigOption {
	return func(c *config.Config) {
		c.Sync.PageSize = size
	}
}

// WithStopAfterFirst enables single-record mirror batches on the test config.
func WithStopAfterFirst() ConfigOption {
	return func(c *config.Config) {
		c.Mirror.StopAfterFirst = true
	}
}
