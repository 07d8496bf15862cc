package testsupport

import (
	"path/filepath"
	"testing"

	"lineage/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Gramps.URL = "http://gramps.test"
	cfg.Gramps.Username = "tester"
	cfg.Gramps.Password = "secret"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithGrampsURL overrides the Gramps Web API endpoint on the test config.
func WithGrampsURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Gramps.URL = url
	}
}
