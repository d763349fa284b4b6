package testsupport

import (
	"path/filepath"
	"testing"

	"starbank/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The cache root exists but is empty.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheRoot = filepath.Join(base, "cache")
	cfgVal.Paths.ExtractDir = filepath.Join(base, "scripts")
	cfgVal.Paths.LogDir = ""
	cfgVal.Scan.Workers = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	MkdirAll(t, cfgVal.Paths.CacheRoot)

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers overrides the scan worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.Workers = n
	}
}

// WithEnrichPolicy overrides scan.enrich_policy.
func WithEnrichPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.EnrichPolicy = policy
	}
}

// WithLogDir enables file logging below the test base directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheRoot)
}
