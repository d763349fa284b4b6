package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("STARBANK_CACHE_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.CacheRoot = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.CacheRoot) == "" {
		c.Paths.CacheRoot = defaultCacheRoot()
	}
	var err error
	if c.Paths.CacheRoot, err = expandPath(strings.TrimSpace(c.Paths.CacheRoot)); err != nil {
		return fmt.Errorf("paths.cache_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExtractDir) == "" {
		c.Paths.ExtractDir = defaultExtractDir
	}
	if c.Paths.ExtractDir, err = expandPath(strings.TrimSpace(c.Paths.ExtractDir)); err != nil {
		return fmt.Errorf("paths.extract_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	exts := make([]string, 0, len(c.Scan.Extensions))
	seen := make(map[string]struct{}, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{defaultArchiveExtension}
	}
	c.Scan.Extensions = exts

	c.Scan.ScriptEntry = strings.TrimSpace(c.Scan.ScriptEntry)
	if c.Scan.ScriptEntry == "" {
		c.Scan.ScriptEntry = defaultScriptEntry
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = defaultWorkers()
	}
	if c.Scan.FileTimeoutSeconds == 0 {
		c.Scan.FileTimeoutSeconds = defaultFileTimeoutSeconds
	}
	c.Scan.EnrichPolicy = strings.ToLower(strings.TrimSpace(c.Scan.EnrichPolicy))
	c.Scan.EnrichPolicy = strings.ReplaceAll(c.Scan.EnrichPolicy, "-", "_")
	if c.Scan.EnrichPolicy == "" {
		c.Scan.EnrichPolicy = defaultEnrichPolicy
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
