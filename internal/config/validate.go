package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CacheRoot) == "" {
		return errors.New("paths.cache_root must be set (or export STARBANK_CACHE_ROOT)")
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must include at least one extension")
	}
	if strings.TrimSpace(c.Scan.ScriptEntry) == "" {
		return errors.New("scan.script_entry must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"scan.workers":              c.Scan.Workers,
		"scan.file_timeout_seconds": c.Scan.FileTimeoutSeconds,
	}); err != nil {
		return err
	}
	switch c.Scan.EnrichPolicy {
	case EnrichOnAccept, EnrichAlways, EnrichNever:
	default:
		return fmt.Errorf("scan.enrich_policy: unsupported value %q (want %s, %s or %s)",
			c.Scan.EnrichPolicy, EnrichOnAccept, EnrichAlways, EnrichNever)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
