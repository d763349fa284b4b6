package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheRoot  string `toml:"cache_root"`
	ExtractDir string `toml:"extract_dir"`
	LogDir     string `toml:"log_dir"`
}

// Scan contains configuration for the map cache scan.
type Scan struct {
	// Extensions selects archive files by suffix (case-insensitive).
	Extensions []string `toml:"extensions"`
	// ScriptEntry is the archive entry holding the generated map script.
	ScriptEntry string `toml:"script_entry"`
	// Workers bounds concurrent per-file processing. 1 scans sequentially.
	Workers int `toml:"workers"`
	// FileTimeoutSeconds bounds script extraction for a single archive.
	FileTimeoutSeconds int `toml:"file_timeout_seconds"`
	// EnrichPolicy is one of "on_accept", "always", or "never".
	EnrichPolicy string `toml:"enrich_policy"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for StarBank.
//
// Configuration sections by subsystem:
//   - Paths: map cache root, script extraction and log directories
//   - Scan: archive selection, worker pool and enrichment policy
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scan    Scan    `toml:"scan"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/starbank/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// projectConfigName is looked up in the working directory when no user
// config exists.
const projectConfigName = "starbank.toml"

// resolveConfigPath returns the config file to read and whether it exists. An
// explicit path is used as-is even when missing; otherwise the user config and
// then the project file are tried, falling back to the user path.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := fileExists(expanded)
		if err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, exists, nil
	}

	candidates, err := searchPaths()
	if err != nil {
		return "", false, err
	}
	for _, candidate := range candidates {
		if exists, _ := fileExists(candidate); exists {
			return candidate, true, nil
		}
	}
	return candidates[0], false, nil
}

func searchPaths() ([]string, error) {
	userPath, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return nil, err
	}
	return []string{userPath, projectPath}, nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// EnsureDirectories creates the writable directories StarBank owns. The cache
// root belongs to the game client and is never created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ExtractDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
