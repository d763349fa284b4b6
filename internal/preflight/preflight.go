package preflight

import (
	"context"

	"starbank/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Required bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckCacheRoot(ctx, "Cache root", cfg.Paths.CacheRoot, cfg.Scan.Extensions),
		required(CheckDirectoryAccess("Extract directory", cfg.Paths.ExtractDir)),
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, required(CheckDirectoryAccess("Log directory", cfg.Paths.LogDir)))
	}

	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if result.Required && !result.Passed {
			return true
		}
	}
	return false
}

func required(result Result) Result {
	result.Required = true
	return result
}
