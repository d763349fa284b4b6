package config

import "runtime"

const (
	defaultExtractDir         = "~/.local/share/starbank/scripts"
	defaultLogDir             = ""
	defaultScriptEntry        = "MapScript.galaxy"
	defaultArchiveExtension   = ".s2ma"
	defaultFileTimeoutSeconds = 30
	defaultMaxWorkers         = 8
	defaultEnrichPolicy       = EnrichOnAccept
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Enrichment policies accepted by scan.enrich_policy.
const (
	EnrichOnAccept = "on_accept"
	EnrichAlways   = "always"
	EnrichNever    = "never"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheRoot:  defaultCacheRoot(),
			ExtractDir: defaultExtractDir,
			LogDir:     defaultLogDir,
		},
		Scan: Scan{
			Extensions:         []string{defaultArchiveExtension},
			ScriptEntry:        defaultScriptEntry,
			Workers:            defaultWorkers(),
			FileTimeoutSeconds: defaultFileTimeoutSeconds,
			EnrichPolicy:       defaultEnrichPolicy,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > defaultMaxWorkers {
		return defaultMaxWorkers
	}
	if n < 1 {
		return 1
	}
	return n
}
