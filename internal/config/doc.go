// Package config loads, normalizes, and validates StarBank configuration data.
//
// It supplies repository defaults (including the OS-specific Battle.net cache
// location), expands user paths with tilde shortcuts, reads TOML files, and
// honours the STARBANK_CACHE_ROOT environment override. The cache root is handed
// to the map scanner as an explicit value so the scanner never resolves
// process-wide locations on its own.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
