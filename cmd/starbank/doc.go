// Package main hosts the StarBank CLI entrypoint and command graph.
//
// The Cobra-based command tree scans the local Battle.net map cache, lists the
// deduplicated maps with their protection status and banks, extracts map
// scripts, and scaffolds configuration. Configuration resolution and logger
// wiring live in commandContext so subcommands only deal with presentation.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
