// Package mapinfo builds the registry of StarCraft II maps found in the local
// Battle.net cache.
//
// A scan walks the cache root, reads each archive's generated map script,
// parses the map name and author from the fixed comment header, and keeps one
// entry per name@author key: the archive with the newest modification time.
// Only entries that win deduplication are enriched with the protection status
// and bank list, since both require further archive and script work.
//
// Files that cannot be read or parsed never abort a scan. They are collected in
// a MalformedReport returned alongside the entries.
//
// # Concurrency
//
// Files are processed on a bounded worker pool. The Registry is the only shared
// state; its compare-and-replace step runs under a single mutex, and enrichment
// results for an entry that was superseded while enrichment ran are discarded.
package mapinfo
