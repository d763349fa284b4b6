// Package fileutil holds small filesystem helpers shared by the CLI and the
// archive adapter: atomic replacement and lock-guarded writes.
package fileutil
