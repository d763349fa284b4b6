package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// MapScript returns script text with the generated comment header carrying
// name and author, followed by body lines.
func MapScript(name, author string, body ...string) string {
	lines := []string{
		"//==================================================",
		"// ",
		"// Generated Map Script",
		"// ",
		"// Name:   " + name,
		"// Author: " + author,
		"// ",
		"//==================================================",
	}
	lines = append(lines, body...)
	return strings.Join(lines, "\n")
}

// MkdirAll creates dir and its parents.
func MkdirAll(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

// WriteArchive creates a placeholder archive at path with the given
// modification time. The contents are not a valid MPQ file; tests pair it
// with a fake archive reader keyed by path.
func WriteArchive(t testing.TB, path string, modTime time.Time) string {
	t.Helper()

	MkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte("MPQ\x1a"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
	return path
}

// Day returns midnight UTC of the given day in January 2024, a convenient
// monotonic timestamp for recency tests.
func Day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}
