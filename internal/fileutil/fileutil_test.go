package fileutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "MapScript.galaxy")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("unexpected content %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteFileLockedWritesWhenFree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.galaxy")
	if err := WriteFileLocked(context.Background(), path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFileLocked: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "data" {
		t.Fatalf("unexpected result %q err=%v", got, err)
	}
}

func TestWriteFileLockedLeavesOnlyDirectoryLock(t *testing.T) {
	dir := t.TempDir()
	names := []string{"Alpha.galaxy", "Bravo.galaxy", "Charlie.galaxy"}
	for _, name := range names {
		if err := WriteFileLocked(context.Background(), filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("WriteFileLocked %s: %v", name, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	got := make(map[string]bool, len(entries))
	for _, entry := range entries {
		got[entry.Name()] = true
		if strings.HasSuffix(entry.Name(), ".galaxy.lock") {
			t.Fatalf("per-file lock left behind: %s", entry.Name())
		}
	}
	if len(entries) != len(names)+1 || !got[LockFileName] {
		t.Fatalf("expected %v plus %s, found %v", names, LockFileName, got)
	}
}

func TestWriteFileLockedReportsHeldLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.galaxy")
	holder := flock.New(filepath.Join(filepath.Dir(path), LockFileName))
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err = WriteFileLocked(ctx, path, []byte("data"), 0o644)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("destination should not exist, stat err=%v", statErr)
	}
}
