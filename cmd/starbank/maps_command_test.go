package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"starbank/internal/mapinfo"
	"starbank/internal/testsupport"
)

func TestMapsListEmptyCache(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"maps", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("maps list: %v", err)
	}
	requireContains(t, out, "No maps found under "+env.cacheRoot)
	requireContains(t, out, "0 maps from 0 archives")
	if strings.Contains(out, malformedIntro) {
		t.Fatalf("empty report should print nothing, got %q", out)
	}
}

func TestMapsListReportsUnreadableArchive(t *testing.T) {
	env := setupCLITestEnv(t)
	broken := filepath.Join(env.cacheRoot, "ab", "cd", "broken.s2ma")
	writeGarbageArchive(t, broken)

	out, _, err := runCLI(t, []string{"maps", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("maps list: %v", err)
	}
	requireContains(t, out, "0 maps from 1 archives, 1 malformed")
	requireContains(t, out, malformedIntro)
	requireContains(t, out, "[UNREADABLE] "+broken)
}

func TestMapsListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	broken := filepath.Join(env.cacheRoot, "broken.s2ma")
	writeGarbageArchive(t, broken)

	out, _, err := runCLI(t, []string{"maps", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("maps list --json: %v", err)
	}
	var result mapinfo.ScanResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if result.ScanID == "" || result.Root != env.cacheRoot {
		t.Fatalf("unexpected scan header %+v", result)
	}
	if len(result.Malformed) != 1 || result.Malformed[0].Kind != mapinfo.KindArchiveUnreadable {
		t.Fatalf("unexpected malformed report %+v", result.Malformed)
	}
	if result.Malformed[0].Path != broken {
		t.Fatalf("expected path %s, got %s", broken, result.Malformed[0].Path)
	}
}

func TestMapsListRootOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	writeGarbageArchive(t, filepath.Join(env.cacheRoot, "broken.s2ma"))
	other := t.TempDir()

	out, _, err := runCLI(t, []string{"maps", "list", "--root", other}, env.configPath)
	if err != nil {
		t.Fatalf("maps list --root: %v", err)
	}
	requireContains(t, out, "No maps found under "+other)
}

func TestMapsListMissingRootFails(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "nope")

	_, _, err := runCLI(t, []string{"maps", "list", "--root", missing}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing cache root")
	}
	requireContains(t, err.Error(), "scan map cache")
}

func TestMapsBanksRejectsUnknownReference(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"maps", "banks", "1"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for out of range map number")
	}
	requireContains(t, err.Error(), "out of range")

	_, _, err = runCLI(t, []string{"maps", "extract", "Foo@Bar"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown map key")
	}
	requireContains(t, err.Error(), "no cached map matches")
}

func TestResolveEntry(t *testing.T) {
	entries := []mapinfo.MapEntry{
		{Name: "Desert Strike", AuthorName: "Alpha"},
		{Name: "Desert Strike", AuthorName: "Beta"},
		{Name: "Nexus Wars", AuthorName: "Gamma"},
	}

	tests := []struct {
		ref     string
		wantKey string
		wantErr string
	}{
		{ref: "2", wantKey: "Desert Strike@Beta"},
		{ref: " 3 ", wantKey: "Nexus Wars@Gamma"},
		{ref: "Desert Strike@Alpha", wantKey: "Desert Strike@Alpha"},
		{ref: "nexus wars", wantKey: "Nexus Wars@Gamma"},
		{ref: "0", wantErr: "out of range"},
		{ref: "4", wantErr: "out of range"},
		{ref: "Desert Strike", wantErr: "matches several maps"},
		{ref: "Unknown", wantErr: "no cached map matches"},
		{ref: "", wantErr: "reference required"},
	}
	for _, tt := range tests {
		got, err := resolveEntry(entries, tt.ref)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("resolveEntry(%q) error = %v, want %q", tt.ref, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("resolveEntry(%q): %v", tt.ref, err)
		}
		if got.Key() != tt.wantKey {
			t.Fatalf("resolveEntry(%q) = %s, want %s", tt.ref, got.Key(), tt.wantKey)
		}
	}
}

func TestExtractDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	entry := mapinfo.MapEntry{Name: "Nexus: Wars", AuthorName: "Gamma"}

	got, err := extractDestination(cfg, entry, "")
	if err != nil {
		t.Fatalf("default destination: %v", err)
	}
	if want := filepath.Join(cfg.Paths.ExtractDir, "Nexus- Wars by Gamma.galaxy"); got != want {
		t.Fatalf("default destination = %q, want %q", got, want)
	}

	dir := t.TempDir()
	got, err = extractDestination(cfg, entry, dir)
	if err != nil {
		t.Fatalf("directory destination: %v", err)
	}
	if want := filepath.Join(dir, "Nexus- Wars by Gamma.galaxy"); got != want {
		t.Fatalf("directory destination = %q, want %q", got, want)
	}

	file := filepath.Join(dir, "custom.galaxy")
	got, err = extractDestination(cfg, entry, file)
	if err != nil {
		t.Fatalf("file destination: %v", err)
	}
	if got != file {
		t.Fatalf("file destination = %q, want %q", got, file)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Fatal("destination resolution must not create files")
	}
}
