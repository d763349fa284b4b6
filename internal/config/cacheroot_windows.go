//go:build windows

package config

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// defaultCacheRoot resolves the Battle.net cache under the ProgramData known
// folder, falling back to the PROGRAMDATA environment variable.
func defaultCacheRoot() string {
	base, err := windows.KnownFolderPath(windows.FOLDERID_ProgramData, 0)
	if err != nil || base == "" {
		base = os.Getenv("PROGRAMDATA")
	}
	if base == "" {
		base = `C:\ProgramData`
	}
	return filepath.Join(base, "Blizzard Entertainment", "Battle.net", "Cache")
}
