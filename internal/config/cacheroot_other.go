//go:build !windows

package config

import "runtime"

// defaultCacheRoot points at the conventional Battle.net cache location. On
// Linux the client runs under Wine, so the default Wine prefix is assumed.
func defaultCacheRoot() string {
	if runtime.GOOS == "darwin" {
		return "/Users/Shared/Blizzard/Battle.net/Cache"
	}
	return "~/.wine/drive_c/ProgramData/Blizzard Entertainment/Battle.net/Cache"
}
