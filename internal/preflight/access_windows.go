//go:build windows

package preflight

import "os"

// Windows ACLs are not reflected in mode bits; opening the directory is the
// closest cheap probe.
func accessible(path string, _ bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
