package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CheckCacheRoot verifies that the cache root is a readable directory and
// counts the archives below it.
func CheckCacheRoot(ctx context.Context, name, root string, extensions []string) Result {
	if result, ok := statDirectory(name, root); !ok {
		return result
	}
	if err := accessible(root, false); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", root, err)}
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if _, ok := exts[strings.ToLower(filepath.Ext(path))]; ok {
				count++
			}
		}
		return nil
	})
	if err != nil && errors.Is(err, ctx.Err()) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", root, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d archives)", root, count)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if result, ok := statDirectory(name, path); !ok {
		return result
	}
	if err := accessible(path, true); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func statDirectory(name, path string) (Result, bool) {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, false
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}, false
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}, false
	}
	return Result{}, true
}
