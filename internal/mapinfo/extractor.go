package mapinfo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultScriptEntry is the archive entry holding the generated map script.
const DefaultScriptEntry = "MapScript.galaxy"

// ArchiveReader reads named entries out of map archives.
type ArchiveReader interface {
	OpenText(ctx context.Context, path, entryName string) (string, error)
	ExtractEntry(ctx context.Context, path, entryName, destPath string) error
}

// ScriptExtractor returns the script text of an archive, bounded by a timeout.
type ScriptExtractor struct {
	reader    ArchiveReader
	entryName string
	timeout   time.Duration
}

// NewScriptExtractor returns an extractor reading entryName from each archive.
// A non-positive timeout disables the bound.
func NewScriptExtractor(reader ArchiveReader, entryName string, timeout time.Duration) *ScriptExtractor {
	if entryName == "" {
		entryName = DefaultScriptEntry
	}
	return &ScriptExtractor{reader: reader, entryName: entryName, timeout: timeout}
}

// Extract reads the script entry of the archive at path. Every failure,
// including a timeout, wraps ErrArchiveUnreadable.
func (x *ScriptExtractor) Extract(ctx context.Context, path string) (string, error) {
	if x == nil || x.reader == nil {
		return "", fmt.Errorf("%w: no archive reader configured", ErrArchiveUnreadable)
	}
	if x.timeout <= 0 {
		text, err := x.reader.OpenText(ctx, path, x.entryName)
		if err != nil {
			return "", wrapUnreadable(x.entryName, err)
		}
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := x.reader.OpenText(ctx, path, x.entryName)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			return res.text, nil
		}
		return "", x.failure(ctx, res.err)
	case <-ctx.Done():
		return "", x.failure(ctx, ctx.Err())
	}
}

func (x *ScriptExtractor) failure(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: read %s: timed out after %s", ErrArchiveUnreadable, x.entryName, x.timeout)
	}
	return wrapUnreadable(x.entryName, err)
}

// wrapUnreadable marks err as ErrArchiveUnreadable. Errors that already carry
// the sentinel are returned as is so the prefix appears once.
func wrapUnreadable(entryName string, err error) error {
	if errors.Is(err, ErrArchiveUnreadable) {
		return err
	}
	return fmt.Errorf("%w: read %s: %w", ErrArchiveUnreadable, entryName, err)
}
