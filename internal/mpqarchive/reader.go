package mpqarchive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"starbank/internal/fileutil"
	"starbank/internal/logging"
	"starbank/internal/mapinfo"
)

var (
	// ErrArchiveUnreadable reports an archive that cannot be opened or parsed.
	// It is the mapinfo sentinel so callers of either package match it.
	ErrArchiveUnreadable = mapinfo.ErrArchiveUnreadable
	// ErrEntryNotFound reports a missing named entry inside a readable archive.
	ErrEntryNotFound = errors.New("archive entry not found")
)

// Reader reads named entries from MPQ archives on disk.
type Reader struct {
	logger *slog.Logger
}

// NewReader constructs a Reader. A nil logger discards output.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logging.NewComponentLogger(logger, "mpqarchive")}
}

// ReadEntry returns the raw bytes of entryName inside the archive at path.
func (r *Reader) ReadEntry(ctx context.Context, path, entryName string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(entryName) == "" {
		return nil, errors.New("mpqarchive: entry name is empty")
	}

	arc, err := openArchive(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrArchiveUnreadable, path, err)
	}
	defer func() {
		if cerr := arc.Close(); cerr != nil {
			r.logger.Debug("close archive failed", logging.String("path", path), logging.Error(cerr))
		}
	}()

	data, err := arc.FileByName(entryName)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s from %s: %w", ErrArchiveUnreadable, entryName, path, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, entryName, path)
	}
	return data, nil
}

// OpenText returns entryName decoded as text.
func (r *Reader) OpenText(ctx context.Context, path, entryName string) (string, error) {
	data, err := r.ReadEntry(ctx, path, entryName)
	if err != nil {
		return "", err
	}
	return decodeScript(data), nil
}

// ExtractEntry copies entryName out of the archive to destPath. The write is
// atomic and guarded by an advisory lock so concurrent extractions to the same
// destination cannot interleave.
func (r *Reader) ExtractEntry(ctx context.Context, path, entryName, destPath string) error {
	data, err := r.ReadEntry(ctx, path, entryName)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileLocked(ctx, destPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	r.logger.InfoContext(ctx, "extracted archive entry",
		logging.String("archive", path),
		logging.String("entry", entryName),
		logging.String("dest", destPath),
		logging.Int("bytes", len(data)),
	)
	return nil
}

// HasEntry reports whether entryName exists in the archive with content.
func (r *Reader) HasEntry(ctx context.Context, path, entryName string) (bool, error) {
	data, err := r.ReadEntry(ctx, path, entryName)
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return len(data) > 0, nil
}

// decodeScript converts script bytes to UTF-8, stripping a byte order mark and
// converting UTF-16 content when a UTF-16 BOM is present.
func decodeScript(data []byte) string {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
