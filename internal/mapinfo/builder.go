package mapinfo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"starbank/internal/logging"
)

// DefaultExtension is the cached map archive extension.
const DefaultExtension = ".s2ma"

// Options tunes a Builder.
type Options struct {
	// Extensions lists the archive extensions to scan, case-insensitive.
	Extensions []string
	// ScriptEntry is the archive entry holding the map script.
	ScriptEntry string
	// Workers bounds the number of files processed concurrently.
	Workers int
	// FileTimeout bounds script extraction per file. Zero disables it.
	FileTimeout time.Duration
}

// Stats summarises one scan.
type Stats struct {
	Discovered int           `json:"discovered"`
	Parsed     int           `json:"parsed"`
	Accepted   int           `json:"accepted"`
	Replaced   int           `json:"replaced"`
	Rejected   int           `json:"rejected"`
	Enriched   int           `json:"enriched"`
	Stale      int           `json:"stale"`
	Malformed  int           `json:"malformed"`
	Duration   time.Duration `json:"duration"`
}

// ScanResult is the outcome of Builder.Build.
type ScanResult struct {
	ScanID    string          `json:"scan_id"`
	Root      string          `json:"root"`
	Entries   []MapEntry      `json:"entries"`
	Malformed MalformedReport `json:"malformed"`
	Stats     Stats           `json:"stats"`
}

// Builder scans a cache root and builds the deduplicated registry.
type Builder struct {
	reader    ArchiveReader
	extractor *ScriptExtractor
	gate      *EnrichmentGate
	opts      Options
	exts      map[string]struct{}
	logger    *slog.Logger
}

// NewBuilder wires a builder. A nil gate disables enrichment.
func NewBuilder(reader ArchiveReader, gate *EnrichmentGate, opts Options, logger *slog.Logger) *Builder {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ScriptEntry == "" {
		opts.ScriptEntry = DefaultScriptEntry
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{DefaultExtension}
	}
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Builder{
		reader:    reader,
		extractor: NewScriptExtractor(reader, opts.ScriptEntry, opts.FileTimeout),
		gate:      gate,
		opts:      opts,
		exts:      exts,
		logger:    logging.NewComponentLogger(logger, "mapinfo"),
	}
}

type candidate struct {
	path    string
	modTime time.Time
	statErr error
}

type fileOutcome struct {
	malformed []Malformed
	parsed    bool
	offer     offerOutcome
	enriched  bool
	stale     bool
}

// Build scans cacheRoot and returns the registry contents with the malformed
// report. Per-file failures are reported, never returned; the error is reserved
// for an unusable root or a cancelled context.
func (b *Builder) Build(ctx context.Context, cacheRoot string) (*ScanResult, error) {
	start := time.Now()
	scanID := uuid.NewString()
	ctx = logging.WithScanID(ctx, scanID)
	logger := logging.WithContext(ctx, b.logger)

	root := strings.TrimSpace(cacheRoot)
	if root == "" {
		return nil, errors.New("cache root not configured")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cache root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cache root %s: not a directory", root)
	}

	logger.Info("scanning map cache",
		logging.String("root", root),
		logging.Int("workers", b.opts.Workers),
		logging.Any("extensions", b.opts.Extensions),
	)

	files, err := b.discover(ctx, root)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	outcomes := make([]fileOutcome, len(files))

	var group errgroup.Group
	group.SetLimit(b.opts.Workers)
	for i, file := range files {
		i, file := i, file
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			outcomes[i] = b.processFile(ctx, registry, i, file)
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		logger.Info("map cache scan cancelled", logging.Error(err))
		return nil, err
	}

	result := &ScanResult{
		ScanID:    scanID,
		Root:      root,
		Entries:   registry.Entries(),
		Malformed: MalformedReport{},
	}
	stats := &result.Stats
	stats.Discovered = len(files)
	for _, outcome := range outcomes {
		result.Malformed = append(result.Malformed, outcome.malformed...)
		if !outcome.parsed {
			continue
		}
		stats.Parsed++
		switch outcome.offer {
		case offerInserted:
			stats.Accepted++
		case offerReplaced:
			stats.Accepted++
			stats.Replaced++
		default:
			stats.Rejected++
		}
		if outcome.enriched {
			stats.Enriched++
		}
		if outcome.stale {
			stats.Stale++
		}
	}
	stats.Malformed = len(result.Malformed)
	stats.Duration = time.Since(start)

	logger.Info("map cache scan complete",
		logging.Int("discovered", stats.Discovered),
		logging.Int("entries", registry.Len()),
		logging.Int("replaced", stats.Replaced),
		logging.Int("rejected", stats.Rejected),
		logging.Int("malformed", stats.Malformed),
		logging.Duration("duration", stats.Duration),
	)
	return result, nil
}

// discover walks root in lexical order and returns the matching files.
func (b *Builder) discover(ctx context.Context, root string) ([]candidate, error) {
	var files []candidate
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logging.WarnWithContext(ctx, b.logger, "skipping unreadable cache path",
				"cache_walk_failed",
				logging.String("path", path),
				logging.Error(walkErr),
				logging.String(logging.FieldErrorHint, "check permissions on the cache directory"),
				logging.String(logging.FieldImpact, "maps below this path are not indexed"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !b.matches(d.Name()) {
			return nil
		}
		file := candidate{path: path}
		info, err := d.Info()
		if err != nil {
			file.statErr = err
		} else {
			file.modTime = info.ModTime()
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("walk cache root %s: %w", root, err)
	}
	return files, nil
}

func (b *Builder) matches(name string) bool {
	_, ok := b.exts[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (b *Builder) processFile(ctx context.Context, registry *Registry, seq int, file candidate) fileOutcome {
	var outcome fileOutcome
	logger := logging.WithContext(ctx, b.logger)

	if file.statErr != nil {
		outcome.malformed = append(outcome.malformed, Malformed{
			Kind:   KindArchiveUnreadable,
			Path:   file.path,
			Detail: file.statErr.Error(),
		})
		return outcome
	}

	script, err := b.extractor.Extract(ctx, file.path)
	if err != nil {
		if ctx.Err() != nil {
			return outcome
		}
		logging.WarnWithContext(ctx, b.logger, "map archive unreadable",
			"archive_unreadable",
			logging.String("path", file.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the cache file may be truncated or still downloading"),
			logging.String(logging.FieldImpact, "map skipped and listed as malformed"),
		)
		outcome.malformed = append(outcome.malformed, Malformed{
			Kind:   KindArchiveUnreadable,
			Path:   file.path,
			Detail: err.Error(),
		})
		return outcome
	}

	header, err := ParseHeader(script)
	if err != nil {
		var headerErr *HeaderError
		if !errors.As(err, &headerErr) || headerErr.Fatal() {
			kind := KindHeaderTooShort
			if headerErr != nil {
				kind = headerErr.Kind
			}
			logger.Debug("map script header malformed",
				logging.String("path", file.path),
				logging.String("kind", string(kind)),
				logging.Error(err),
			)
			outcome.malformed = append(outcome.malformed, Malformed{
				Kind:   kind,
				Path:   file.path,
				Detail: err.Error(),
			})
			return outcome
		}
		outcome.malformed = append(outcome.malformed, Malformed{
			Kind:   headerErr.Kind,
			Path:   file.path,
			Name:   header.Name,
			Detail: err.Error(),
		})
	}
	outcome.parsed = true

	entry := &MapEntry{
		CachePath:     file.path,
		DateModified:  file.modTime,
		Name:          header.Name,
		AuthorName:    header.Author,
		AuthorMissing: header.AuthorMissing,
	}
	outcome.offer = registry.offer(entry, seq)
	accepted := outcome.offer.accepted()
	logger.Debug("map offered",
		logging.String("key", entry.Key()),
		logging.String("path", file.path),
		logging.Bool("accepted", accepted),
	)

	if !b.gate.ShouldEnrich(accepted) {
		return outcome
	}
	if accepted && !registry.IsCurrent(entry) {
		outcome.stale = true
		return outcome
	}
	enrichment := b.gate.Enrich(ctx, entry, script)
	outcome.enriched = true
	if !registry.ApplyEnrichment(entry, enrichment) && accepted {
		outcome.stale = true
		logger.Debug("discarding enrichment for superseded map", logging.String("key", entry.Key()))
	}
	return outcome
}

// ExtractScriptAsset writes the map script of entry's archive to destPath.
func (b *Builder) ExtractScriptAsset(ctx context.Context, entry MapEntry, destPath string) error {
	if strings.TrimSpace(entry.CachePath) == "" {
		return errors.New("map entry has no cache path")
	}
	if strings.TrimSpace(destPath) == "" {
		return errors.New("destination path required")
	}
	if b.reader == nil {
		return fmt.Errorf("%w: no archive reader configured", ErrArchiveUnreadable)
	}
	if err := b.reader.ExtractEntry(ctx, entry.CachePath, b.opts.ScriptEntry, destPath); err != nil {
		return fmt.Errorf("extract %s from %s: %w", b.opts.ScriptEntry, entry.CachePath, err)
	}
	logging.WithContext(ctx, b.logger).Info("map script extracted",
		logging.String("map", entry.Name),
		logging.String("author", entry.AuthorName),
		logging.String("dest", destPath),
	)
	return nil
}
