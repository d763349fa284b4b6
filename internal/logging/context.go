package logging

import (
	"context"
	"log/slog"
	"strings"
)

type scanIDKey struct{}

// WithScanID stores the scan correlation id on ctx.
func WithScanID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scanIDKey{}, strings.TrimSpace(id))
}

// ScanIDFromContext returns the scan correlation id, if any.
func ScanIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(scanIDKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := ScanIDFromContext(ctx); ok {
		return logger.With(String(FieldScanID, id))
	}
	return logger
}
