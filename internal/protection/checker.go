package protection

import (
	"context"
	"fmt"
)

// ListFileEntry is the MPQ entry naming every file in an archive.
const ListFileEntry = "(listfile)"

// EntryLister reports whether a named entry exists in an archive with content.
type EntryLister interface {
	HasEntry(ctx context.Context, path, entryName string) (bool, error)
}

// Checker decides whether a map archive is protected.
type Checker struct {
	lister EntryLister
}

// NewChecker builds a Checker backed by lister.
func NewChecker(lister EntryLister) *Checker {
	return &Checker{lister: lister}
}

// IsProtected reports true when the archive's listfile is missing or empty.
func (c *Checker) IsProtected(ctx context.Context, path string) (bool, error) {
	if c == nil || c.lister == nil {
		return false, fmt.Errorf("protection: no archive lister configured")
	}
	ok, err := c.lister.HasEntry(ctx, path, ListFileEntry)
	if err != nil {
		return false, fmt.Errorf("protection: inspect %s: %w", path, err)
	}
	return !ok, nil
}
