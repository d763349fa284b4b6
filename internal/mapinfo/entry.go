package mapinfo

import (
	"time"

	"starbank/internal/bank"
)

// UnknownAuthor is recorded when a script header has no author line.
const UnknownAuthor = "(Unknown)"

// keySeparator joins name and author into a registry key.
const keySeparator = "@"

// MapEntry is one cached map archive with its parsed header.
type MapEntry struct {
	CachePath    string    `json:"cache_path"`
	DateModified time.Time `json:"date_modified"`
	Name         string    `json:"name"`
	AuthorName   string    `json:"author_name"`
	// AuthorMissing is set when the author line exists but is too short to
	// carry a value; AuthorName is empty in that case.
	AuthorMissing bool `json:"author_missing,omitempty"`

	// Populated by enrichment for entries that survive deduplication.
	IsProtected *bool         `json:"is_protected,omitempty"`
	Banks       []bank.Record `json:"banks,omitempty"`
}

// Key returns the deduplication key name@author.
func (e MapEntry) Key() string {
	return Key(e.Name, e.AuthorName)
}

// Enriched reports whether enrichment results were applied to the entry.
func (e MapEntry) Enriched() bool {
	return e.IsProtected != nil || e.Banks != nil
}

// Key builds the deduplication key for a name and author.
func Key(name, author string) string {
	return name + keySeparator + author
}
