package mapinfo

import "errors"

var (
	ErrArchiveUnreadable   = errors.New("archive unreadable")
	ErrHeaderTooShort      = errors.New("script header too short")
	ErrNameFieldTooShort   = errors.New("map name line too short")
	ErrAuthorFieldTooShort = errors.New("author line too short")
)

// MalformedKind classifies why a cached archive did not yield a clean entry.
type MalformedKind string

const (
	KindArchiveUnreadable   MalformedKind = "archive_unreadable"
	KindHeaderTooShort      MalformedKind = "header_too_short"
	KindNameFieldTooShort   MalformedKind = "name_field_too_short"
	KindAuthorFieldTooShort MalformedKind = "author_field_too_short"
)

// Err returns the sentinel error matching the kind.
func (k MalformedKind) Err() error {
	switch k {
	case KindArchiveUnreadable:
		return ErrArchiveUnreadable
	case KindHeaderTooShort:
		return ErrHeaderTooShort
	case KindNameFieldTooShort:
		return ErrNameFieldTooShort
	case KindAuthorFieldTooShort:
		return ErrAuthorFieldTooShort
	default:
		return nil
	}
}

// Fatal reports whether the kind keeps the file out of the registry.
// An author anomaly still yields a usable entry.
func (k MalformedKind) Fatal() bool {
	return k != KindAuthorFieldTooShort
}

// Malformed is one item of a MalformedReport.
type Malformed struct {
	Kind MalformedKind `json:"kind"`
	Path string        `json:"path"`
	// Name is set when the header yielded a map name before the anomaly.
	Name   string `json:"name,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Identifier returns the best available identifier: the map name when the
// header produced one, the archive path otherwise.
func (m Malformed) Identifier() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Path
}

// MalformedReport lists malformed files in discovery order.
type MalformedReport []Malformed

// Identifiers returns the identifier of every item, in order.
func (r MalformedReport) Identifiers() []string {
	out := make([]string, 0, len(r))
	for _, item := range r {
		out = append(out, item.Identifier())
	}
	return out
}

// Count returns how many items have the given kind.
func (r MalformedReport) Count(kind MalformedKind) int {
	n := 0
	for _, item := range r {
		if item.Kind == kind {
			n++
		}
	}
	return n
}
