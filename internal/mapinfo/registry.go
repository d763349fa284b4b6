package mapinfo

import (
	"math"
	"sort"
	"sync"
)

type offerOutcome int

const (
	offerRejected offerOutcome = iota
	offerInserted
	offerReplaced
)

func (o offerOutcome) accepted() bool { return o != offerRejected }

// slot is a stored entry with the position it was offered at. Among entries
// with equal modification times the lowest position wins.
type slot struct {
	entry *MapEntry
	seq   int
}

// Registry keeps the most recently modified entry per name@author key.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]slot
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]slot)}
}

// Offer stores entry when its key is new or when it is strictly newer than the
// current occupant. Ties keep the occupant. It reports whether entry was stored.
func (r *Registry) Offer(entry *MapEntry) bool {
	return r.offer(entry, math.MaxInt).accepted()
}

// offer stores entry at position seq. An entry with the same modification time
// as the occupant replaces it only when seq is lower, so concurrent callers
// that pass walk positions converge on the result of offering in walk order.
func (r *Registry) offer(entry *MapEntry, seq int) offerOutcome {
	if entry == nil {
		return offerRejected
	}
	key := entry.Key()

	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[key]
	if !ok {
		r.entries[key] = slot{entry: entry, seq: seq}
		return offerInserted
	}
	switch {
	case entry.DateModified.After(existing.entry.DateModified):
	case entry.DateModified.Equal(existing.entry.DateModified) && seq < existing.seq:
	default:
		return offerRejected
	}
	r.entries[key] = slot{entry: entry, seq: seq}
	return offerReplaced
}

// IsCurrent reports whether entry is still the occupant of its key.
func (r *Registry) IsCurrent(entry *MapEntry) bool {
	if entry == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[entry.Key()].entry == entry
}

// ApplyEnrichment records enrichment results on entry if it is still the
// occupant of its key. Results for superseded or never-stored entries are
// dropped and false is returned.
func (r *Registry) ApplyEnrichment(entry *MapEntry, result Enrichment) bool {
	if entry == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[entry.Key()].entry != entry {
		return false
	}
	entry.IsProtected = result.IsProtected
	entry.Banks = result.Banks
	return true
}

// Entries returns copies of the stored entries sorted by key.
func (r *Registry) Entries() []MapEntry {
	r.mu.Lock()
	out := make([]MapEntry, 0, len(r.entries))
	for _, stored := range r.entries {
		out = append(out, *stored.entry)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Len returns the number of stored entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
