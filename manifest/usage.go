package manifest

import (
	"slices"
)

// UsageVersion is persisted with file based usage records.
const UsageVersion = 1

// UsageEntry is a single (module, artifact name) pair recorded on first
// runtime reference.
type UsageEntry struct {
	Module string `ion:"module"`
	Name   string `ion:"name"`
}

// Usage is append-only set of usage records kept in insertion order.
type Usage struct {
	Entries []UsageEntry `ion:"entries"`
}

// Clone returns independent copy.
func (u Usage) Clone() Usage {
	u.Entries = slices.Clone(u.Entries)
	return u
}

// Has reports whether artifact was recorded as used.
func (u *Usage) Has(module, name string) bool {
	return slices.Contains(u.Entries, UsageEntry{Module: module, Name: name})
}

// Add records entries which are not recorded yet, reports whether anything
// was added.
func (u *Usage) Add(entries ...UsageEntry) bool {
	added := false
	for _, e := range entries {
		if !slices.Contains(u.Entries, e) {
			u.Entries = append(u.Entries, e)
			added = true
		}
	}
	return added
}

// Len returns number of recorded entries.
func (u *Usage) Len() int {
	return len(u.Entries)
}

// Record adds entries to usage store. Store is not rewritten when every
// entry is already there.
func Record(s Store[Usage], entries ...UsageEntry) error {
	_, err := s.Update(func(u *Usage) error {
		if !u.Add(entries...) {
			return ErrNoChange
		}
		return nil
	})
	return err
}
