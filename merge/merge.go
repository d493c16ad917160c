// Package merge implements render time cascade: composition of precompiled
// atomic class sets into one ordered, deduplicated class list.
package merge

import (
	"strings"

	"github.com/elliotchance/orderedmap/v3"

	"acss/condition"
)

// Unset is the reserved value removing exactly the targeted key.
const Unset = "__unset__"

// Pair is a single (property key, class) assignment. Keys may be of any
// string kind so typed keys and plain strings merge identically.
type Pair[K ~string] struct {
	Key   K
	Value string
}

// KeyFor returns merge key of property under condition. Default condition
// collapses to the bare property name so that it collides with unconditioned
// assignments.
func KeyFor(property, cond string) string {
	if cond == "" || cond == condition.DefaultKey {
		return property
	}
	return property + "::" + cond
}

// Map is accumulated ordered mapping from property key to class. Zero value is
// not usable, use New.
type Map struct {
	m *orderedmap.OrderedMap[string, string]
}

// New returns empty mapping.
func New() Map {
	return Map{m: orderedmap.NewOrderedMap[string, string]()}
}

// Apply returns new mapping with pairs applied in order. Receiver is not
// modified. A key seen again replaces value in place, keeping its position;
// Unset removes the key.
func Apply[K ~string](acc Map, pairs ...Pair[K]) Map {
	out := acc.clone()
	for _, p := range pairs {
		key := string(p.Key)
		if p.Value == Unset {
			out.m.Delete(key)
			continue
		}
		out.m.Set(key, p.Value)
	}
	return out
}

func (m Map) clone() Map {
	if m.m == nil {
		return New()
	}
	return Map{m: m.m.Copy()}
}

// Get returns value accumulated under key.
func (m Map) Get(key string) (string, bool) {
	if m.m == nil {
		return "", false
	}
	return m.m.Get(key)
}

// Len returns number of keys in mapping.
func (m Map) Len() int {
	if m.m == nil {
		return 0
	}
	return m.m.Len()
}

// Pairs returns accumulated pairs in order.
func (m Map) Pairs() []Pair[string] {
	if m.m == nil {
		return nil
	}
	out := make([]Pair[string], 0, m.m.Len())
	for k, v := range m.m.AllFromFront() {
		out = append(out, Pair[string]{Key: k, Value: v})
	}
	return out
}

// Classes materializes mapping: empty entries are dropped, repeated class
// tokens are kept once at their first position.
func (m Map) Classes() []string {
	if m.m == nil {
		return nil
	}
	var (
		out  []string
		seen = make(map[string]bool, m.m.Len())
	)
	for _, v := range m.m.AllFromFront() {
		for _, token := range strings.Fields(v) {
			if token == Unset || seen[token] {
				continue
			}
			seen[token] = true
			out = append(out, token)
		}
	}
	return out
}

// String returns space separated class list.
func (m Map) String() string {
	return strings.Join(m.Classes(), " ")
}
