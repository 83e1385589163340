// Package mapx provides generic set and map helpers used to iterate graph
// indices in a deterministic order.
package mapx

import (
	"cmp"
	"slices"
)

// Set is an unordered collection of comparable keys.
type Set[K comparable] map[K]struct{}

// NewSet returns a set holding the given items.
func NewSet[K comparable](items ...K) Set[K] {
	set := make(Set[K], len(items))

	for _, item := range items {
		set[item] = struct{}{}
	}

	return set
}

// Add inserts k and reports whether it was absent.
func (s Set[K]) Add(k K) bool {
	if _, ok := s[k]; ok {
		return false
	}

	s[k] = struct{}{}

	return true
}

// Remove deletes k and reports whether it was present.
func (s Set[K]) Remove(k K) bool {
	if _, ok := s[k]; !ok {
		return false
	}

	delete(s, k)

	return true
}

// Has reports whether k is in the set.
func (s Set[K]) Has(k K) bool {
	_, ok := s[k]

	return ok
}

// Len returns the number of keys.
func (s Set[K]) Len() int {
	return len(s)
}

// SortedKeys returns the keys of m in sorted order.
// Returns nil for a nil map.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	if m == nil {
		return nil
	}

	keys := make([]K, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
