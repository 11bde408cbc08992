package engine

import "sort"

// Store maps a derived key to a running-total record. Records are created on first
// access, never removed during a pass, and iterated in key order.
type Store[A any] struct {
	items   map[string]*A
	newItem func(key string) *A
}

// NewStore returns an empty store that builds records with newItem.
func NewStore[A any](newItem func(key string) *A) *Store[A] {
	return &Store[A]{
		items:   map[string]*A{},
		newItem: newItem,
	}
}

// Upsert returns the record for key, creating it on first observation.
func (s *Store[A]) Upsert(key string) *A {
	if item, ok := s.items[key]; ok {
		return item
	}
	item := s.newItem(key)
	s.items[key] = item
	return item
}

// Get returns the record for key without creating it.
func (s *Store[A]) Get(key string) (*A, bool) {
	item, ok := s.items[key]
	return item, ok
}

// Len returns the number of keys.
func (s *Store[A]) Len() int {
	return len(s.items)
}

// Keys returns every key in ascending order.
func (s *Store[A]) Keys() []string {
	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the records in key order.
func (s *Store[A]) Values() []*A {
	keys := s.Keys()
	values := make([]*A, 0, len(keys))
	for _, key := range keys {
		values = append(values, s.items[key])
	}
	return values
}

// tagSet is a deduplicated set of string tags.
type tagSet map[string]struct{}

func (t tagSet) add(tag string) {
	t[tag] = struct{}{}
}

func (t tagSet) merge(other tagSet) {
	for tag := range other {
		t[tag] = struct{}{}
	}
}

func (t tagSet) sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
