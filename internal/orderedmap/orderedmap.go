// Package orderedmap implements a map that remembers the order in which
// keys were first inserted.
package orderedmap

import (
	"errors"
	"iter"
	"slices"
)

var ErrDuplicateEntry = errors.New("duplicate entry")

type Map[K comparable, V any] struct {
	entries []K
	keys    map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		entries: make([]K, 0),
		keys:    make(map[K]V),
	}
}

// Add inserts a new key. If the key already exists, ErrDuplicateEntry
// is returned and the map is left untouched.
func (m *Map[K, V]) Add(key K, value V) error {
	if _, exists := m.keys[key]; exists {
		return ErrDuplicateEntry
	}
	m.entries = append(m.entries, key)
	m.keys[key] = value
	return nil
}

// Set replaces the value of an existing key without changing its
// position, or appends the key if it does not exist yet.
func (m *Map[K, V]) Set(key K, value V) {
	if _, exists := m.keys[key]; !exists {
		m.entries = append(m.entries, key)
	}
	m.keys[key] = value
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.keys[key]
	return v, ok
}

// Delete removes the key. It reports whether the key was present.
func (m *Map[K, V]) Delete(key K) bool {
	if _, exists := m.keys[key]; !exists {
		return false
	}
	delete(m.keys, key)
	if i := slices.Index(m.entries, key); i >= 0 {
		m.entries = slices.Delete(m.entries, i, i+1)
	}
	return true
}

func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	return slices.Clone(m.entries)
}

func (m *Map[K, V]) Range() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.entries {
			v := m.keys[k]
			if !yield(k, v) {
				break
			}
		}
	}
}
