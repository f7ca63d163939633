package models

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Well-known attribute keys.
const (
	AttrID   = "id"
	AttrName = "name"
)

// CheckID returns an ErrValidation unless id is usable as a single path
// element: not empty, not "." or "..", and free of path separators.
func CheckID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid id %q: %w", id, ErrValidation)
	}
	return nil
}

// Attributes is an ordered mapping from attribute name to value.
// The zero value is an empty, usable set.
type Attributes struct {
	keys   []string
	values map[string]string
}

// AttributesOf builds an Attributes from alternating key/value pairs.
// A trailing key without a value is set to the empty string.
func AttributesOf(pairs ...string) Attributes {
	var a Attributes
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		a.Set(pairs[i], value)
	}
	return a
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key is set.
func (a Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Set stores value under key, keeping the original position of existing keys.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Keys returns the attribute names in insertion order.
func (a Attributes) Keys() []string {
	return slices.Clone(a.keys)
}

// Len returns the number of attributes.
func (a Attributes) Len() int {
	return len(a.keys)
}

// ID returns the `id` attribute, or "" if unset.
func (a Attributes) ID() string {
	return a.values[AttrID]
}

// Name returns the `name` attribute, or "" if unset.
func (a Attributes) Name() string {
	return a.values[AttrName]
}

// Map returns a copy of the attributes as a plain map.
func (a Attributes) Map() map[string]string {
	return maps.Clone(a.values)
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	return Attributes{keys: slices.Clone(a.keys), values: maps.Clone(a.values)}
}

// Equal reports whether both sets hold the same key/value pairs, in any order.
func (a Attributes) Equal(b Attributes) bool {
	if a.Len() != b.Len() {
		return false
	}
	return maps.Equal(a.values, b.values)
}

// Require returns an ErrValidation naming the first missing key.
func (a Attributes) Require(keys ...string) error {
	for _, k := range keys {
		if !a.Has(k) {
			return fmt.Errorf("missing argument %q: %w", k, ErrValidation)
		}
	}
	return nil
}

// RequireValues returns an ErrValidation naming the first attribute other
// than id and name whose value is empty. Empty cells are indistinguishable
// from absent ones once stored.
func (a Attributes) RequireValues() error {
	for _, k := range a.keys {
		if k == AttrID || k == AttrName {
			continue
		}
		if a.values[k] == "" {
			return fmt.Errorf("empty value for attribute %q: %w", k, ErrValidation)
		}
	}
	return nil
}

// String renders the attributes as {k=v, ...} in insertion order.
func (a Attributes) String() string {
	s := "{"
	for i, k := range a.keys {
		if i > 0 {
			s += ", "
		}
		s += k + "=" + a.values[k]
	}
	return s + "}"
}
