// Package entity extracts typed references (files, versions, modules,
// tickets, functions) from chunk text and matches stored entity sets
// against free-text queries.
package entity

import (
	"encoding/json"
	"strings"
)

// Category names one kind of extracted entity.
type Category string

const (
	Files     Category = "files"
	Versions  Category = "versions"
	Modules   Category = "modules"
	Tickets   Category = "tickets"
	Functions Category = "functions"
)

// Categories lists every category in truncation priority order.
var Categories = []Category{Files, Versions, Modules, Tickets, Functions}

// Set holds the entities extracted from one chunk. Each list is sorted and
// duplicate-free.
type Set struct {
	Files     []string `json:"files"`
	Versions  []string `json:"versions"`
	Modules   []string `json:"modules"`
	Tickets   []string `json:"tickets"`
	Functions []string `json:"functions"`
}

// NewSet returns a Set with all five categories present and empty.
func NewSet() Set {
	return Set{
		Files:     []string{},
		Versions:  []string{},
		Modules:   []string{},
		Tickets:   []string{},
		Functions: []string{},
	}
}

func (s *Set) list(c Category) *[]string {
	switch c {
	case Files:
		return &s.Files
	case Versions:
		return &s.Versions
	case Modules:
		return &s.Modules
	case Tickets:
		return &s.Tickets
	case Functions:
		return &s.Functions
	}
	return nil
}

// Get returns the values stored for c.
func (s Set) Get(c Category) []string {
	if l := s.list(c); l != nil {
		return *l
	}
	return nil
}

// Total returns the number of values across all categories.
func (s Set) Total() int {
	n := 0
	for _, c := range Categories {
		n += len(s.Get(c))
	}
	return n
}

// IsEmpty reports whether no category holds a value.
func (s Set) IsEmpty() bool { return s.Total() == 0 }

// MarshalJSON always emits the five categories as lists, never null.
func (s Set) MarshalJSON() ([]byte, error) {
	type plain Set
	out := NewSet()
	for _, c := range Categories {
		if v := s.Get(c); v != nil {
			*out.list(c) = v
		}
	}
	return json.Marshal(plain(out))
}

// Field is the entities value of a stored index record. Older records may
// carry no value, null, or a non-object value; those decode without error,
// never match, and are written back unchanged.
type Field struct {
	raw  json.RawMessage
	cats map[string][]string
	ok   bool
}

// FieldOf wraps an extracted Set for storage on an index record.
func FieldOf(s Set) Field {
	raw, _ := json.Marshal(s)
	f := Field{raw: raw, ok: true, cats: make(map[string][]string, len(Categories))}
	for _, c := range Categories {
		f.cats[string(c)] = s.Get(c)
	}
	return f
}

// UnmarshalJSON keeps the raw bytes and decodes category lists when the
// value is an object. Categories whose value is not a list of strings are
// ignored.
func (f *Field) UnmarshalJSON(b []byte) error {
	f.raw = append(json.RawMessage(nil), b...)
	f.cats, f.ok = nil, false

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil || obj == nil {
		return nil
	}
	f.ok = true
	f.cats = make(map[string][]string, len(obj))
	for k, v := range obj {
		var vals []string
		if json.Unmarshal(v, &vals) == nil {
			f.cats[k] = vals
		}
	}
	return nil
}

// MarshalJSON writes the value exactly as it was read or built.
func (f Field) MarshalJSON() ([]byte, error) {
	if len(f.raw) == 0 {
		return []byte("null"), nil
	}
	return f.raw, nil
}

// Present reports whether the record carried an entities value at all.
func (f Field) Present() bool { return len(f.raw) > 0 }

// IsZero reports whether the field lacks a usable entity set: absent, null,
// an empty object, or not an object.
func (f Field) IsZero() bool { return !f.ok || len(f.cats) == 0 }

// Set converts the field to a Set, keeping only the known categories.
func (f Field) Set() (Set, bool) {
	s := NewSet()
	if !f.ok {
		return s, false
	}
	for _, c := range Categories {
		if v, found := f.cats[string(c)]; found && v != nil {
			*s.list(c) = v
		}
	}
	return s, true
}

// Matches reports whether any value of any category contains query,
// ignoring case. It returns false when the field is absent, empty, or not
// a category mapping.
func Matches(f Field, query string) bool {
	if f.IsZero() {
		return false
	}
	q := strings.ToLower(query)
	for _, vals := range f.cats {
		if containsFold(vals, q) {
			return true
		}
	}
	return false
}

// SetMatches is Matches for an in-memory Set.
func SetMatches(s Set, query string) bool {
	q := strings.ToLower(query)
	for _, c := range Categories {
		if containsFold(s.Get(c), q) {
			return true
		}
	}
	return false
}

func containsFold(vals []string, lowered string) bool {
	for _, v := range vals {
		if strings.Contains(strings.ToLower(v), lowered) {
			return true
		}
	}
	return false
}
