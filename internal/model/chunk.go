// Package model defines the chunk index data types.
package model

import (
	"encoding/json"

	"github.com/rlmkit/rlm/internal/entity"
	"github.com/rlmkit/rlm/internal/temporal"
)

// IndexVersion is written to index.json on save.
const IndexVersion = "2.1.0"

// IndexEntry is one chunk record of index.json.
//
// Records read from disk keep every key they were read with. On save, only
// the fields the store mutates (access_count, entities) are re-encoded;
// everything else is written back as read.
type IndexEntry struct {
	ID             string       `json:"id"`
	File           string       `json:"file"`
	Summary        string       `json:"summary"`
	Tags           []string     `json:"tags"`
	Project        string       `json:"project,omitempty"`
	Domain         string       `json:"domain,omitempty"`
	CreatedAt      string       `json:"created_at,omitempty"`
	TokensEstimate int          `json:"tokens_estimate"`
	AccessCount    int          `json:"access_count"`
	Entities       entity.Field `json:"entities"`

	raw map[string]json.RawMessage
}

// Stamp returns the fields used to date the chunk.
func (e IndexEntry) Stamp() temporal.Stamp {
	return temporal.Stamp{ID: e.ID, CreatedAt: e.CreatedAt}
}

var entryKeyOrder = []string{
	"id", "file", "summary", "tags", "project", "domain",
	"created_at", "tokens_estimate", "access_count", "entities",
}

// UnmarshalJSON decodes known keys leniently: a key whose value has the
// wrong type is left at its zero value rather than failing the whole index.
func (e *IndexEntry) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = IndexEntry{raw: raw}

	lenient := func(key string, dst any) {
		if v, ok := raw[key]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
	lenient("id", &e.ID)
	lenient("file", &e.File)
	lenient("summary", &e.Summary)
	lenient("tags", &e.Tags)
	lenient("project", &e.Project)
	lenient("domain", &e.Domain)
	lenient("created_at", &e.CreatedAt)
	lenient("tokens_estimate", &e.TokensEstimate)
	lenient("access_count", &e.AccessCount)
	if v, ok := raw["entities"]; ok {
		_ = e.Entities.UnmarshalJSON(v)
	}
	return nil
}

// MarshalJSON writes known keys first in a fixed order, then any other keys
// the record was read with.
func (e IndexEntry) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(e.raw)+len(entryKeyOrder))
	for k, v := range e.raw {
		fields[k] = v
	}

	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fields[key] = b
		return nil
	}
	isNew := e.raw == nil

	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	var domain any
	if e.Domain != "" {
		domain = e.Domain
	}

	writes := []struct {
		key   string
		value any
		ok    bool
	}{
		{"id", e.ID, isNew},
		{"file", e.File, isNew},
		{"summary", e.Summary, isNew},
		{"tags", tags, isNew},
		{"project", e.Project, isNew && e.Project != ""},
		{"domain", domain, isNew},
		{"created_at", e.CreatedAt, isNew && e.CreatedAt != ""},
		{"tokens_estimate", e.TokensEstimate, isNew},
		{"access_count", e.AccessCount, true},
		{"entities", e.Entities, e.Entities.Present()},
	}
	for _, w := range writes {
		if !w.ok {
			continue
		}
		if err := put(w.key, w.value); err != nil {
			return nil, err
		}
	}
	return encodeOrdered(fields, entryKeyOrder)
}

// Index is the decoded index.json.
type Index struct {
	Version             string       `json:"version"`
	Chunks              []IndexEntry `json:"chunks"`
	TotalChunks         int          `json:"total_chunks"`
	TotalTokensEstimate int          `json:"total_tokens_estimate"`

	raw map[string]json.RawMessage
}

var indexKeyOrder = []string{"version", "chunks", "total_chunks", "total_tokens_estimate"}

// UnmarshalJSON decodes the index, keeping unknown top-level keys.
func (x *Index) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*x = Index{raw: raw}
	if v, ok := raw["chunks"]; ok {
		if err := json.Unmarshal(v, &x.Chunks); err != nil {
			return err
		}
	}
	if v, ok := raw["version"]; ok {
		_ = json.Unmarshal(v, &x.Version)
	}
	x.TotalChunks = len(x.Chunks)
	for _, c := range x.Chunks {
		x.TotalTokensEstimate += c.TokensEstimate
	}
	return nil
}

// MarshalJSON recomputes the totals. An index without a version is stamped
// with IndexVersion.
func (x Index) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(x.raw)+len(indexKeyOrder))
	for k, v := range x.raw {
		fields[k] = v
	}

	chunks := x.Chunks
	if chunks == nil {
		chunks = []IndexEntry{}
	}
	tokens := 0
	for _, c := range chunks {
		tokens += c.TokensEstimate
	}

	version := x.Version
	if version == "" {
		version = IndexVersion
	}

	var err error
	for key, v := range map[string]any{
		"version":               version,
		"chunks":                chunks,
		"total_chunks":          len(chunks),
		"total_tokens_estimate": tokens,
	} {
		if fields[key], err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	return encodeOrdered(fields, indexKeyOrder)
}

// Find returns the position of the record with the given ID, or -1.
func (x *Index) Find(id string) int {
	for i := range x.Chunks {
		if x.Chunks[i].ID == id {
			return i
		}
	}
	return -1
}

// Chunk is an index record together with its body text.
type Chunk struct {
	Record  IndexEntry `json:"record"`
	Content string     `json:"content"`
}
