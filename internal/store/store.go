// Package store persists chunks as markdown files plus a JSON index and
// serves retrieval over them.
package store

import (
	"context"
	"errors"

	"github.com/rlmkit/rlm/internal/entity"
	"github.com/rlmkit/rlm/internal/model"
	"github.com/rlmkit/rlm/internal/temporal"
)

var (
	// ErrNotFound is returned when no chunk has the requested ID.
	ErrNotFound = errors.New("chunk not found")
	// ErrEmptyQuery is returned for a blank grep pattern or search query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmptyContent is returned by Put for blank content.
	ErrEmptyContent = errors.New("content is required")
	// ErrInvalidProject is returned by Put for a project name outside [A-Za-z0-9_.-].
	ErrInvalidProject = errors.New("invalid project name")
)

// Filters narrow grep, search, list and context results. All set fields
// must hold.
type Filters struct {
	Project  string `json:"project,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Entity   string `json:"entity,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

// Active reports whether any filter is set.
func (f Filters) Active() bool { return f != Filters{} }

func (f Filters) echo() *Filters {
	if !f.Active() {
		return nil
	}
	return &f
}

func (f Filters) dates() temporal.Range {
	return temporal.Range{From: f.DateFrom, To: f.DateTo}
}

// Match reports whether the record passes every set filter.
func (f Filters) Match(e model.IndexEntry) bool {
	if f.Project != "" && e.Project != f.Project {
		return false
	}
	if f.Domain != "" && e.Domain != f.Domain {
		return false
	}
	if f.Entity != "" && !entity.Matches(e.Entities, f.Entity) {
		return false
	}
	return temporal.InRange(e.Stamp(), f.dates())
}

// PutParams holds parameters for storing a chunk.
type PutParams struct {
	Content string
	Summary string
	Tags    []string
	Project string
	Domain  string
}

// ListParams holds parameters for listing chunks.
type ListParams struct {
	Filters
	Tags  []string
	Limit int
}

// GrepParams holds parameters for grep and fuzzy grep.
type GrepParams struct {
	Filters
	Pattern   string
	Fuzzy     bool
	Threshold int // fuzzy only, 0 means the store default
	Limit     int
}

// SearchParams holds parameters for ranked search.
type SearchParams struct {
	Filters
	Query string
	Limit int
}

// BackfillParams holds parameters for entity backfill.
type BackfillParams struct {
	DryRun bool
}

// Store defines the chunk storage and retrieval interface.
type Store interface {
	// Put stores a new chunk and returns its index record.
	Put(ctx context.Context, p PutParams) (*model.IndexEntry, error)

	// Get returns a chunk and counts the access.
	Get(ctx context.Context, id string) (*model.Chunk, error)

	// List returns index records matching the filters, newest first.
	List(ctx context.Context, p ListParams) ([]model.IndexEntry, error)

	// Grep matches a pattern line by line against chunk bodies.
	Grep(ctx context.Context, p GrepParams) (*GrepResult, error)

	// Search ranks chunks against a free-text query.
	Search(ctx context.Context, p SearchParams) (*SearchResult, error)

	// Stats summarises the store.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases the search index.
	Close() error
}

var _ Store = (*FileStore)(nil)
