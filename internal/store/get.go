package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rlmkit/rlm/internal/model"
	"github.com/rlmkit/rlm/internal/temporal"
)

func (s *FileStore) Get(ctx context.Context, id string) (*model.Chunk, error) {
	x, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	i := x.Find(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	_, body, err := s.readChunk(x.Chunks[i])
	if err != nil {
		return nil, fmt.Errorf("read chunk %s: %w", id, err)
	}

	x.Chunks[i].AccessCount++
	if err := s.saveIndex(x); err != nil {
		return nil, err
	}
	return &model.Chunk{Record: x.Chunks[i], Content: body}, nil
}

func (s *FileStore) List(ctx context.Context, p ListParams) ([]model.IndexEntry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	x, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	out := []model.IndexEntry{}
	for _, e := range x.Chunks {
		if p.Filters.Match(e) && hasTags(e.Tags, p.Tags) {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func hasTags(have, want []string) bool {
	for _, w := range want {
		if !slices.ContainsFunc(have, func(h string) bool { return strings.EqualFold(h, w) }) {
			return false
		}
	}
	return true
}

// sortNewestFirst orders records by resolved date, then created_at, then
// ID, all descending. Undated records sort last.
func sortNewestFirst(es []model.IndexEntry) {
	slices.SortStableFunc(es, func(a, b model.IndexEntry) int {
		da, _ := temporal.ResolveDate(a.Stamp())
		db, _ := temporal.ResolveDate(b.Stamp())
		if c := strings.Compare(db, da); c != 0 {
			return c
		}
		if c := strings.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}
