package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rlmkit/rlm/internal/model"
)

const snippetLen = 200

// SearchHit is one ranked chunk.
type SearchHit struct {
	ChunkID   string  `json:"chunk_id"`
	Score     float64 `json:"score"`
	Summary   string  `json:"summary"`
	Project   string  `json:"project,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	Snippet   string  `json:"snippet"`
}

// SearchResult is the response of Search. Filters echoes the active
// filters and is null when none is set.
type SearchResult struct {
	Status      string      `json:"status"`
	Query       string      `json:"query"`
	ResultCount int         `json:"result_count"`
	Results     []SearchHit `json:"results"`
	Filters     *Filters    `json:"filters"`
}

// Search ranks chunk passages against p.Query with BM25 and keeps the best
// passage of each chunk passing the filters.
func (s *FileStore) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	if strings.TrimSpace(p.Query) == "" {
		return nil, ErrEmptyQuery
	}
	limit := p.Limit
	if limit <= 0 {
		limit = s.opts.searchLimit
	}

	x, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	if err := s.syncSearch(ctx, x); err != nil {
		return nil, err
	}

	hits, err := s.search.query(ctx, p.Query)
	if errors.Is(err, ErrEmptyQuery) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	res := &SearchResult{Status: "success", Query: p.Query, Results: []SearchHit{}, Filters: p.Filters.echo()}
	for _, h := range hits {
		i := x.Find(h.chunkID)
		if i < 0 || !p.Filters.Match(x.Chunks[i]) {
			continue
		}
		e := x.Chunks[i]
		res.Results = append(res.Results, SearchHit{
			ChunkID:   e.ID,
			Score:     math.Round(h.score*1000) / 1000,
			Summary:   e.Summary,
			Project:   e.Project,
			CreatedAt: e.CreatedAt,
			Snippet:   snippet(h.text),
		})
		if len(res.Results) >= limit {
			break
		}
	}
	res.ResultCount = len(res.Results)
	return res, nil
}

func (s *FileStore) syncSearch(ctx context.Context, x *model.Index) error {
	ids := make([]string, 0, len(x.Chunks))
	for _, e := range x.Chunks {
		ids = append(ids, e.ID)
	}
	return s.search.sync(ctx, ids, func(id string) (string, error) {
		_, body, err := s.readChunk(x.Chunks[x.Find(id)])
		return body, err
	})
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= snippetLen {
		return text
	}
	return string([]rune(text)[:snippetLen]) + "..."
}
