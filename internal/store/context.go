package store

import (
	"context"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/rlmkit/rlm/internal/model"
	"github.com/rlmkit/rlm/internal/temporal"
)

// ContextParams holds parameters for context assembly.
type ContextParams struct {
	Filters
	Query  string
	Budget int // max tokens in output (rough: 1 token ≈ 4 chars)
}

// ContextChunk is a scored chunk for context output.
type ContextChunk struct {
	ChunkID string  `json:"chunk_id"`
	Summary string  `json:"summary"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Excerpt bool    `json:"excerpt,omitempty"`
}

// ContextResult is the assembled context response.
type ContextResult struct {
	Budget int            `json:"budget"`
	Used   int            `json:"used"`
	Chunks []ContextChunk `json:"chunks"`
}

// Context assembles relevant chunks within a token budget.
func (s *FileStore) Context(ctx context.Context, p ContextParams) (*ContextResult, error) {
	budget := p.Budget
	if budget <= 0 {
		budget = 4000
	}
	charBudget := budget * 4

	found, err := s.Search(ctx, SearchParams{Filters: p.Filters, Query: p.Query, Limit: 50})
	if err != nil {
		return nil, err
	}
	result := &ContextResult{Budget: budget, Chunks: []ContextChunk{}}
	if len(found.Results) == 0 {
		return result, nil
	}

	x, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	top := found.Results[0].Score
	now := s.opts.now()
	type scored struct {
		entry model.IndexEntry
		score float64
	}
	var candidates []scored

	for _, h := range found.Results {
		i := x.Find(h.ChunkID)
		if i < 0 {
			continue
		}
		e := x.Chunks[i]

		relevance := 1.0
		if top > 0 {
			relevance = h.Score / top
		}

		// Recency: exponential decay on the resolved date
		recency := 0.0
		if d, ok := temporal.ResolveDate(e.Stamp()); ok {
			if t, err := time.ParseInLocation(time.DateOnly, d, now.Location()); err == nil {
				age := now.Sub(t).Hours() / 24.0
				recency = math.Exp(-0.1 * math.Max(age, 0))
			}
		}

		// Access frequency: log scale
		accessFreq := 0.0
		if e.AccessCount > 0 {
			accessFreq = math.Min(1, math.Log(float64(e.AccessCount)+1)/math.Log(100))
		}

		score := relevance*0.6 + recency*0.2 + accessFreq*0.2
		candidates = append(candidates, scored{entry: e, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// Greedy packing into budget
	used := 0
	for _, c := range candidates {
		_, body, err := s.readChunk(c.entry)
		if err != nil {
			s.opts.logger.Warn("skip unreadable chunk", "id", c.entry.ID, "err", err)
			continue
		}
		item := ContextChunk{
			ChunkID: c.entry.ID,
			Summary: c.entry.Summary,
			Content: body,
			Score:   math.Round(c.score*100) / 100,
		}
		if used+len(body) <= charBudget {
			result.Chunks = append(result.Chunks, item)
			used += len(body)
			continue
		}
		if remaining := charBudget - used; remaining >= 100 {
			item.Content = truncateBytes(body, remaining) + "..."
			item.Excerpt = true
			result.Chunks = append(result.Chunks, item)
			used += len(item.Content)
		}
		break
	}

	result.Used = used / 4
	return result, nil
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
