package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rlmkit/rlm/internal/entity"
	"github.com/rlmkit/rlm/internal/temporal"
)

// Stats holds context directory statistics.
type Stats struct {
	ContextDir          string         `json:"context_dir"`
	IndexVersion        string         `json:"index_version"`
	TotalChunks         int            `json:"total_chunks"`
	TotalTokensEstimate int            `json:"total_tokens_estimate"`
	WithEntities        int            `json:"with_entities"`
	EntityCounts        map[string]int `json:"entity_counts"`
	Oldest              string         `json:"oldest,omitempty"`
	Newest              string         `json:"newest,omitempty"`
	SearchDBBytes       int64          `json:"search_db_bytes"`
	Projects            []ProjectStats `json:"projects"`
}

// ProjectStats holds per-project counts. Chunks without a project are
// counted under "".
type ProjectStats struct {
	Project string `json:"project"`
	Count   int    `json:"count"`
	Tokens  int    `json:"tokens"`
}

func (s *FileStore) Stats(ctx context.Context) (*Stats, error) {
	x, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	st := &Stats{
		ContextDir:   s.dir,
		IndexVersion: x.Version,
		TotalChunks:  len(x.Chunks),
		EntityCounts: map[string]int{},
		Projects:     []ProjectStats{},
	}
	for _, c := range entity.Categories {
		st.EntityCounts[string(c)] = 0
	}

	if info, err := os.Stat(filepath.Join(s.dir, searchFile)); err == nil {
		st.SearchDBBytes = info.Size()
	}

	byProject := map[string]*ProjectStats{}
	for _, e := range x.Chunks {
		st.TotalTokensEstimate += e.TokensEstimate

		ps, ok := byProject[e.Project]
		if !ok {
			ps = &ProjectStats{Project: e.Project}
			byProject[e.Project] = ps
		}
		ps.Count++
		ps.Tokens += e.TokensEstimate

		if set, ok := e.Entities.Set(); ok && !set.IsEmpty() {
			st.WithEntities++
			for _, c := range entity.Categories {
				st.EntityCounts[string(c)] += len(set.Get(c))
			}
		}

		if d, ok := temporal.ResolveDate(e.Stamp()); ok {
			if st.Oldest == "" || d < st.Oldest {
				st.Oldest = d
			}
			if d > st.Newest {
				st.Newest = d
			}
		}
	}

	for _, ps := range byProject {
		st.Projects = append(st.Projects, *ps)
	}
	sort.Slice(st.Projects, func(i, j int) bool {
		if st.Projects[i].Count != st.Projects[j].Count {
			return st.Projects[i].Count > st.Projects[j].Count
		}
		return st.Projects[i].Project < st.Projects[j].Project
	})

	return st, nil
}
