package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlmkit/rlm/internal/model"
)

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := decisionStore(t)

	exported, err := src.Export(ctx)
	require.NoError(t, err)
	require.Len(t, exported, 5)
	assert.Equal(t, "Décision legacy test", exported[4].Content)

	// Through JSON, as the CLI does.
	b, err := json.Marshal(exported)
	require.NoError(t, err)
	var decoded []model.Chunk
	require.NoError(t, json.Unmarshal(b, &decoded))

	dst := newTestStore(t)
	rep, err := dst.Import(ctx, decoded)
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Imported)
	assert.Zero(t, rep.Skipped)

	got, err := dst.Get(ctx, "2026-01-25_RLM_001")
	require.NoError(t, err)
	assert.Equal(t, "Décision business plan scénarios", got.Content)
	assert.Equal(t, "2026-01-25T14:00:00", got.Record.CreatedAt)
	assert.Equal(t, "RLM", got.Record.Project)
	assert.False(t, got.Record.Entities.IsZero())

	res, err := dst.Grep(ctx, GrepParams{Pattern: "Décision", Filters: Filters{DateFrom: "2026-01-25"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.MatchCount)

	hits, err := dst.Search(ctx, SearchParams{Query: "scenarios"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-25_RLM_001"}, hitIDs(hits))

	rep, err = dst.Import(ctx, decoded)
	require.NoError(t, err)
	assert.Zero(t, rep.Imported)
	assert.Equal(t, 5, rep.Skipped)
}

func TestImport_RejectsBadID(t *testing.T) {
	s := newTestStore(t)
	rep, err := s.Import(context.Background(), []model.Chunk{
		{Record: model.IndexEntry{ID: "../escape"}, Content: "x"},
		{Record: model.IndexEntry{ID: ""}, Content: "y"},
	})
	require.NoError(t, err)
	assert.Zero(t, rep.Imported)
	assert.Len(t, rep.Errors, 2)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := backfillStore(t)
	_, err := s.Backfill(ctx, BackfillParams{})
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, st.TotalChunks)
	assert.Equal(t, 100, st.TotalTokensEstimate)
	assert.Equal(t, "2.1.0", st.IndexVersion)
	assert.Equal(t, 3, st.WithEntities)
	assert.Equal(t, map[string]int{"files": 2, "versions": 0, "modules": 0, "tickets": 1, "functions": 1}, st.EntityCounts)
	assert.Equal(t, "2026-01-18", st.Oldest)
	assert.Equal(t, "2026-01-22", st.Newest)
	require.Len(t, st.Projects, 2)
	assert.Equal(t, ProjectStats{Project: "", Count: 4, Tokens: 80}, st.Projects[0])
	assert.Equal(t, ProjectStats{Project: "RLM", Count: 1, Tokens: 20}, st.Projects[1])
}
