package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlmkit/rlm/internal/entity"
)

func backfillStore(t *testing.T) *FileStore {
	t.Helper()
	s := newTestStore(t)
	writeFixtures(t, s,
		fixture{id: "2026-01-18_001", content: "Modified `server.py` for JJ-123", createdAt: "2026-01-18T10:00:00", project: "RLM"},
		fixture{id: "2026-01-19_001", content: "Called chunk() again", entities: "old_format"},
		fixture{id: "2026-01-20_001", content: "plain words only", entities: map[string]any{}},
		fixture{id: "2026-01-21_001", content: "has entities", entities: map[string]any{"files": []string{"a.py"}}},
		fixture{id: "2026-01-22_001", content: "gone", noFile: true},
	)
	return s
}

func TestBackfill(t *testing.T) {
	s := backfillStore(t)
	ctx := context.Background()

	rep, err := s.Backfill(ctx, BackfillParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Updated)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 1, rep.Errors)
	assert.Equal(t, 3, rep.TotalEntities)
	require.Len(t, rep.Items, 4)
	assert.Equal(t, "2026-01-22_001", rep.Items[3].ChunkID)
	assert.NotEmpty(t, rep.Items[3].Error)

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "chunks", "2026-01-18_001.md"))
	require.NoError(t, err)
	assert.Equal(t, "---\nsummary: Modified `server.py` for JJ-123\ncreated_at: 2026-01-18T10:00:00\n"+
		"entities:\n  files: server.py\n  tickets: JJ-123\n---\n\nModified `server.py` for JJ-123\n", string(raw))

	raw, err = os.ReadFile(filepath.Join(s.Dir(), "chunks", "2026-01-20_001.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "entities:\n  (none)\n---")

	x, err := s.loadIndex()
	require.NoError(t, err)
	set, ok := x.Chunks[1].Entities.Set()
	require.True(t, ok)
	assert.Equal(t, []string{"chunk()"}, set.Functions)
	assert.True(t, entity.Matches(x.Chunks[0].Entities, "jj-123"))

	again, err := s.Backfill(ctx, BackfillParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Updated)
	assert.Equal(t, 4, again.Skipped)
}

func TestBackfill_DryRun(t *testing.T) {
	s := backfillStore(t)
	before, err := os.ReadFile(filepath.Join(s.Dir(), "index.json"))
	require.NoError(t, err)

	rep, err := s.Backfill(context.Background(), BackfillParams{DryRun: true})
	require.NoError(t, err)
	assert.True(t, rep.DryRun)
	assert.Equal(t, 3, rep.Updated)
	require.NotNil(t, rep.Items[0].Entities)
	assert.Equal(t, []string{"server.py"}, rep.Items[0].Entities.Files)

	after, err := os.ReadFile(filepath.Join(s.Dir(), "index.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
