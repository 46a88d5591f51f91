package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlmkit/rlm/internal/frontmatter"
)

var fixedNow = time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) *FileStore {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s, err := Open(filepath.Join(t.TempDir(), "context"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixture is a chunk written straight to disk, bypassing Put.
type fixture struct {
	id        string
	content   string
	createdAt string
	project   string
	entities  any
	noFile    bool
}

func writeFixtures(t *testing.T, s *FileStore, fixtures ...fixture) {
	t.Helper()
	var chunks []map[string]any
	for _, f := range fixtures {
		summary := f.content
		if len(summary) > 50 {
			summary = summary[:50]
		}
		rec := map[string]any{
			"id":              f.id,
			"file":            "chunks/" + f.id + ".md",
			"summary":         summary,
			"tags":            []string{},
			"tokens_estimate": 20,
			"access_count":    0,
		}
		fm := "summary: " + summary
		if f.createdAt != "" {
			rec["created_at"] = f.createdAt
			fm += "\ncreated_at: " + f.createdAt
		}
		if f.project != "" {
			rec["project"] = f.project
			rec["domain"] = ""
		}
		if f.entities != nil {
			rec["entities"] = f.entities
		}
		chunks = append(chunks, rec)

		if !f.noFile {
			path := filepath.Join(s.Dir(), "chunks", f.id+".md")
			require.NoError(t, os.WriteFile(path, []byte(frontmatter.Join(fm, f.content)), 0o644))
		}
	}
	b, err := json.MarshalIndent(map[string]any{
		"version":               "2.1.0",
		"chunks":                chunks,
		"total_tokens_estimate": 0,
	}, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "index.json"), b, 0o644))
}

func readIndex(t *testing.T, s *FileStore) map[string]any {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(s.Dir(), "index.json"))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.Put(ctx, PutParams{
		Content: "Modified `server.py` for JJ-123.\nSecond line.",
		Tags:    []string{"rlm", " ", "rlm", "phase7"},
		Project: "RLM",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01_RLM_001", rec.ID)
	assert.Equal(t, "chunks/2026-02-01_RLM_001.md", rec.File)
	assert.Equal(t, "2026-02-01T11:00:00Z", rec.CreatedAt)
	assert.Equal(t, "Modified `server.py` for JJ-123.", rec.Summary)
	assert.Equal(t, []string{"rlm", "phase7"}, rec.Tags)
	set, ok := rec.Entities.Set()
	require.True(t, ok)
	assert.Equal(t, []string{"server.py"}, set.Files)
	assert.Equal(t, []string{"JJ-123"}, set.Tickets)

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "chunks", rec.ID+".md"))
	require.NoError(t, err)
	fm, body, err := frontmatter.Split(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "Modified `server.py` for JJ-123.\nSecond line.", body)
	assert.Contains(t, fm, "entities:\n  files: server.py\n  tickets: JJ-123\nproject: RLM")

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, body, got.Content)
	assert.Equal(t, 1, got.Record.AccessCount)

	got, err = s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Record.AccessCount)
}

func TestPut_Sequence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ids := []string{}
	for _, project := range []string{"RLM", "RLM", "", "WEB", ""} {
		rec, err := s.Put(ctx, PutParams{Content: "note", Project: project})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{
		"2026-02-01_RLM_001",
		"2026-02-01_RLM_002",
		"2026-02-01_001",
		"2026-02-01_WEB_001",
		"2026-02-01_002",
	}, ids)

	idx := readIndex(t, s)
	assert.EqualValues(t, 5, idx["total_chunks"])
	assert.Equal(t, "2.1.0", idx["version"])
}

func TestPut_SkipsExistingFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "chunks", "2026-02-01_001.md"), []byte("stray"), 0o644))

	rec, err := s.Put(ctx, PutParams{Content: "note"})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01_002", rec.ID)
}

func TestPut_Invalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Put(ctx, PutParams{Content: "  \n "})
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = s.Put(ctx, PutParams{Content: "x", Project: "../etc"})
	assert.Error(t, err)
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "2026-01-01_404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_PreservesLegacyRecord(t *testing.T) {
	s := newTestStore(t)
	writeFixtures(t, s, fixture{id: "2026-01-15_001", content: "Décision legacy test", entities: "old_format"})

	_, err := s.Get(context.Background(), "2026-01-15_001")
	require.NoError(t, err)

	rec := readIndex(t, s)["chunks"].([]any)[0].(map[string]any)
	assert.Equal(t, "old_format", rec["entities"])
	assert.EqualValues(t, 1, rec["access_count"])
	assert.NotContains(t, rec, "created_at")
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	writeFixtures(t, s,
		fixture{id: "2026-01-18_RLM_001", content: "alpha", createdAt: "2026-01-18T10:00:00", project: "RLM"},
		fixture{id: "2026-01-28_WEB_001", content: "beta", createdAt: "2026-01-28T09:00:00", project: "WEB"},
		fixture{id: "2026-01-15_001", content: "legacy"},
		fixture{id: "notes", content: "undated"},
	)

	all, err := s.List(ctx, ListParams{})
	require.NoError(t, err)
	var ids []string
	for _, e := range all {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"2026-01-28_WEB_001", "2026-01-18_RLM_001", "2026-01-15_001", "notes"}, ids)

	rlm, err := s.List(ctx, ListParams{Filters: Filters{Project: "RLM"}})
	require.NoError(t, err)
	require.Len(t, rlm, 1)
	assert.Equal(t, "2026-01-18_RLM_001", rlm[0].ID)

	dated, err := s.List(ctx, ListParams{Filters: Filters{DateTo: "2026-01-20"}})
	require.NoError(t, err)
	assert.Len(t, dated, 2)

	limited, err := s.List(ctx, ListParams{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestList_Tags(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Put(ctx, PutParams{Content: "one", Tags: []string{"auto", "session"}})
	require.NoError(t, err)
	_, err = s.Put(ctx, PutParams{Content: "two", Tags: []string{"manual"}})
	require.NoError(t, err)

	got, err := s.List(ctx, ListParams{Tags: []string{"AUTO"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].Summary)
}

func TestFilters_Active(t *testing.T) {
	assert.False(t, Filters{}.Active())
	assert.Nil(t, Filters{}.echo())
	f := Filters{DateFrom: "2026-01-25"}
	assert.True(t, f.Active())
	assert.Equal(t, &f, f.echo())
}
