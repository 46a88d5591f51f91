package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlmkit/rlm/internal/entity"
)

const legacyIndex = `{
  "version": "2.0.0",
  "chunks": [
    {
      "id": "2026-01-15_001",
      "file": "chunks/2026-01-15_001.md",
      "summary": "Legacy chunk",
      "tags": [],
      "tokens_estimate": 10,
      "access_count": 2,
      "entities": "old_format",
      "pinned": true
    },
    {
      "id": "2026-01-25_RLM_001",
      "file": "chunks/2026-01-25_RLM_001.md",
      "summary": "Décision business plan",
      "tags": ["plan"],
      "project": "RLM",
      "domain": "",
      "created_at": "2026-01-25T14:00:00",
      "tokens_estimate": 20,
      "access_count": 0
    }
  ],
  "total_tokens_estimate": 0,
  "owner": "me"
}`

func TestIndex_Decode(t *testing.T) {
	var x Index
	require.NoError(t, json.Unmarshal([]byte(legacyIndex), &x))

	require.Len(t, x.Chunks, 2)
	assert.Equal(t, "2.0.0", x.Version)
	assert.Equal(t, 2, x.TotalChunks)
	assert.Equal(t, 30, x.TotalTokensEstimate)

	legacy := x.Chunks[0]
	assert.Equal(t, "2026-01-15_001", legacy.ID)
	assert.Empty(t, legacy.CreatedAt)
	assert.Equal(t, 2, legacy.AccessCount)
	assert.True(t, legacy.Entities.Present())
	assert.True(t, legacy.Entities.IsZero())

	assert.Equal(t, 1, x.Find("2026-01-25_RLM_001"))
	assert.Equal(t, -1, x.Find("missing"))
}

func TestIndex_RoundTripPreservesUnknownKeys(t *testing.T) {
	var x Index
	require.NoError(t, json.Unmarshal([]byte(legacyIndex), &x))

	x.Chunks[1].AccessCount++
	b, err := json.Marshal(x)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "me", out["owner"])
	assert.Equal(t, "2.0.0", out["version"])
	assert.EqualValues(t, 2, out["total_chunks"])
	assert.EqualValues(t, 30, out["total_tokens_estimate"])

	chunks := out["chunks"].([]any)
	legacy := chunks[0].(map[string]any)
	assert.Equal(t, true, legacy["pinned"])
	assert.Equal(t, "old_format", legacy["entities"])
	assert.NotContains(t, legacy, "created_at")
	assert.NotContains(t, legacy, "project")

	current := chunks[1].(map[string]any)
	assert.EqualValues(t, 1, current["access_count"])
	assert.Equal(t, "", current["domain"])
}

func TestIndexEntry_KeyOrder(t *testing.T) {
	var e IndexEntry
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":1,"access_count":0,"id":"x","alpha":2}`), &e))
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"x","access_count":0,"alpha":2,"zeta":1}`, string(b))
}

func TestIndexEntry_NewRecord(t *testing.T) {
	s := entity.NewSet()
	s.Files = []string{"server.py"}
	e := IndexEntry{
		ID:             "2026-02-01_RLM_001",
		File:           "chunks/2026-02-01_RLM_001.md",
		Summary:        "entity extraction",
		Project:        "RLM",
		CreatedAt:      "2026-02-01T11:00:00+01:00",
		TokensEstimate: 12,
		Entities:       entity.FieldOf(s),
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "2026-02-01_RLM_001",
		"file": "chunks/2026-02-01_RLM_001.md",
		"summary": "entity extraction",
		"tags": [],
		"project": "RLM",
		"domain": null,
		"created_at": "2026-02-01T11:00:00+01:00",
		"tokens_estimate": 12,
		"access_count": 0,
		"entities": {"files":["server.py"],"versions":[],"modules":[],"tickets":[],"functions":[]}
	}`, string(b))

	var back IndexEntry
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "2026-02-01", back.Stamp().CreatedAt[:10])
	assert.True(t, entity.Matches(back.Entities, "server"))
}

func TestIndex_EmptyMarshal(t *testing.T) {
	b, err := json.Marshal(Index{})
	require.NoError(t, err)
	assert.Equal(t, `{"version":"2.1.0","chunks":[],"total_chunks":0,"total_tokens_estimate":0}`, string(b))
}

func TestIndexEntry_WrongTypesAreLenient(t *testing.T) {
	var e IndexEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","tags":"oops","access_count":"3","domain":null}`), &e))
	assert.Equal(t, "a", e.ID)
	assert.Nil(t, e.Tags)
	assert.Zero(t, e.AccessCount)
	assert.Empty(t, e.Domain)
}
