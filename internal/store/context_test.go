package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextBasic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, c := range []string{
		"Go is a statically typed language",
		"Rust is a systems language with borrow checker",
		"Python is a dynamic language popular for ML",
	} {
		_, err := s.Put(ctx, PutParams{Content: c})
		require.NoError(t, err)
	}

	result, err := s.Context(ctx, ContextParams{Query: "language", Budget: 4000})
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 3)
	assert.Equal(t, 4000, result.Budget)
	assert.Positive(t, result.Used)
	for _, c := range result.Chunks {
		assert.False(t, c.Excerpt)
		assert.Contains(t, c.Content, "language")
	}
}

func TestContextBudgetLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("This is a line about programming languages and their features.\n", 100)
	_, err := s.Put(ctx, PutParams{Content: long})
	require.NoError(t, err)
	_, err = s.Put(ctx, PutParams{Content: "Go is great for programming"})
	require.NoError(t, err)

	result, err := s.Context(ctx, ContextParams{Query: "programming", Budget: 50})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)
	assert.LessOrEqual(t, result.Used, 51)

	last := result.Chunks[len(result.Chunks)-1]
	if last.Excerpt {
		assert.True(t, strings.HasSuffix(last.Content, "..."))
	}
}

func TestContextEmpty(t *testing.T) {
	s := newTestStore(t)
	result, err := s.Context(context.Background(), ContextParams{Query: "nothing here", Budget: 4000})
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
	assert.NotNil(t, result.Chunks)
}

func TestContextRecencyBoosting(t *testing.T) {
	s := newTestStore(t)
	writeFixtures(t, s,
		fixture{id: "2025-06-01_001", content: "notes about coding style", createdAt: "2025-06-01T10:00:00"},
		fixture{id: "2026-01-31_001", content: "notes about coding style", createdAt: "2026-01-31T10:00:00"},
	)

	result, err := s.Context(context.Background(), ContextParams{Query: "coding", Budget: 4000})
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2)
	assert.Equal(t, "2026-01-31_001", result.Chunks[0].ChunkID)
	assert.Greater(t, result.Chunks[0].Score, result.Chunks[1].Score)
}

func TestContextFilters(t *testing.T) {
	s := architectureStore(t)
	result, err := s.Context(context.Background(), ContextParams{Query: "architecture", Filters: Filters{DateFrom: "2026-01-25"}})
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "2026-01-28_RLM_001", result.Chunks[0].ChunkID)
}

func TestTruncateBytes(t *testing.T) {
	assert.Equal(t, "abc", truncateBytes("abc", 10))
	assert.Equal(t, "D", truncateBytes("Déc", 2))
	assert.Equal(t, "Dé", truncateBytes("Déc", 3))
}
