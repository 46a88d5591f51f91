package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlmkit/rlm/internal/entity"
)

func set(files, tickets []string) entity.Set {
	s := entity.NewSet()
	if files != nil {
		s.Files = files
	}
	if tickets != nil {
		s.Tickets = tickets
	}
	return s
}

func TestSplit(t *testing.T) {
	fm, body, err := Split("---\nsummary: Décision\ncreated_at: 2026-01-18T10:00:00\n---\n\nDécision architecture\n")
	require.NoError(t, err)
	assert.Equal(t, "summary: Décision\ncreated_at: 2026-01-18T10:00:00", fm)
	assert.Equal(t, "Décision architecture", body)
}

func TestSplit_NoFrontMatter(t *testing.T) {
	fm, body, err := Split("just text\n")
	assert.ErrorIs(t, err, ErrNoFrontMatter)
	assert.Empty(t, fm)
	assert.Equal(t, "just text", body)
}

func TestSplit_Unclosed(t *testing.T) {
	_, _, err := Split("---\nsummary: x\nno end")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFrontMatter)
}

func TestJoin_RoundTrip(t *testing.T) {
	text := Join("id: a\nsummary: b", "body line\n\nmore")
	assert.Equal(t, "---\nid: a\nsummary: b\n---\n\nbody line\n\nmore\n", text)

	fm, body, err := Split(text)
	require.NoError(t, err)
	assert.Equal(t, "id: a\nsummary: b", fm)
	assert.Equal(t, "body line\n\nmore", body)
}

func TestRewriteEntities(t *testing.T) {
	tests := []struct {
		name string
		fm   string
		set  entity.Set
		want string
	}{
		{
			name: "append at end",
			fm:   "summary: x\ncreated_at: 2026-01-18",
			set:  set([]string{"a.py", "b.py"}, nil),
			want: "summary: x\ncreated_at: 2026-01-18\nentities:\n  files: a.py, b.py",
		},
		{
			name: "insert before project",
			fm:   "summary: x\nproject: RLM\ndomain: web",
			set:  set(nil, []string{"JJ-1"}),
			want: "summary: x\nentities:\n  tickets: JJ-1\nproject: RLM\ndomain: web",
		},
		{
			name: "insert before ticket",
			fm:   "summary: x\nticket: JJ-2",
			set:  entity.NewSet(),
			want: "summary: x\nentities:\n  (none)\nticket: JJ-2",
		},
		{
			name: "replace existing block",
			fm:   "summary: x\nentities:\n  files: old.py\n  modules: os\nproject: RLM",
			set:  set([]string{"new.py"}, nil),
			want: "summary: x\nentities:\n  files: new.py\nproject: RLM",
		},
		{
			name: "replace none block",
			fm:   "summary: x\nentities:\n  (none)\ntags: []",
			set:  set([]string{"a.go"}, []string{"GH-1"}),
			want: "summary: x\ntags: []\nentities:\n  files: a.go\n  tickets: GH-1",
		},
		{
			name: "empty front matter",
			fm:   "",
			set:  entity.NewSet(),
			want: "entities:\n  (none)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewriteEntities(tt.fm, tt.set))
		})
	}
}

func TestRewriteEntities_Idempotent(t *testing.T) {
	s := set([]string{"server.py"}, []string{"JJ-123"})
	once := RewriteEntities("summary: x\nproject: RLM", s)
	assert.Equal(t, once, RewriteEntities(once, s))
}

func TestRender_Decode(t *testing.T) {
	m := Meta{
		ID:        "2026-02-01_RLM_001",
		Summary:   "Phase 7.2: entity extraction",
		CreatedAt: "2026-02-01T11:00:00+01:00",
		Tags:      []string{"rlm", "phase7"},
		Project:   "RLM",
	}
	fm, err := Render(m, set([]string{"server.py"}, nil))
	require.NoError(t, err)
	assert.Contains(t, fm, "entities:\n  files: server.py\nproject: RLM")

	back, err := Decode(fm)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestRender_NoEntities(t *testing.T) {
	fm, err := Render(Meta{ID: "2026-02-01_001", Summary: "s", CreatedAt: "2026-02-01T11:00:00Z"}, entity.NewSet())
	require.NoError(t, err)
	assert.Contains(t, fm, "tags: []")
	assert.Contains(t, fm, "entities:\n  (none)")
	assert.NotContains(t, fm, "project:")
}
