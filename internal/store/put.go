package store

import (
	"context"
	"fmt"
	"os"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rlmkit/rlm/internal/entity"
	"github.com/rlmkit/rlm/internal/frontmatter"
	"github.com/rlmkit/rlm/internal/model"
)

const summaryLen = 80

var projectName = regexp.MustCompile(`^[\w.-]+$`)

func (s *FileStore) Put(ctx context.Context, p PutParams) (*model.IndexEntry, error) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	project := strings.TrimSpace(p.Project)
	if project != "" && !projectName.MatchString(project) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProject, project)
	}

	x, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	id := s.nextID(x, now, project)
	ents := entity.Extract(content, s.extractOptions())

	summary := strings.TrimSpace(p.Summary)
	if summary == "" {
		summary = defaultSummary(content)
	}

	e := model.IndexEntry{
		ID:             id,
		File:           path.Join(chunksDir, id+".md"),
		Summary:        summary,
		Tags:           cleanTags(p.Tags),
		Project:        project,
		Domain:         strings.TrimSpace(p.Domain),
		CreatedAt:      now.Format(time.RFC3339),
		TokensEstimate: utf8.RuneCountInString(content) / 4,
		Entities:       entity.FieldOf(ents),
	}

	if err := s.writeChunk(e, ents, content); err != nil {
		return nil, err
	}
	x.Chunks = append(x.Chunks, e)
	if err := s.saveIndex(x); err != nil {
		return nil, err
	}

	if err := s.search.indexChunk(ctx, id, content); err != nil {
		s.opts.logger.Warn("index chunk for search", "id", id, "err", err)
	}
	s.opts.logger.Debug("stored chunk", "id", id, "tokens", e.TokensEstimate, "entities", ents.Total())
	return &e, nil
}

func (s *FileStore) writeChunk(e model.IndexEntry, ents entity.Set, body string) error {
	fm, err := frontmatter.Render(frontmatter.Meta{
		ID:        e.ID,
		Summary:   e.Summary,
		CreatedAt: e.CreatedAt,
		Tags:      e.Tags,
		Project:   e.Project,
		Domain:    e.Domain,
	}, ents)
	if err != nil {
		return err
	}
	return writeAtomic(s.chunkPath(e), []byte(frontmatter.Join(fm, body)))
}

// nextID returns YYYY-MM-DD_PROJECT_NNN, or YYYY-MM-DD_NNN without a
// project, using the first sequence number past every existing one.
func (s *FileStore) nextID(x *model.Index, now time.Time, project string) string {
	prefix := now.Format(time.DateOnly) + "_"
	if project != "" {
		prefix += project + "_"
	}

	seq := 0
	for _, c := range x.Chunks {
		rest, ok := strings.CutPrefix(c.ID, prefix)
		if !ok || len(rest) != 3 {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > seq {
			seq = n
		}
	}
	for {
		seq++
		id := fmt.Sprintf("%s%03d", prefix, seq)
		if _, err := os.Stat(s.chunkPath(model.IndexEntry{ID: id})); os.IsNotExist(err) {
			return id
		}
	}
}

func defaultSummary(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimSpace(strings.TrimLeft(line, "# "))
	if utf8.RuneCountInString(line) <= summaryLen {
		return line
	}
	r := []rune(line)
	return string(r[:summaryLen]) + "..."
}

func cleanTags(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
