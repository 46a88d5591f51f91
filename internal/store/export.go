package store

import (
	"context"
	"fmt"
	"path"
	"regexp"

	"github.com/rlmkit/rlm/internal/entity"
	"github.com/rlmkit/rlm/internal/model"
)

var validID = regexp.MustCompile(`^[\w.-]+$`)

// ImportReport summarises an import.
type ImportReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Export returns every record with its body, in index order. Chunks whose
// file cannot be read are logged and left out.
func (s *FileStore) Export(ctx context.Context) ([]model.Chunk, error) {
	out := []model.Chunk{}
	err := s.eachBody(ctx, Filters{}, func(e model.IndexEntry, body string) bool {
		out = append(out, model.Chunk{Record: e, Content: body})
		return true
	})
	return out, err
}

// Import stores exported chunks whose IDs are not yet taken, keeping their
// IDs and timestamps. Entities are extracted when the export carries none.
func (s *FileStore) Import(ctx context.Context, chunks []model.Chunk) (*ImportReport, error) {
	x, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	rep := &ImportReport{}
	var added []model.Chunk
	for _, c := range chunks {
		r := c.Record
		switch {
		case !validID.MatchString(r.ID):
			rep.Errors = append(rep.Errors, fmt.Sprintf("invalid chunk id %q", r.ID))
			continue
		case x.Find(r.ID) >= 0:
			rep.Skipped++
			continue
		}

		ents, ok := r.Entities.Set()
		if !ok || r.Entities.IsZero() {
			ents = entity.Extract(c.Content, s.extractOptions())
		}
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		e := model.IndexEntry{
			ID:             r.ID,
			File:           path.Join(chunksDir, r.ID+".md"),
			Summary:        r.Summary,
			Tags:           tags,
			Project:        r.Project,
			Domain:         r.Domain,
			CreatedAt:      r.CreatedAt,
			TokensEstimate: r.TokensEstimate,
			AccessCount:    r.AccessCount,
			Entities:       entity.FieldOf(ents),
		}
		if err := s.writeChunk(e, ents, c.Content); err != nil {
			return nil, err
		}
		x.Chunks = append(x.Chunks, e)
		added = append(added, model.Chunk{Record: e, Content: c.Content})
		rep.Imported++
	}

	if rep.Imported == 0 {
		return rep, nil
	}
	if err := s.saveIndex(x); err != nil {
		return nil, err
	}
	for _, c := range added {
		if err := s.search.indexChunk(ctx, c.Record.ID, c.Content); err != nil {
			s.opts.logger.Warn("index chunk for search", "id", c.Record.ID, "err", err)
		}
	}
	return rep, nil
}
