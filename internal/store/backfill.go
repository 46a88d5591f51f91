package store

import (
	"context"

	"github.com/rlmkit/rlm/internal/entity"
	"github.com/rlmkit/rlm/internal/frontmatter"
)

// BackfillItem reports one processed chunk.
type BackfillItem struct {
	ChunkID  string      `json:"chunk_id"`
	Count    int         `json:"count"`
	Entities *entity.Set `json:"entities,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// BackfillReport summarises a backfill run.
type BackfillReport struct {
	DryRun        bool           `json:"dry_run"`
	Updated       int            `json:"updated"`
	Skipped       int            `json:"skipped"`
	Errors        int            `json:"errors"`
	TotalEntities int            `json:"total_entities"`
	Items         []BackfillItem `json:"items"`
}

// Backfill extracts entities for every record that has none, storing them
// on the record and in the chunk file's front-matter. Records whose
// entities are absent, null, empty or not a category mapping count as
// having none.
func (s *FileStore) Backfill(ctx context.Context, p BackfillParams) (*BackfillReport, error) {
	x, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	rep := &BackfillReport{DryRun: p.DryRun, Items: []BackfillItem{}}
	for i := range x.Chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := &x.Chunks[i]
		if !e.Entities.IsZero() {
			rep.Skipped++
			continue
		}

		fm, body, err := s.readChunk(*e)
		if err != nil {
			s.opts.logger.Warn("backfill skip", "id", e.ID, "err", err)
			rep.Errors++
			rep.Items = append(rep.Items, BackfillItem{ChunkID: e.ID, Error: err.Error()})
			continue
		}

		ents := entity.Extract(body, s.extractOptions())
		rep.TotalEntities += ents.Total()
		rep.Items = append(rep.Items, BackfillItem{ChunkID: e.ID, Count: ents.Total(), Entities: &ents})
		rep.Updated++
		if p.DryRun {
			continue
		}

		e.Entities = entity.FieldOf(ents)
		if fm != "" {
			text := frontmatter.Join(frontmatter.RewriteEntities(fm, ents), body)
			if err := writeAtomic(s.chunkPath(*e), []byte(text)); err != nil {
				return nil, err
			}
		}
	}

	if !p.DryRun && rep.Updated > 0 {
		if err := s.saveIndex(x); err != nil {
			return nil, err
		}
	}
	s.opts.logger.Info("backfill complete", "updated", rep.Updated, "skipped", rep.Skipped, "errors", rep.Errors, "dry_run", p.DryRun)
	return rep, nil
}
