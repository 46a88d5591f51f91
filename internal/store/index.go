package store

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rlmkit/rlm/internal/passage"
)

// searchIndex is the FTS5 passage index in search.db. It is derived data:
// chunk files and index.json stay the source of truth.
type searchIndex struct {
	db      *sql.DB
	entropy *rand.Rand
	logger  *log.Logger
}

func openSearchIndex(dbPath string, logger *log.Logger) (*searchIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	ix := &searchIndex{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
	if err := ix.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return ix, nil
}

func (ix *searchIndex) close() error { return ix.db.Close() }

func (ix *searchIndex) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ix.entropy).String()
}

func (ix *searchIndex) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS indexed_chunks (
		chunk_id   TEXT PRIMARY KEY,
		indexed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS passages (
		id         TEXT PRIMARY KEY,
		chunk_id   TEXT NOT NULL,
		seq        INTEGER NOT NULL,
		text       TEXT NOT NULL,
		start_line INTEGER,
		end_line   INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_passages_chunk ON passages(chunk_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS passages_fts USING fts5(
		text,
		content=passages,
		content_rowid=rowid,
		tokenize='unicode61 remove_diacritics 2'
	);

	CREATE TRIGGER IF NOT EXISTS passages_ai AFTER INSERT ON passages BEGIN
		INSERT INTO passages_fts(rowid, text) VALUES (new.rowid, new.text);
	END;
	CREATE TRIGGER IF NOT EXISTS passages_ad AFTER DELETE ON passages BEGIN
		INSERT INTO passages_fts(passages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
	END;
	CREATE TRIGGER IF NOT EXISTS passages_au AFTER UPDATE ON passages BEGIN
		INSERT INTO passages_fts(passages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
		INSERT INTO passages_fts(rowid, text) VALUES (new.rowid, new.text);
	END;
	`
	_, err := ix.db.Exec(schema)
	return err
}

func (ix *searchIndex) indexChunk(ctx context.Context, chunkID, body string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ix.insertChunk(ctx, tx, chunkID, body); err != nil {
		return err
	}
	return tx.Commit()
}

func (ix *searchIndex) insertChunk(ctx context.Context, tx *sql.Tx, chunkID, body string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM passages WHERE chunk_id = ?`, chunkID); err != nil {
		return fmt.Errorf("clear passages: %w", err)
	}
	for i, p := range passage.Split(body, passage.DefaultOptions()) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO passages (id, chunk_id, seq, text, start_line, end_line)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			ix.newID(), chunkID, i, p.Text, p.StartLine, p.EndLine)
		if err != nil {
			return fmt.Errorf("insert passage: %w", err)
		}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO indexed_chunks (chunk_id, indexed_at) VALUES (?, ?)`,
		chunkID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}
	return nil
}

func (ix *searchIndex) indexedIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT chunk_id FROM indexed_chunks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// sync rebuilds the index from bodies when its chunk set differs from
// want. load returns the body of one chunk.
func (ix *searchIndex) sync(ctx context.Context, want []string, load func(id string) (string, error)) error {
	have, err := ix.indexedIDs(ctx)
	if err != nil {
		return fmt.Errorf("read indexed chunks: %w", err)
	}
	wantSet := map[string]bool{}
	for _, id := range want {
		wantSet[id] = true
	}
	if maps.Equal(have, wantSet) {
		return nil
	}

	ix.logger.Info("rebuilding search index", "indexed", len(have), "chunks", len(wantSet))
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM passages`); err != nil {
		return fmt.Errorf("clear passages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM indexed_chunks`); err != nil {
		return fmt.Errorf("clear indexed chunks: %w", err)
	}
	for _, id := range slices.Sorted(maps.Keys(wantSet)) {
		body, err := load(id)
		if err != nil {
			ix.logger.Warn("skip chunk in search index", "id", id, "err", err)
			body = ""
		}
		if err := ix.insertChunk(ctx, tx, id, body); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type passageHit struct {
	chunkID string
	text    string
	score   float64
}

// query returns the best-ranked passage of every chunk matching any term
// of q, best first. Scores are positive; higher is better.
func (ix *searchIndex) query(ctx context.Context, q string) ([]passageHit, error) {
	expr := matchExpr(q)
	if expr == "" {
		return nil, ErrEmptyQuery
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT p.chunk_id, p.text, bm25(passages_fts) AS rank
		FROM passages_fts
		JOIN passages p ON p.rowid = passages_fts.rowid
		WHERE passages_fts MATCH ?
		ORDER BY rank`, expr)
	if err != nil {
		return nil, fmt.Errorf("fts query: %w", err)
	}
	defer rows.Close()

	var hits []passageHit
	seen := map[string]bool{}
	for rows.Next() {
		var h passageHit
		var rank float64
		if err := rows.Scan(&h.chunkID, &h.text, &rank); err != nil {
			return nil, err
		}
		if seen[h.chunkID] {
			continue
		}
		seen[h.chunkID] = true
		h.score = -rank
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// matchExpr ORs every word of q as a quoted FTS5 phrase.
func matchExpr(q string) string {
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " OR ")
}
