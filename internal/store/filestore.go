package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rlmkit/rlm/internal/entity"
	"github.com/rlmkit/rlm/internal/frontmatter"
	"github.com/rlmkit/rlm/internal/model"
)

const (
	indexFile  = "index.json"
	chunksDir  = "chunks"
	searchFile = "search.db"

	DefaultListLimit      = 20
	DefaultGrepLimit      = 50
	DefaultFuzzyThreshold = 80
	DefaultSearchLimit    = 10
)

// FileStore implements Store over a context directory:
//
//	<dir>/index.json      chunk records
//	<dir>/chunks/<id>.md  front-matter and body
//	<dir>/search.db       derived FTS5 passage index
type FileStore struct {
	dir    string
	opts   options
	search *searchIndex
}

type options struct {
	logger         *log.Logger
	now            func() time.Time
	maxEntities    int
	fuzzyThreshold int
	searchLimit    int
}

// Option configures a FileStore.
type Option func(*options)

// WithLogger sets the logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides time.Now for chunk IDs and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMaxEntities caps the entities extracted per chunk.
func WithMaxEntities(n int) Option {
	return func(o *options) { o.maxEntities = n }
}

// WithFuzzyThreshold sets the default fuzzy grep threshold (0-100).
func WithFuzzyThreshold(n int) Option {
	return func(o *options) { o.fuzzyThreshold = n }
}

// WithSearchLimit sets the default number of search results.
func WithSearchLimit(n int) Option {
	return func(o *options) { o.searchLimit = n }
}

// Open opens or creates a context directory.
func Open(dir string, opts ...Option) (*FileStore, error) {
	o := options{
		logger:         log.New(io.Discard),
		now:            time.Now,
		maxEntities:    entity.DefaultMaxEntities,
		fuzzyThreshold: DefaultFuzzyThreshold,
		searchLimit:    DefaultSearchLimit,
	}
	for _, fn := range opts {
		fn(&o)
	}

	if err := os.MkdirAll(filepath.Join(dir, chunksDir), 0o755); err != nil {
		return nil, fmt.Errorf("create context dir: %w", err)
	}

	idx, err := openSearchIndex(filepath.Join(dir, searchFile), o.logger)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}

	return &FileStore{dir: dir, opts: o, search: idx}, nil
}

// Dir returns the context directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Close() error {
	return s.search.close()
}

func (s *FileStore) extractOptions() entity.Options {
	return entity.Options{MaxEntities: s.opts.maxEntities}
}

func (s *FileStore) loadIndex() (*model.Index, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &model.Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var x model.Index
	if err := json.Unmarshal(b, &x); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &x, nil
}

func (s *FileStore) saveIndex(x *model.Index) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(x); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return writeAtomic(filepath.Join(s.dir, indexFile), buf.Bytes())
}

func (s *FileStore) chunkPath(e model.IndexEntry) string {
	if e.File != "" {
		return filepath.Join(s.dir, filepath.FromSlash(e.File))
	}
	return filepath.Join(s.dir, chunksDir, e.ID+".md")
}

// readChunk returns the front-matter block and body of a chunk file. Files
// without front-matter are all body.
func (s *FileStore) readChunk(e model.IndexEntry) (fm, body string, err error) {
	b, err := os.ReadFile(s.chunkPath(e))
	if err != nil {
		return "", "", err
	}
	fm, body, err = frontmatter.Split(string(b))
	if errors.Is(err, frontmatter.ErrNoFrontMatter) {
		err = nil
	}
	return fm, body, err
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
