package store

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/rlmkit/rlm/internal/model"
)

// GrepMatch is one matching body line.
type GrepMatch struct {
	ChunkID    string `json:"chunk_id"`
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
	Summary    string `json:"summary"`
	Score      int    `json:"score,omitempty"`
}

// GrepResult is the response of Grep and GrepFuzzy. A search with no hits
// is a success with an empty Matches.
type GrepResult struct {
	Status     string      `json:"status"`
	Pattern    string      `json:"pattern"`
	Fuzzy      bool        `json:"fuzzy,omitempty"`
	Threshold  int         `json:"threshold,omitempty"`
	MatchCount int         `json:"match_count"`
	Matches    []GrepMatch `json:"matches"`
	Filters    *Filters    `json:"filters,omitempty"`
}

// Grep matches p.Pattern case-insensitively against every line of every
// chunk body that passes the filters. A pattern that is not a valid regular
// expression is matched literally.
func (s *FileStore) Grep(ctx context.Context, p GrepParams) (*GrepResult, error) {
	if strings.TrimSpace(p.Pattern) == "" {
		return nil, ErrEmptyQuery
	}
	if p.Fuzzy {
		return s.GrepFuzzy(ctx, p)
	}

	re, err := regexp.Compile("(?i)" + p.Pattern)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(p.Pattern))
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultGrepLimit
	}

	res := &GrepResult{Status: "success", Pattern: p.Pattern, Matches: []GrepMatch{}, Filters: p.Filters.echo()}
	err = s.eachBody(ctx, p.Filters, func(e model.IndexEntry, body string) bool {
		for n, line := range strings.Split(body, "\n") {
			if !re.MatchString(line) {
				continue
			}
			res.Matches = append(res.Matches, GrepMatch{
				ChunkID:    e.ID,
				LineNumber: n + 1,
				Line:       strings.TrimSpace(line),
				Summary:    e.Summary,
			})
			if len(res.Matches) >= limit {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	res.MatchCount = len(res.Matches)
	return res, nil
}

// GrepFuzzy reports, for each chunk passing the filters, its body line that
// best matches p.Pattern, when that line scores at least the threshold.
// Results are ordered by score, best first.
func (s *FileStore) GrepFuzzy(ctx context.Context, p GrepParams) (*GrepResult, error) {
	pattern := strings.ToLower(strings.Join(strings.Fields(p.Pattern), " "))
	if pattern == "" {
		return nil, ErrEmptyQuery
	}
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = s.opts.fuzzyThreshold
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultGrepLimit
	}

	res := &GrepResult{
		Status:    "success",
		Pattern:   p.Pattern,
		Fuzzy:     true,
		Threshold: threshold,
		Matches:   []GrepMatch{},
		Filters:   p.Filters.echo(),
	}
	err := s.eachBody(ctx, p.Filters, func(e model.IndexEntry, body string) bool {
		best := GrepMatch{}
		for n, line := range strings.Split(body, "\n") {
			if score := lineScore(pattern, line); score > best.Score {
				best = GrepMatch{
					ChunkID:    e.ID,
					LineNumber: n + 1,
					Line:       strings.TrimSpace(line),
					Summary:    e.Summary,
					Score:      score,
				}
			}
		}
		if best.Score >= threshold {
			res.Matches = append(res.Matches, best)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(res.Matches, func(a, b GrepMatch) int { return b.Score - a.Score })
	if len(res.Matches) > limit {
		res.Matches = res.Matches[:limit]
	}
	res.MatchCount = len(res.Matches)
	return res, nil
}

// lineScore is the best window score of pattern in line, 0-100. Windows
// hold as many words as the pattern, and one more.
func lineScore(pattern, line string) int {
	words := strings.Fields(strings.ToLower(line))
	if len(words) == 0 {
		return 0
	}
	k := len(strings.Fields(pattern))

	var windows []string
	for size := k; size <= k+1; size++ {
		if size >= len(words) {
			windows = append(windows, strings.Join(words, " "))
			break
		}
		for i := 0; i+size <= len(words); i++ {
			windows = append(windows, strings.Join(words[i:i+size], " "))
		}
	}

	best := 0
	want := utf8.RuneCountInString(pattern)
	for _, m := range fuzzy.Find(pattern, windows) {
		first, last := m.MatchedIndexes[0], m.MatchedIndexes[len(m.MatchedIndexes)-1]
		span := utf8.RuneCountInString(m.Str[first:last]) + 1
		if score := min(100, want*100/span); score > best {
			best = score
		}
	}
	return best
}

// eachBody calls fn with the body of every chunk passing f, in index order,
// until fn returns false. Unreadable chunk files are logged and skipped.
func (s *FileStore) eachBody(ctx context.Context, f Filters, fn func(model.IndexEntry, string) bool) error {
	x, err := s.loadIndex()
	if err != nil {
		return err
	}
	for _, e := range x.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !f.Match(e) {
			continue
		}
		_, body, err := s.readChunk(e)
		if err != nil {
			s.opts.logger.Warn("skip unreadable chunk", "id", e.ID, "err", err)
			continue
		}
		if !fn(e, body) {
			break
		}
	}
	return nil
}
