// Package temporal resolves calendar dates for chunk records and filters
// them by inclusive date ranges.
package temporal

import (
	"regexp"
	"time"
)

// Stamp carries the two fields a chunk date can be derived from.
type Stamp struct {
	ID        string
	CreatedAt string
}

// Range is an inclusive window of YYYY-MM-DD dates. An empty bound is
// unbounded on that side.
type Range struct {
	From string `json:"date_from,omitempty"`
	To   string `json:"date_to,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.From == "" && r.To == "" }

var idDatePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

// ResolveDate returns the calendar date of a chunk. The date portion of
// CreatedAt wins when it parses; otherwise a leading YYYY-MM-DD of ID is
// used. The second result is false when neither yields a date.
func ResolveDate(s Stamp) (string, bool) {
	if len(s.CreatedAt) >= len(time.DateOnly) {
		if d := s.CreatedAt[:len(time.DateOnly)]; validDate(d) {
			return d, true
		}
	}
	if m := idDatePrefix.FindStringSubmatch(s.ID); m != nil && validDate(m[1]) {
		return m[1], true
	}
	return "", false
}

func validDate(d string) bool {
	_, err := time.Parse(time.DateOnly, d)
	return err == nil
}

// InRange reports whether the chunk's date falls inside r, bounds
// inclusive. Without bounds every chunk is in range. With any bound, an
// undatable chunk and an inverted range both yield false. Bounds are
// compared as strings and are not validated.
func InRange(s Stamp, r Range) bool {
	if r.IsZero() {
		return true
	}
	d, ok := ResolveDate(s)
	if !ok {
		return false
	}
	if r.From != "" && r.To != "" && r.From > r.To {
		return false
	}
	if r.From != "" && d < r.From {
		return false
	}
	if r.To != "" && d > r.To {
		return false
	}
	return true
}
