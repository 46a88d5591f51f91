// Package passage cuts chunk bodies into search passages along markdown
// boundaries.
package passage

import "strings"

const (
	DefaultTarget = 400
	DefaultMax    = 600
)

// Options bounds passage sizes in bytes.
type Options struct {
	Target int
	Max    int
}

// DefaultOptions returns the sizes used by the search index.
func DefaultOptions() Options {
	return Options{Target: DefaultTarget, Max: DefaultMax}
}

// Passage is a slice of a chunk body with its 1-based line span.
type Passage struct {
	Text      string
	StartLine int
	EndLine   int
}

// Split cuts text into passages. Text that fits in opts.Max is returned as a
// single passage; blank input yields nil.
func Split(text string, opts Options) []Passage {
	if opts.Target <= 0 || opts.Max <= 0 {
		opts = DefaultOptions()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= opts.Max {
		return []Passage{{Text: text, StartLine: 1, EndLine: lineCount(text)}}
	}
	return pack(sections(text), opts)
}

func lineCount(s string) int { return strings.Count(s, "\n") + 1 }

// sections breaks text before every heading and after every run of blank
// lines.
func sections(text string) []Passage {
	lines := strings.Split(text, "\n")
	var out []Passage
	var cur []string
	start := 1

	emit := func(end int) {
		if t := strings.TrimSpace(strings.Join(cur, "\n")); t != "" {
			out = append(out, Passage{Text: t, StartLine: start, EndLine: end})
		}
		cur = nil
		start = end + 1
	}

	blank := false
	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		if len(cur) > 0 && (strings.HasPrefix(trimmed, "#") || (trimmed == "" && blank)) {
			emit(n - 1)
		}
		blank = trimmed == ""
		cur = append(cur, line)
	}
	emit(len(lines))
	return out
}

// pack merges neighbouring sections up to opts.Target and hard-splits any
// that still exceed opts.Max.
func pack(secs []Passage, opts Options) []Passage {
	var out []Passage
	var acc Passage

	flush := func() {
		switch {
		case acc.Text == "":
		case len(acc.Text) > opts.Max:
			out = append(out, byLines(acc.Text, acc.StartLine, opts.Target)...)
		default:
			out = append(out, acc)
		}
		acc = Passage{}
	}

	for _, s := range secs {
		if acc.Text != "" {
			if merged := acc.Text + "\n\n" + s.Text; len(merged) <= opts.Target {
				acc.Text = merged
				acc.EndLine = s.EndLine
				continue
			}
			flush()
		}
		acc = s
	}
	flush()
	return out
}

// byLines cuts text on line boundaries into pieces of about target bytes.
func byLines(text string, firstLine, target int) []Passage {
	lines := strings.Split(text, "\n")
	var out []Passage
	from, size := 0, 0

	cut := func(to int) {
		if t := strings.TrimSpace(strings.Join(lines[from:to], "\n")); t != "" {
			out = append(out, Passage{Text: t, StartLine: firstLine + from, EndLine: firstLine + to - 1})
		}
		from, size = to, 0
	}

	for i, line := range lines {
		if size+len(line) > target && i > from {
			cut(i)
		}
		size += len(line) + 1
	}
	cut(len(lines))
	return out
}
