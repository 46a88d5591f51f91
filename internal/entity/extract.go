package entity

import (
	"regexp"
	"slices"
	"strings"
)

// DefaultMaxEntities caps the total number of entities kept per chunk.
const DefaultMaxEntities = 50

// Options configures extraction.
type Options struct {
	// MaxEntities caps the total across all categories. Zero selects
	// DefaultMaxEntities; a negative value yields an empty set.
	MaxEntities int
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{MaxEntities: DefaultMaxEntities}
}

// rules run independently over the whole text. Their order is the order in
// which categories consume the MaxEntities budget.
var rules = []struct {
	cat   Category
	match func(text string) []string
}{
	{Files, matchFiles},
	{Versions, matchVersions},
	{Modules, matchModules},
	{Tickets, matchTickets},
	{Functions, matchFunctions},
}

// Extract classifies content into an entity Set. Every category is present
// in the result, sorted and deduplicated, and the total never exceeds
// opts.MaxEntities: categories are filled in priority order (files,
// versions, modules, tickets, functions) until the cap is reached.
func Extract(content string, opts Options) Set {
	if opts.MaxEntities == 0 {
		opts = DefaultOptions()
	}

	set := NewSet()
	if strings.TrimSpace(content) == "" || opts.MaxEntities < 0 {
		return set
	}

	budget := opts.MaxEntities
	for _, r := range rules {
		vals := uniqueSorted(r.match(content))
		if len(vals) > budget {
			vals = vals[:budget]
		}
		budget -= len(vals)
		*set.list(r.cat) = vals
	}
	return set
}

func uniqueSorted(vals []string) []string {
	out := slices.Clone(vals)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		return []string{}
	}
	return out
}

// --- files ---

var fileExtensions = []string{
	"py", "js", "ts", "tsx", "jsx", "json", "css", "scss", "xml", "md",
	"html", "htm", "yaml", "yml", "toml", "txt", "go", "rs", "java", "sql",
	"sh", "csv", "ini", "cfg", "vue", "rb", "php",
}

var filePattern = regexp.MustCompile(
	`(?:^|[^\w./~-])((?:~?/)?(?:[\w.-]+/)*[\w.-]+\.(?:` + strings.Join(fileExtensions, "|") + `))\b`)

func matchFiles(text string) []string {
	var out []string
	for _, m := range filePattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// --- versions ---

var (
	versionRun = regexp.MustCompile(`[vV]?\d+(?:\.\d+)+`)
	dateShaped = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)
	versionCue = regexp.MustCompile(
		`(?i)(?:\bversions?|\breleases?|\b(?:updated|upgraded|bumped|update|upgrade) to|mis à jour vers|passage à)\s*[:=]?\s*$`)
)

// cueWindow is how many bytes before a two-segment run are searched for a
// cue word.
const cueWindow = 40

func matchVersions(text string) []string {
	var out []string
	for _, loc := range versionRun.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && (isWordByte(text[start-1]) || text[start-1] == '.') {
			continue
		}
		if end < len(text) && isWordByte(text[end]) {
			continue
		}

		tok := text[start:end]
		num := strings.TrimLeft(tok, "vV")
		segments := strings.Count(num, ".") + 1
		if segments > 4 || dateShaped.MatchString(num) {
			continue
		}

		switch {
		case tok != num:
		case segments >= 3:
		case versionCue.MatchString(text[max(0, start-cueWindow):start]):
		default:
			continue
		}
		out = append(out, tok)
	}
	return out
}

// --- modules ---

var (
	fromImportPattern   = regexp.MustCompile(`\bfrom\s+([A-Za-z_][\w.]*)\s+import\b`)
	importPattern       = regexp.MustCompile(`\bimport\s+([A-Za-z_][\w.]*)`)
	quotedImportPattern = regexp.MustCompile(`\bimport\s+(?:[A-Za-z_]\w*\s+)?"([\w./-]+)"`)
	requirePattern      = regexp.MustCompile(`\brequire\(\s*['"]([@\w./-]+)['"]\s*\)`)
	modulePattern       = regexp.MustCompile("\\b(?i:modules?)\\s*:?\\s+[`'\"]?([a-z_][a-z0-9_]*(?:\\.[a-z0-9_]+)*)")
)

// moduleStopWords are prose words that commonly follow a cue word and are
// never module names.
var moduleStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "for": true,
	"to": true, "of": true, "in": true, "on": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "it": true, "this": true,
	"that": true, "these": true, "those": true, "with": true, "from": true,
	"as": true, "at": true, "by": true, "which": true, "will": true,
	"can": true, "should": true, "not": true,
	"de": true, "du": true, "des": true, "le": true, "la": true, "les": true,
	"un": true, "une": true, "et": true, "ou": true, "pour": true, "est": true,
	"sont": true, "dans": true, "avec": true, "qui": true, "que": true,
	"sur": true, "par": true, "ce": true, "cette": true, "il": true,
	"mis": true, "pas": true,
}

func matchModules(text string) []string {
	var out []string
	add := func(name string) {
		name = strings.TrimRight(name, ".")
		if name != "" && !moduleStopWords[strings.ToLower(name)] {
			out = append(out, name)
		}
	}

	var fromSpans [][]int
	for _, m := range fromImportPattern.FindAllStringSubmatchIndex(text, -1) {
		fromSpans = append(fromSpans, m[:2])
		add(text[m[2]:m[3]])
	}
	for _, m := range importPattern.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(m[0], fromSpans) {
			continue
		}
		add(text[m[2]:m[3]])
	}
	for _, re := range []*regexp.Regexp{quotedImportPattern, requirePattern, modulePattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			add(m[1])
		}
	}
	return out
}

func insideAny(pos int, spans [][]int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

// --- tickets ---

var ticketPattern = regexp.MustCompile(`[A-Z][A-Z0-9]+-\d+`)

// ticketDenyList holds standard-name prefixes that look like ticket keys.
var ticketDenyList = map[string]bool{
	"UTF": true, "ISO": true, "SHA": true, "MD": true, "AES": true,
	"RSA": true, "TLS": true, "SSL": true, "HTTP": true, "IEEE": true,
	"ECMA": true,
}

func matchTickets(text string) []string {
	var out []string
	for _, loc := range ticketPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && (isWordByte(text[start-1]) || text[start-1] == '-') {
			continue
		}
		if end < len(text) && (isWordByte(text[end]) || text[end] == '-') {
			continue
		}
		tok := text[start:end]
		if ticketDenyList[tok[:strings.IndexByte(tok, '-')]] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// --- functions ---

var functionPattern = regexp.MustCompile(`\b[A-Za-z_]\w*\(\)`)

func matchFunctions(text string) []string {
	return functionPattern.FindAllString(text, -1)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
