// Package frontmatter reads and writes the YAML header of chunk files.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rlmkit/rlm/internal/entity"
)

const delimiter = "---"

// ErrNoFrontMatter is returned by Split when the text does not open with a
// front-matter delimiter.
var ErrNoFrontMatter = errors.New("frontmatter: missing delimiter")

// Meta holds the scalar header fields of a chunk file. The entities block
// is not YAML-shaped and is handled by RewriteEntities.
type Meta struct {
	ID        string   `yaml:"id"`
	Summary   string   `yaml:"summary"`
	CreatedAt string   `yaml:"created_at"`
	Tags      []string `yaml:"tags"`
	Project   string   `yaml:"project,omitempty"`
	Domain    string   `yaml:"domain,omitempty"`
}

// Split separates a chunk file into its front-matter block and body, both
// trimmed. Text without front-matter is returned whole as the body together
// with ErrNoFrontMatter.
func Split(text string) (fm, body string, err error) {
	if !strings.HasPrefix(text, delimiter) {
		return "", strings.TrimSpace(text), ErrNoFrontMatter
	}
	rest := text[len(delimiter):]
	idx := strings.Index(rest, "\n"+delimiter)
	if idx == -1 {
		return "", "", fmt.Errorf("frontmatter: unclosed block")
	}
	fm = strings.TrimSpace(rest[:idx])
	body = rest[idx+len("\n"+delimiter):]
	return fm, strings.TrimSpace(body), nil
}

// Join renders a chunk file from a front-matter block and a body.
func Join(fm, body string) string {
	var sb strings.Builder
	sb.WriteString(delimiter + "\n")
	sb.WriteString(strings.TrimRight(fm, "\n"))
	sb.WriteString("\n" + delimiter + "\n\n")
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return sb.String()
}

// Decode parses the scalar fields of a front-matter block.
func Decode(fm string) (Meta, error) {
	var m Meta
	if err := yaml.Unmarshal([]byte(fm), &m); err != nil {
		return Meta{}, fmt.Errorf("frontmatter: parse: %w", err)
	}
	return m, nil
}

// Render produces the front-matter block for a new chunk, entities included.
func Render(m Meta, s entity.Set) (string, error) {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&m); err != nil {
		return "", fmt.Errorf("frontmatter: render: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("frontmatter: render: %w", err)
	}
	return RewriteEntities(strings.TrimRight(buf.String(), "\n"), s), nil
}

// RewriteEntities replaces the entities block of fm with one built from s.
// The new block goes before the first project:, ticket: or domain: line, or
// at the end when none is present.
func RewriteEntities(fm string, s entity.Set) string {
	var lines []string
	if strings.TrimSpace(fm) != "" {
		lines = strings.Split(fm, "\n")
	}

	var kept []string
	inBlock := false
	for _, line := range lines {
		if strings.HasPrefix(line, "entities:") {
			inBlock = true
			continue
		}
		if inBlock {
			switch {
			case strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "  ("):
				continue
			case strings.TrimSpace(line) == "(none)":
				continue
			default:
				inBlock = false
			}
		}
		kept = append(kept, line)
	}

	at := len(kept)
	for i, line := range kept {
		if strings.HasPrefix(line, "project:") || strings.HasPrefix(line, "ticket:") || strings.HasPrefix(line, "domain:") {
			at = i
			break
		}
	}

	block := entityLines(s)
	out := make([]string, 0, len(kept)+len(block))
	out = append(out, kept[:at]...)
	out = append(out, block...)
	out = append(out, kept[at:]...)
	return strings.Join(out, "\n")
}

func entityLines(s entity.Set) []string {
	lines := []string{"entities:"}
	for _, c := range entity.Categories {
		if vals := s.Get(c); len(vals) > 0 {
			lines = append(lines, fmt.Sprintf("  %s: %s", c, strings.Join(vals, ", ")))
		}
	}
	if len(lines) == 1 {
		lines = append(lines, "  (none)")
	}
	return lines
}
