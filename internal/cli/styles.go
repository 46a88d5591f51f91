package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rlmkit/rlm/internal/model"
	"github.com/rlmkit/rlm/internal/store"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	projectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("219"))

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func fprintln(w io.Writer, a ...any) {
	fmt.Fprintln(w, a...)
}

func entryLine(e model.IndexEntry) string {
	var b strings.Builder
	b.WriteString(idStyle.Render(e.ID))
	if e.Project != "" {
		b.WriteString(" " + projectStyle.Render("["+e.Project+"]"))
	}
	if len(e.Tags) > 0 {
		b.WriteString(" " + dimStyle.Render("#"+strings.Join(e.Tags, " #")))
	}
	b.WriteString(" " + e.Summary)
	return b.String()
}

func renderEntries(w io.Writer, entries []model.IndexEntry) {
	if len(entries) == 0 {
		fprintln(w, dimStyle.Render("no chunks"))
		return
	}
	for _, e := range entries {
		fprintln(w, entryLine(e))
	}
}

func renderChunk(w io.Writer, c *model.Chunk) {
	fprintln(w, entryLine(c.Record))
	meta := []string{}
	if c.Record.CreatedAt != "" {
		meta = append(meta, c.Record.CreatedAt)
	}
	meta = append(meta, fmt.Sprintf("~%d tokens", c.Record.TokensEstimate))
	meta = append(meta, fmt.Sprintf("%d reads", c.Record.AccessCount))
	fprintln(w, dimStyle.Render(strings.Join(meta, " · ")))
	fprintln(w)
	fprintln(w, c.Content)
}

func renderGrep(w io.Writer, r *store.GrepResult) {
	if r.MatchCount == 0 {
		fprintln(w, dimStyle.Render("no matches for "+strconv.Quote(r.Pattern)))
		return
	}
	for _, m := range r.Matches {
		loc := idStyle.Render(m.ChunkID) + dimStyle.Render(":"+strconv.Itoa(m.LineNumber))
		if r.Fuzzy {
			loc += " " + scoreStyle.Render("["+strconv.Itoa(m.Score)+"]")
		}
		fprintln(w, loc+" "+m.Line)
	}
}

func renderSearch(w io.Writer, r *store.SearchResult) {
	if r.ResultCount == 0 {
		fprintln(w, dimStyle.Render("no results for "+strconv.Quote(r.Query)))
		return
	}
	fprintln(w, titleStyle.Render("Search Results"))
	for _, h := range r.Results {
		line := idStyle.Render(h.ChunkID) + " " + scoreStyle.Render(fmt.Sprintf("[%.3f]", h.Score))
		if h.Project != "" {
			line += " " + projectStyle.Render("["+h.Project+"]")
		}
		fprintln(w, line+" "+h.Summary)
		fprintln(w, "  "+dimStyle.Render(h.Snippet))
	}
}

func renderContext(w io.Writer, r *store.ContextResult) {
	for _, c := range r.Chunks {
		fprintln(w, "## "+idStyle.Render(c.ChunkID)+" "+c.Summary)
		fprintln(w)
		fprintln(w, c.Content)
		fprintln(w)
	}
	fprintln(w, dimStyle.Render(fmt.Sprintf("%d/%d tokens", r.Used, r.Budget)))
}

func renderStats(w io.Writer, st *store.Stats) {
	row := func(label string, value any) {
		fprintln(w, "  "+dimStyle.Render(fmt.Sprintf("%-14s", label+":"))+" "+scoreStyle.Render(fmt.Sprint(value)))
	}
	fprintln(w, titleStyle.Render("Context Statistics"))
	fprintln(w)
	row("Directory", st.ContextDir)
	row("Index", st.IndexVersion)
	row("Chunks", st.TotalChunks)
	row("Tokens", st.TotalTokensEstimate)
	row("With entities", st.WithEntities)
	if st.Oldest != "" {
		row("Span", st.Oldest+" → "+st.Newest)
	}
	row("Search DB", fmt.Sprintf("%d bytes", st.SearchDBBytes))
	if len(st.Projects) > 0 {
		fprintln(w)
		for _, p := range st.Projects {
			name := p.Project
			if name == "" {
				name = "(none)"
			}
			fprintln(w, "  "+projectStyle.Render(fmt.Sprintf("%-14s", name))+fmt.Sprintf(" %d chunks, ~%d tokens", p.Count, p.Tokens))
		}
	}
}

func renderBackfill(w io.Writer, r *store.BackfillReport) {
	title := "Entity Backfill"
	if r.DryRun {
		title += " (dry run)"
	}
	fprintln(w, titleStyle.Render(title))
	for _, it := range r.Items {
		if it.Error != "" {
			fprintln(w, "  "+idStyle.Render(it.ChunkID)+" "+dimStyle.Render("error: "+it.Error))
			continue
		}
		fprintln(w, "  "+idStyle.Render(it.ChunkID)+" "+scoreStyle.Render(strconv.Itoa(it.Count))+" entities")
	}
	fprintln(w, dimStyle.Render(fmt.Sprintf("updated %d, skipped %d, errors %d, entities %d",
		r.Updated, r.Skipped, r.Errors, r.TotalEntities)))
}

// splitTags parses a comma-separated flag value.
func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
