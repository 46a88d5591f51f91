package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/model"
	"github.com/rlmkit/rlm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [content]",
		Short: "Store a chunk",
		Long:  "Store a chunk. Content can be a positional arg or piped via stdin.",
		Run:   runPut,
	}

	cmd.Flags().StringP("summary", "s", "", "One-line summary (default: first line of content)")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().StringP("project", "p", "", "Project name")
	cmd.Flags().String("domain", "", "Domain label")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	summary, _ := cmd.Flags().GetString("summary")
	tagsStr, _ := cmd.Flags().GetString("tags")
	project, _ := cmd.Flags().GetString("project")
	domain, _ := cmd.Flags().GetString("domain")

	// Get content: positional arg first, then check stdin
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}

	if strings.TrimSpace(content) == "" {
		exitErr("put", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	e, err := s.Put(cmd.Context(), store.PutParams{
		Content: content,
		Summary: summary,
		Tags:    splitTags(tagsStr),
		Project: project,
		Domain:  domain,
	})
	if err != nil {
		exitErr("put", err)
	}
	resetHooks()

	emit(e, func(w io.Writer) { renderEntries(w, []model.IndexEntry{*e}) })
}
