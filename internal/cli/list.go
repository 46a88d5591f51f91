package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chunks, newest first",
		Run:   runList,
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("tags", "t", "", "Filter by tags (comma-separated)")
	cmd.Flags().IntP("limit", "l", store.DefaultListLimit, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output chunk IDs")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	tagsStr, _ := cmd.Flags().GetString("tags")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.List(cmd.Context(), store.ListParams{
		Filters: readFilters(cmd),
		Tags:    splitTags(tagsStr),
		Limit:   limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, e := range entries {
			fmt.Fprintln(out, e.ID)
		}
		return
	}

	emit(entries, func(w io.Writer) { renderEntries(w, entries) })
}
