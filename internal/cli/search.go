package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Ranked search over chunks",
		Long:  "Rank chunk passages against the query with BM25 and show the best passage of each chunk.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	addFilterFlags(cmd)
	cmd.Flags().IntP("limit", "l", 0, "Max results (default from config)")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := s.Search(cmd.Context(), store.SearchParams{
		Filters: readFilters(cmd),
		Query:   query,
		Limit:   limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	emit(res, func(w io.Writer) { renderSearch(w, res) })
}
