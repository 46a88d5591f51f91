package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "grep [pattern]",
		Short: "Match a pattern against chunk lines",
		Long: "Match a case-insensitive regular expression against every line of every chunk.\n" +
			"With --fuzzy, report the best approximate line per chunk, scored 0-100.",
		Args: cobra.MinimumNArgs(1),
		Run:  runGrep,
	}

	addFilterFlags(cmd)
	cmd.Flags().Bool("fuzzy", false, "Tolerate typos")
	cmd.Flags().Int("threshold", 0, "Minimum fuzzy score (default from config)")
	cmd.Flags().IntP("limit", "l", store.DefaultGrepLimit, "Max matches")

	RootCmd.AddCommand(cmd)
}

func runGrep(cmd *cobra.Command, args []string) {
	fuzzy, _ := cmd.Flags().GetBool("fuzzy")
	threshold, _ := cmd.Flags().GetInt("threshold")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := s.Grep(cmd.Context(), store.GrepParams{
		Filters:   readFilters(cmd),
		Pattern:   strings.Join(args, " "),
		Fuzzy:     fuzzy,
		Threshold: threshold,
		Limit:     limit,
	})
	if err != nil {
		exitErr("grep", err)
	}

	emit(res, func(w io.Writer) { renderGrep(w, res) })
}
