package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [description]",
		Short: "Assemble relevant chunks for a task",
		Long:  "Search and score chunks, then greedily pack them into a token budget.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runContext,
	}

	addFilterFlags(cmd)
	cmd.Flags().IntP("budget", "b", 4000, "Max tokens in output")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	budget, _ := cmd.Flags().GetInt("budget")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	result, err := s.Context(cmd.Context(), store.ContextParams{
		Filters: readFilters(cmd),
		Query:   query,
		Budget:  budget,
	})
	if err != nil {
		exitErr("context", err)
	}

	emit(result, func(w io.Writer) { renderContext(w, result) })
}
