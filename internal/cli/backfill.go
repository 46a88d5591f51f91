package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Extract entities for chunks that have none",
		Run:   runBackfill,
	}

	cmd.Flags().Bool("dry-run", false, "Report without writing")

	RootCmd.AddCommand(cmd)
}

func runBackfill(cmd *cobra.Command, args []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	report, err := s.Backfill(cmd.Context(), store.BackfillParams{DryRun: dryRun})
	if err != nil {
		exitErr("backfill", err)
	}
	logger.Info("backfill done", "updated", report.Updated, "skipped", report.Skipped, "errors", report.Errors)

	emit(report, func(w io.Writer) { renderBackfill(w, report) })
}
