package cli

import (
	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/store"
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("project", "p", "", "Filter by project")
	cmd.Flags().String("domain", "", "Filter by domain")
	cmd.Flags().StringP("entity", "e", "", "Filter by extracted entity (substring, case-insensitive)")
	cmd.Flags().String("from", "", "Only chunks dated on or after YYYY-MM-DD")
	cmd.Flags().String("to", "", "Only chunks dated on or before YYYY-MM-DD")
}

func readFilters(cmd *cobra.Command) store.Filters {
	var f store.Filters
	f.Project, _ = cmd.Flags().GetString("project")
	f.Domain, _ = cmd.Flags().GetString("domain")
	f.Entity, _ = cmd.Flags().GetString("entity")
	f.DateFrom, _ = cmd.Flags().GetString("from")
	f.DateTo, _ = cmd.Flags().GetString("to")
	return f
}
