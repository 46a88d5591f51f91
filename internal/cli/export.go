package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export chunks as JSON",
		Long:  "Export every chunk record with its body as a JSON array, in index order.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	chunks, err := s.Export(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	writeJSON(out, chunks)
}
