package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "peek <chunk-id>",
		Short: "Read a chunk",
		Args:  cobra.ExactArgs(1),
		Run:   runPeek,
	}

	RootCmd.AddCommand(cmd)
}

func runPeek(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		exitErr("peek", err)
	}

	emit(c, func(w io.Writer) { renderChunk(w, c) })
}
