package cli

import (
	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/mcp"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}

	srv := mcp.NewServer(s, logger)
	srv.OnChunk(resetHooks)
	if err := srv.Serve(cmd.Context()); err != nil {
		exitErr("serve", err)
	}
}
