package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/hook"
)

func init() {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Assistant hook entry points",
		Long:  "Hook commands print a JSON object with a systemMessage when a reminder is due, and nothing otherwise.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Count a turn and remind to save context when due",
		Run:   runHookStop,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pre-compact",
		Short: "Remind to save context before compaction (reads hook input on stdin)",
		Run:   runHookPreCompact,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset the turn counter after a chunk is saved",
		Run:   runHookReset,
	})

	RootCmd.AddCommand(cmd)
}

func hooks() *hook.Hooks {
	return hook.New(cfg.Hook(), logger)
}

// resetHooks restarts the reminder counter once a chunk is saved.
func resetHooks() {
	if err := hooks().Reset(); err != nil {
		logger.Warn("reset hook state", "err", err)
	}
}

func runHookStop(cmd *cobra.Command, args []string) {
	msg, err := hooks().Stop()
	if err != nil {
		exitErr("hook stop", err)
	}
	if msg != nil {
		writeJSON(out, msg)
	}
}

func runHookPreCompact(cmd *cobra.Command, args []string) {
	var in io.Reader
	if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		in = os.Stdin
	}
	writeJSON(out, hooks().PreCompact(in))
}

func runHookReset(cmd *cobra.Command, args []string) {
	if err := hooks().Reset(); err != nil {
		exitErr("hook reset", err)
	}
}
