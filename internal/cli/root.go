// Package cli implements the rlm CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rlmkit/rlm/internal/config"
	"github.com/rlmkit/rlm/internal/store"
)

var (
	dirFlag    string
	configFlag string
	formatFlag string

	cfg *config.Config

	// logger writes operational messages to stderr; stdout carries command
	// output and the MCP protocol.
	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false, Prefix: "rlm"})

	out io.Writer = os.Stdout
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "rlm",
	Short: "Chunked conversation memory for AI assistants",
	Long: titleStyle.Render("rlm") + " stores conversation context as markdown chunks and retrieves it\n" +
		"by regex, fuzzy match, ranked search, entity and date.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "Context directory (default: $RLM_CONTEXT_DIR or ~/.claude/rlm/context)")
	RootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file (default: <context dir>/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func setup(cmd *cobra.Command, args []string) error {
	if formatFlag != "json" && formatFlag != "text" {
		return fmt.Errorf("unknown format %q (json or text)", formatFlag)
	}
	c, err := config.Load(configFlag, dirFlag, os.Getenv)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Warn("unknown log level, using warn", "level", c.LogLevel)
		level = log.WarnLevel
	}
	logger.SetLevel(level)
	cfg = c
	logger.Debug("config loaded", "context_dir", cfg.ContextDir, "lang", cfg.Lang)
	return nil
}

func openStore() (*store.FileStore, error) {
	opts := append(cfg.StoreOptions(), store.WithLogger(logger))
	return store.Open(cfg.ContextDir, opts...)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// emit writes v as indented JSON, or through text when --format text.
func emit(v any, text func(w io.Writer)) {
	if formatFlag == "text" && text != nil {
		text(out)
		return
	}
	writeJSON(out, v)
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		exitErr("encode output", err)
	}
}
