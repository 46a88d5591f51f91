// Package hook implements the assistant hooks that nudge it to save
// chunks: a per-turn stop check, a pre-compact reminder and a counter reset.
package hook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rlmkit/rlm/internal/i18n"
)

const (
	DefaultTurnsThreshold = 10
	DefaultInterval       = 30 * time.Minute

	rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
)

// Level is the urgency of a save reminder.
type Level int

const (
	LevelNone Level = iota
	LevelSoft
	LevelMedium
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelSoft:
		return "soft"
	case LevelMedium:
		return "medium"
	case LevelCritical:
		return "critical"
	}
	return "none"
}

// Assess returns the reminder level for the turns and time elapsed since
// the last saved chunk.
func Assess(turns int, elapsed time.Duration, threshold int, interval time.Duration) Level {
	switch {
	case turns >= 2*threshold || elapsed >= 2*interval:
		return LevelCritical
	case turns >= threshold || elapsed >= interval:
		return LevelMedium
	case turns >= threshold/2:
		return LevelSoft
	}
	return LevelNone
}

// Message is the JSON a hook prints for the assistant.
type Message struct {
	SystemMessage string `json:"systemMessage"`
}

// State is the persisted counter. LastChunk is Unix seconds.
type State struct {
	Turns     int     `json:"turns"`
	LastChunk float64 `json:"last_chunk"`
}

// Config configures the hooks.
type Config struct {
	StateFile      string
	TurnsThreshold int
	Interval       time.Duration
	Lang           string
}

// Hooks runs the hooks against one state file.
type Hooks struct {
	cfg    Config
	tr     i18n.Translator
	now    func() time.Time
	logger *log.Logger
}

// New returns Hooks for cfg. Zero thresholds take the defaults.
func New(cfg Config, logger *log.Logger) *Hooks {
	if cfg.TurnsThreshold <= 0 {
		cfg.TurnsThreshold = DefaultTurnsThreshold
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hooks{cfg: cfg, tr: i18n.New(cfg.Lang), now: time.Now, logger: logger}
}

// Stop counts one turn and returns a reminder when one is due, or nil.
func (h *Hooks) Stop() (*Message, error) {
	st := h.load()
	st.Turns++
	if err := h.save(st); err != nil {
		return nil, err
	}

	elapsed := h.now().Sub(unixSeconds(st.LastChunk))
	level := Assess(st.Turns, elapsed, h.cfg.TurnsThreshold, h.cfg.Interval)
	h.logger.Debug("stop check", "turns", st.Turns, "elapsed", elapsed.Round(time.Second), "level", level)

	minutes := int(elapsed.Minutes())
	turns := fmt.Sprintf("%d %s", st.Turns, h.tr.T("turns"))
	switch level {
	case LevelCritical:
		return &Message{SystemMessage: fmt.Sprintf("[%s] %s, %d min\n%s\n\n%s",
			h.tr.T("critical_title"), turns, minutes, rule, h.tr.T("critical_body"))}, nil
	case LevelMedium:
		return &Message{SystemMessage: fmt.Sprintf("[%s] %s, %d min\n\n%s",
			h.tr.T("medium_title"), turns, minutes, h.tr.T("medium_body"))}, nil
	case LevelSoft:
		return &Message{SystemMessage: fmt.Sprintf("%s: %s. %s",
			h.tr.T("soft_prefix"), turns, h.tr.T("soft_body"))}, nil
	}
	return nil, nil
}

// PreCompact returns the save-before-compact reminder. in carries the
// assistant's hook input; the context usage it reports is shown when known.
func (h *Hooks) PreCompact(in io.Reader) *Message {
	info := ""
	if pct := contextPercent(in); pct > 0 {
		info = fmt.Sprintf(" (ctx: %d%%)", pct)
	}
	return &Message{SystemMessage: fmt.Sprintf("[%s]%s\n%s\n\n%s",
		h.tr.T("compact_title"), info, rule, h.tr.T("compact_body"))}
}

// Reset zeroes the turn counter and restarts the clock.
func (h *Hooks) Reset() error {
	return h.save(State{Turns: 0, LastChunk: toUnixSeconds(h.now())})
}

// load reads the state file. A missing or corrupt file yields a fresh
// state starting now.
func (h *Hooks) load() State {
	fresh := State{LastChunk: toUnixSeconds(h.now())}
	b, err := os.ReadFile(h.cfg.StateFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("read hook state", "path", h.cfg.StateFile, "err", err)
		}
		return fresh
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		h.logger.Warn("corrupt hook state, starting over", "path", h.cfg.StateFile, "err", err)
		return fresh
	}
	if st.LastChunk == 0 {
		st.LastChunk = fresh.LastChunk
	}
	return st
}

func (h *Hooks) save(st State) error {
	if err := os.MkdirAll(filepath.Dir(h.cfg.StateFile), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := h.cfg.StateFile + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, h.cfg.StateFile); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

type usageInput struct {
	ContextWindow struct {
		CurrentUsage *struct {
			InputTokens              int `json:"input_tokens"`
			CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
			CacheReadInputTokens     int `json:"cache_read_input_tokens"`
		} `json:"current_usage"`
		Size *int `json:"context_window_size"`
	} `json:"context_window"`
}

// contextPercent returns the used share of the context window, or 0 when
// the input is empty or malformed.
func contextPercent(in io.Reader) int {
	if in == nil {
		return 0
	}
	b, err := io.ReadAll(in)
	if err != nil || strings.TrimSpace(string(b)) == "" {
		return 0
	}
	var u usageInput
	if err := json.Unmarshal(b, &u); err != nil {
		return 0
	}
	size := 1
	if u.ContextWindow.Size != nil {
		size = *u.ContextWindow.Size
	}
	usage := u.ContextWindow.CurrentUsage
	if usage == nil || size <= 0 {
		return 0
	}
	current := usage.InputTokens + usage.CacheCreationInputTokens + usage.CacheReadInputTokens
	return current * 100 / size
}

func unixSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func toUnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
