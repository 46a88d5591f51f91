// Package config resolves rlm settings from defaults, an optional YAML
// file, and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rlmkit/rlm/internal/entity"
	"github.com/rlmkit/rlm/internal/hook"
	"github.com/rlmkit/rlm/internal/store"
)

// FileName is looked up in the context directory when no file is given.
const FileName = "config.yaml"

// Config holds every tunable setting.
type Config struct {
	ContextDir     string        `yaml:"context_dir"`
	Lang           string        `yaml:"lang"`
	MaxEntities    int           `yaml:"max_entities"`
	FuzzyThreshold int           `yaml:"fuzzy_threshold"`
	SearchLimit    int           `yaml:"search_limit"`
	StateFile      string        `yaml:"state_file"`
	TurnsThreshold int           `yaml:"turns_threshold"`
	Interval       time.Duration `yaml:"interval"`
	LogLevel       string        `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".claude", "rlm")
	return &Config{
		ContextDir:     filepath.Join(base, "context"),
		Lang:           "en",
		MaxEntities:    entity.DefaultMaxEntities,
		FuzzyThreshold: store.DefaultFuzzyThreshold,
		SearchLimit:    store.DefaultSearchLimit,
		StateFile:      filepath.Join(base, "chunk_state.json"),
		TurnsThreshold: hook.DefaultTurnsThreshold,
		Interval:       hook.DefaultInterval,
		LogLevel:       "warn",
	}
}

// Load resolves the configuration. Later sources win:
//
//  1. defaults
//  2. the YAML file at file, or <context dir>/config.yaml when file is empty
//  3. RLM_* environment variables read through getenv
//  4. dir, when set
//
// A missing default file is ignored; a missing explicit file is an error.
func Load(file, dir string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	cfg := Default()

	explicit := file != ""
	if !explicit {
		lookup := cfg.ContextDir
		if v := getenv("RLM_CONTEXT_DIR"); v != "" {
			lookup = v
		}
		if dir != "" {
			lookup = dir
		}
		file = filepath.Join(lookup, FileName)
	}

	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", file, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.ContextDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"RLM_CONTEXT_DIR": &c.ContextDir,
		"RLM_LANG":        &c.Lang,
		"RLM_LOG_LEVEL":   &c.LogLevel,
		"RLM_STATE_FILE":  &c.StateFile,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	if v := getenv("RLM_MAX_ENTITIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RLM_MAX_ENTITIES: %w", err)
		}
		c.MaxEntities = n
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch {
	case c.ContextDir == "":
		return errors.New("config: context_dir is empty")
	case c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100:
		return fmt.Errorf("config: fuzzy_threshold %d outside 0-100", c.FuzzyThreshold)
	case c.SearchLimit < 0:
		return fmt.Errorf("config: search_limit %d is negative", c.SearchLimit)
	case c.TurnsThreshold < 0:
		return fmt.Errorf("config: turns_threshold %d is negative", c.TurnsThreshold)
	}
	return nil
}

// Hook returns the hook settings.
func (c *Config) Hook() hook.Config {
	return hook.Config{
		StateFile:      c.StateFile,
		TurnsThreshold: c.TurnsThreshold,
		Interval:       c.Interval,
		Lang:           c.Lang,
	}
}

// StoreOptions returns the store settings.
func (c *Config) StoreOptions() []store.Option {
	return []store.Option{
		store.WithMaxEntities(c.MaxEntities),
		store.WithFuzzyThreshold(c.FuzzyThreshold),
		store.WithSearchLimit(c.SearchLimit),
	}
}
