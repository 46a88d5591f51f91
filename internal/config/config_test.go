package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load("", dir, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ContextDir)
	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, 50, cfg.MaxEntities)
	assert.Equal(t, 80, cfg.FuzzyThreshold)
	assert.Equal(t, 10, cfg.TurnsThreshold)
	assert.Equal(t, 30*time.Minute, cfg.Interval)
}

func TestLoad_FileInContextDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(
		"lang: fr\nmax_entities: 20\ninterval: 15m\nturns_threshold: 6\n"), 0o644))

	cfg, err := Load("", "", env(map[string]string{"RLM_CONTEXT_DIR": dir}))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ContextDir)
	assert.Equal(t, "fr", cfg.Lang)
	assert.Equal(t, 20, cfg.MaxEntities)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
	assert.Equal(t, 6, cfg.Hook().TurnsThreshold)
	assert.Len(t, cfg.StoreOptions(), 3)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("lang: fr\nmax_entities: 20\ncontext_dir: /from/file\n"), 0o644))

	cfg, err := Load(file, "", env(map[string]string{"RLM_MAX_ENTITIES": "7"}))
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.Lang)
	assert.Equal(t, 7, cfg.MaxEntities)
	assert.Equal(t, "/from/file", cfg.ContextDir)

	cfg, err = Load(file, "/from/flag", env(map[string]string{"RLM_CONTEXT_DIR": "/from/env"}))
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.ContextDir)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"), "", nil)
	assert.Error(t, err)

	_, err = Load("", dir, env(map[string]string{"RLM_MAX_ENTITIES": "many"}))
	assert.ErrorContains(t, err, "RLM_MAX_ENTITIES")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fuzzy_threshold: 150\n"), 0o644))
	_, err = Load(bad, dir, nil)
	assert.ErrorContains(t, err, "fuzzy_threshold")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("lang: [unterminated\n"), 0o644))
	_, err = Load(broken, dir, nil)
	assert.ErrorContains(t, err, "parse config")
}
