package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/stategraph/pkg/stategraph/config"
)

func workflowConfig() config.Config {
	return config.New(map[string]any{
		"model":         "claude-sonnet",
		"max_rounds":    3,
		"temperature":   0.2,
		"verbose":       true,
		"timeout":       "90s",
		"allowed_tools": []any{"word_count", "search"},
	})
}

func TestNew_NilMap(t *testing.T) {
	cfg := config.New(nil)
	assert.NotNil(t, cfg.Raw())
	assert.False(t, cfg.Has("model"))
}

func TestConfig_String(t *testing.T) {
	cfg := workflowConfig()

	assert.Equal(t, "claude-sonnet", cfg.String("model", "claude-haiku"))
	assert.Equal(t, "claude-haiku", cfg.String("missing", "claude-haiku"))

	// Wrong type falls back.
	assert.Equal(t, "none", cfg.String("max_rounds", "none"))
}

func TestConfig_Bool(t *testing.T) {
	cfg := workflowConfig()

	assert.True(t, cfg.Bool("verbose", false))
	assert.False(t, cfg.Bool("missing", false))
	assert.True(t, cfg.Bool("model", true))
}

func TestConfig_Int(t *testing.T) {
	cfg := workflowConfig()

	assert.Equal(t, 3, cfg.Int("max_rounds", 1))
	assert.Equal(t, 1, cfg.Int("missing", 1))

	// JSON numbers decode as float64; whole values convert.
	jsonCfg := config.New(map[string]any{"max_rounds": float64(5), "workers": 2.5})
	assert.Equal(t, 5, jsonCfg.Int("max_rounds", 1))

	// A fractional count is a config mistake, not something to truncate.
	assert.Equal(t, 4, jsonCfg.Int("workers", 4))
}

func TestConfig_Float(t *testing.T) {
	cfg := workflowConfig()

	assert.InDelta(t, 0.2, cfg.Float("temperature", 1.0), 1e-9)
	assert.InDelta(t, 3.0, cfg.Float("max_rounds", 1.0), 1e-9)
	assert.InDelta(t, 1.0, cfg.Float("missing", 1.0), 1e-9)
}

func TestConfig_Duration(t *testing.T) {
	cfg := workflowConfig()

	assert.Equal(t, 90*time.Second, cfg.Duration("timeout", time.Minute))
	assert.Equal(t, time.Minute, cfg.Duration("missing", time.Minute))

	numeric := config.New(map[string]any{
		"poll":  30,
		"grace": 1.5,
		"exact": 2 * time.Second,
		"bad":   "soonish",
	})
	assert.Equal(t, 30*time.Second, numeric.Duration("poll", 0))
	assert.Equal(t, 1500*time.Millisecond, numeric.Duration("grace", 0))
	assert.Equal(t, 2*time.Second, numeric.Duration("exact", 0))
	assert.Equal(t, time.Minute, numeric.Duration("bad", time.Minute))
}

func TestConfig_StringSlice(t *testing.T) {
	cfg := workflowConfig()

	assert.Equal(t, []string{"word_count", "search"}, cfg.StringSlice("allowed_tools", nil))
	assert.Nil(t, cfg.StringSlice("missing", nil))

	direct := config.New(map[string]any{"tools": []string{"search"}})
	assert.Equal(t, []string{"search"}, direct.StringSlice("tools", nil))

	// A mixed list falls back whole rather than dropping elements.
	mixed := config.New(map[string]any{"tools": []any{"search", 7}})
	assert.Equal(t, []string{"fallback"}, mixed.StringSlice("tools", []string{"fallback"}))
}

func TestConfig_Has(t *testing.T) {
	cfg := workflowConfig()

	assert.True(t, cfg.Has("model"))
	assert.False(t, cfg.Has("checkpoint"))
}

func TestFromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
model: claude-sonnet
max_rounds: 3
allowed_tools:
  - word_count
  - search
`))
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet", cfg.String("model", ""))
	assert.Equal(t, 3, cfg.Int("max_rounds", 0))
	assert.Equal(t, []string{"word_count", "search"}, cfg.StringSlice("allowed_tools", nil))
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("model: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"model": "claude-sonnet", "max_rounds": 3}`))
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet", cfg.String("model", ""))
	assert.Equal(t, 3, cfg.Int("max_rounds", 0))
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := config.FromJSON([]byte(`{"model":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("model: claude-sonnet\n"), 0o644))

	jsonPath := filepath.Join(dir, "workflow.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"max_rounds": 2}`), 0o644))

	yamlCfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet", yamlCfg.String("model", ""))

	jsonCfg, err := config.FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, jsonCfg.Int("max_rounds", 0))
}

func TestFromFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.toml")
	require.NoError(t, os.WriteFile(path, []byte("model = 'x'\n"), 0o644))

	_, err := config.FromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file extension")
}

func TestFromFile_Missing(t *testing.T) {
	_, err := config.FromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
