package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/undocalc/internal/config/loader"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0, cfg.History.MaxEntries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.Lua.Timeout)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("", WithEnv(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"), WithEnv(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "undocalc.toml", `
[history]
max_entries = 25

[log]
level = "debug"

[lua]
timeout = "250ms"

[metrics]
addr = ":9464"
`)

	cfg, err := Load(path, WithEnv(nil))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.History.MaxEntries)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Lua.Timeout)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "undocalc.yaml", `
log:
  format: json
repl:
  prompt: "calc> "
  history_file: /tmp/calc_history
lua:
  timeout: 2
`)

	cfg, err := Load(path, WithEnv(nil))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "calc> ", cfg.REPL.Prompt)
	assert.Equal(t, "/tmp/calc_history", cfg.REPL.HistoryFile)
	assert.Equal(t, 2*time.Second, cfg.Lua.Timeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "undocalc.toml", "[log]\nlevel = \"debug\"\n")
	t.Setenv("UNDOCALC_LOG_LEVEL", "error")
	t.Setenv("UNDOCALC_HISTORY_MAX_ENTRIES", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 3, cfg.History.MaxEntries)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "undocalc.json", "{}")
	_, err := Load(path, WithEnv(nil))
	assert.Error(t, err)
}

func TestLoadParseError(t *testing.T) {
	path := writeFile(t, "undocalc.toml", "[log\n")
	_, err := Load(path, WithEnv(nil))
	var perr *loader.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		path     string
		sentinel error
	}{
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level", ErrValidationFailed},
		{"bad format", "[log]\nformat = \"xml\"\n", "log.format", ErrValidationFailed},
		{"negative capacity", "[history]\nmax_entries = -1\n", "history.max_entries", ErrValidationFailed},
		{"capacity type", "[history]\nmax_entries = \"many\"\n", "history.max_entries", ErrTypeMismatch},
		{"fractional capacity", "[history]\nmax_entries = 1.5\n", "history.max_entries", ErrTypeMismatch},
		{"timeout type", "[lua]\ntimeout = \"soon\"\n", "lua.timeout", ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "undocalc.toml", tt.content)
			_, err := Load(path, WithEnv(nil))
			require.Error(t, err)

			var serr *SettingError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.path, serr.Path)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestFromMapStringCoercion(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"repl": map[string]any{"prompt": int64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.REPL.Prompt)
}

func TestLoadEnvKeepsStrings(t *testing.T) {
	for _, in := range []string{"yes", "off", "007", "1.50"} {
		t.Run(in, func(t *testing.T) {
			t.Setenv("UNDOCALC_REPL_PROMPT", in)
			t.Setenv("UNDOCALC_REPL_HISTORY_FILE", in)
			t.Setenv("UNDOCALC_METRICS_ADDR", in)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, in, cfg.REPL.Prompt)
			assert.Equal(t, in, cfg.REPL.HistoryFile)
			assert.Equal(t, in, cfg.Metrics.Addr)
		})
	}
}

func TestLoadEnvTypedValues(t *testing.T) {
	t.Setenv("UNDOCALC_HISTORY_MAX_ENTRIES", "007")
	t.Setenv("UNDOCALC_LUA_TIMEOUT", "1.5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.History.MaxEntries)
	assert.Equal(t, 1500*time.Millisecond, cfg.Lua.Timeout)

	t.Setenv("UNDOCALC_LUA_TIMEOUT", "250ms")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Lua.Timeout)
}

func TestLoadEnvBadInteger(t *testing.T) {
	t.Setenv("UNDOCALC_HISTORY_MAX_ENTRIES", "lots")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var serr *SettingError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "history.max_entries", serr.Path)
}
