package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dshills/undocalc/internal/config/loader"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "UNDOCALC_"

// Config holds all undocalc settings.
type Config struct {
	History HistoryConfig
	Log     LogConfig
	REPL    REPLConfig
	Lua     LuaConfig
	Metrics MetricsConfig
}

// HistoryConfig configures the accumulator history.
type HistoryConfig struct {
	// MaxEntries caps the undo stack; 0 keeps it unbounded.
	MaxEntries int
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// REPLConfig configures the interactive shell.
type REPLConfig struct {
	Prompt      string
	HistoryFile string
}

// LuaConfig configures Lua script execution.
type LuaConfig struct {
	// Timeout bounds a single script run; 0 disables the limit.
	Timeout time.Duration
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{MaxEntries: 0},
		Log:     LogConfig{Level: "info", Format: "text"},
		REPL:    REPLConfig{Prompt: "= ", HistoryFile: ".undocalc_history"},
		Lua:     LuaConfig{Timeout: 5 * time.Second},
	}
}

// toMap converts the configuration into the layered map form.
func (c *Config) toMap() map[string]any {
	return map[string]any{
		"history": map[string]any{"max_entries": c.History.MaxEntries},
		"log":     map[string]any{"level": c.Log.Level, "format": c.Log.Format},
		"repl":    map[string]any{"prompt": c.REPL.Prompt, "history_file": c.REPL.HistoryFile},
		"lua":     map[string]any{"timeout": c.Lua.Timeout.String()},
		"metrics": map[string]any{"addr": c.Metrics.Addr},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFS sets the file system used to read the config file.
func WithFS(fs loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithEnv sets the environment loader. Pass nil to skip environment overrides.
func WithEnv(env loader.Loader) Option {
	return func(o *options) {
		o.env = env
	}
}

// Load builds a configuration from defaults, the file at path (if any) and
// the environment. A missing file is not an error.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(EnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged := Default().toMap()

	if path != "" {
		fl, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		fileCfg, err := fl.Load()
		if err != nil {
			return nil, errors.Wrap(err, "loading config file")
		}
		merged = loader.DeepMerge(merged, fileCfg)
	}

	if o.env != nil {
		envCfg, err := o.env.Load()
		if err != nil {
			return nil, errors.Wrap(err, "loading environment")
		}
		merged = loader.DeepMerge(merged, envCfg)
	}

	cfg, err := FromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMap decodes a layered configuration map. Missing keys keep their defaults.
func FromMap(m map[string]any) (*Config, error) {
	cfg := Default()
	d := decoder{m: m}

	d.integer("history.max_entries", &cfg.History.MaxEntries)
	d.str("log.level", &cfg.Log.Level)
	d.str("log.format", &cfg.Log.Format)
	d.str("repl.prompt", &cfg.REPL.Prompt)
	d.str("repl.history_file", &cfg.REPL.HistoryFile)
	d.duration("lua.timeout", &cfg.Lua.Timeout)
	d.str("metrics.addr", &cfg.Metrics.Addr)

	if d.err != nil {
		return nil, d.err
	}
	return cfg, nil
}

// Validate checks setting values.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return &SettingError{Path: "log.level", Value: c.Log.Level, Err: ErrValidationFailed}
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return &SettingError{Path: "log.format", Value: c.Log.Format, Err: ErrValidationFailed}
	}

	if c.History.MaxEntries < 0 {
		return &SettingError{Path: "history.max_entries", Value: c.History.MaxEntries, Err: ErrValidationFailed}
	}

	if c.Lua.Timeout < 0 {
		return &SettingError{Path: "lua.timeout", Value: c.Lua.Timeout, Err: ErrValidationFailed}
	}

	return nil
}

// decoder reads typed values out of a configuration map, keeping the first error.
type decoder struct {
	m   map[string]any
	err error
}

func (d *decoder) fail(path string, v any) {
	if d.err == nil {
		d.err = &SettingError{Path: path, Value: v, Err: ErrTypeMismatch}
	}
}

func (d *decoder) str(path string, dst *string) {
	v, ok := loader.Lookup(d.m, path)
	if !ok || v == nil {
		return
	}
	switch s := v.(type) {
	case string:
		*dst = s
	case int, int64, float64, bool:
		*dst = fmt.Sprint(s)
	default:
		d.fail(path, v)
	}
}

func (d *decoder) integer(path string, dst *int) {
	v, ok := loader.Lookup(d.m, path)
	if !ok || v == nil {
		return
	}
	switch n := v.(type) {
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			d.fail(path, v)
			return
		}
		*dst = parsed
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case uint64:
		*dst = int(n)
	case float64:
		if n != math.Trunc(n) {
			d.fail(path, v)
			return
		}
		*dst = int(n)
	default:
		d.fail(path, v)
	}
}

func (d *decoder) duration(path string, dst *time.Duration) {
	v, ok := loader.Lookup(d.m, path)
	if !ok || v == nil {
		return
	}
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		if parsed, err := time.ParseDuration(t); err == nil {
			*dst = parsed
			return
		}
		secs, err := strconv.ParseFloat(t, 64)
		if err != nil {
			d.fail(path, v)
			return
		}
		*dst = time.Duration(secs * float64(time.Second))
	case time.Duration:
		*dst = t
	case int:
		*dst = time.Duration(t) * time.Second
	case int64:
		*dst = time.Duration(t) * time.Second
	case float64:
		*dst = time.Duration(t * float64(time.Second))
	default:
		d.fail(path, v)
	}
}
