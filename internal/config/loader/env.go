package loader

import "os"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "UNDOCALC_")
	mapping map[string]string // Env var -> config path
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "UNDOCALC_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping(prefix))
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		lookup:  os.LookupEnv,
	}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":           "log.level",
		prefix + "LOG_FORMAT":          "log.format",
		prefix + "HISTORY_MAX_ENTRIES": "history.max_entries",
		prefix + "REPL_PROMPT":         "repl.prompt",
		prefix + "REPL_HISTORY_FILE":   "repl.history_file",
		prefix + "LUA_TIMEOUT":         "lua.timeout",
		prefix + "METRICS_ADDR":        "metrics.addr",
	}
}

// Load reads mapped environment variables and returns a configuration map.
// Values stay raw strings; typing is left to the config decoder.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			setByPath(config, path, val)
		}
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// Prefix returns the environment variable prefix.
func (l *EnvLoader) Prefix() string {
	return l.prefix
}
