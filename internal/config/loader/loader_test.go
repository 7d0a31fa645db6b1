package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	mfs := NewMemFS()
	mfs.AddFile("/cfg/undocalc.toml", `
[history]
max_entries = 50

[log]
level = "debug"
format = "json"
`)

	cfg, err := NewTOMLLoaderWithFS(mfs, "/cfg/undocalc.toml").Load()
	require.NoError(t, err)

	v, ok := Lookup(cfg, "history.max_entries")
	require.True(t, ok)
	assert.EqualValues(t, 50, v)

	v, ok = Lookup(cfg, "log.level")
	require.True(t, ok)
	assert.Equal(t, "debug", v)
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	cfg, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	mfs := NewMemFS()
	mfs.AddFile("/bad.toml", "[history\nmax_entries = ")

	_, err := NewTOMLLoaderWithFS(mfs, "/bad.toml").Load()
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "/bad.toml", perr.Path)
	assert.Contains(t, perr.Error(), "parse error in /bad.toml")
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	cfg, err := NewTOMLLoader("").LoadFromReader(strings.NewReader(`metrics = { addr = ":9090" }`))
	require.NoError(t, err)

	v, ok := Lookup(cfg, "metrics.addr")
	require.True(t, ok)
	assert.Equal(t, ":9090", v)
}

func TestYAMLLoader_Load(t *testing.T) {
	mfs := NewMemFS()
	mfs.AddFile("/cfg/undocalc.yaml", `
history:
  max_entries: 7
repl:
  prompt: "calc> "
`)

	cfg, err := NewYAMLLoaderWithFS(mfs, "/cfg/undocalc.yaml").Load()
	require.NoError(t, err)

	v, ok := Lookup(cfg, "history.max_entries")
	require.True(t, ok)
	assert.EqualValues(t, 7, v)

	v, ok = Lookup(cfg, "repl.prompt")
	require.True(t, ok)
	assert.Equal(t, "calc> ", v)
}

func TestYAMLLoader_LoadInvalid(t *testing.T) {
	mfs := NewMemFS()
	mfs.AddFile("/bad.yml", "history: [unclosed")

	_, err := NewYAMLLoaderWithFS(mfs, "/bad.yml").Load()
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestYAMLLoader_LoadNonExistent(t *testing.T) {
	cfg, err := NewYAMLLoaderWithFS(NewMemFS(), "/missing.yaml").Load()
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestForPath(t *testing.T) {
	l, err := ForPath(nil, "a.toml")
	require.NoError(t, err)
	assert.IsType(t, &TOMLLoader{}, l)

	l, err = ForPath(nil, "a.YML")
	require.NoError(t, err)
	assert.IsType(t, &YAMLLoader{}, l)

	_, err = ForPath(nil, "a.json")
	assert.Error(t, err)
}

func TestEnvLoader(t *testing.T) {
	env := map[string]string{
		"UNDOCALC_LOG_LEVEL":           "warn",
		"UNDOCALC_HISTORY_MAX_ENTRIES": "1",
		"UNDOCALC_METRICS_ADDR":        "127.0.0.1:9100",
		"OTHER_LOG_LEVEL":              "debug",
	}
	l := NewEnvLoader("UNDOCALC_")
	l.lookup = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := l.Load()
	require.NoError(t, err)

	v, _ := Lookup(cfg, "log.level")
	assert.Equal(t, "warn", v)
	v, _ = Lookup(cfg, "history.max_entries")
	assert.Equal(t, "1", v)
	v, _ = Lookup(cfg, "metrics.addr")
	assert.Equal(t, "127.0.0.1:9100", v)
	_, ok := Lookup(cfg, "log.format")
	assert.False(t, ok)
	assert.Equal(t, "UNDOCALC_", l.Prefix())
}

func TestEnvLoaderKeepsRawStrings(t *testing.T) {
	for _, in := range []string{"yes", "off", "007", "1.50", ""} {
		t.Run(in, func(t *testing.T) {
			l := NewEnvLoader("UNDOCALC_")
			l.lookup = func(k string) (string, bool) {
				return in, k == "UNDOCALC_REPL_PROMPT"
			}

			cfg, err := l.Load()
			require.NoError(t, err)
			v, ok := Lookup(cfg, "repl.prompt")
			require.True(t, ok)
			assert.Equal(t, in, v)
		})
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":     map[string]any{"level": "info", "format": "text"},
		"history": map[string]any{"max_entries": 0},
	}
	src := map[string]any{
		"log":     map[string]any{"level": "debug"},
		"metrics": map[string]any{"addr": ":1"},
	}

	got := DeepMerge(dst, src)
	v, _ := Lookup(got, "log.level")
	assert.Equal(t, "debug", v)
	v, _ = Lookup(got, "log.format")
	assert.Equal(t, "text", v)
	v, _ = Lookup(got, "metrics.addr")
	assert.Equal(t, ":1", v)

	assert.NotNil(t, DeepMerge(nil, nil))
}

func TestLookupMissing(t *testing.T) {
	data := map[string]any{"log": "flat"}
	_, ok := Lookup(data, "log.level")
	assert.False(t, ok)
	_, ok = Lookup(data, "nope")
	assert.False(t, ok)
}
