package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("UNDOCALC_LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "demo")
	require.NoError(t, err)
	assert.Equal(t, "Current Result: 10.0\nAfter Undo: 20.0\nAfter Redo: 10.0\n", out)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Undocalc dev")
	assert.Contains(t, out, "Commit: unknown")
}

func TestRunScript(t *testing.T) {
	path := writeFile(t, "walk.calc", "add 8\nsub 3\nmul 4\ndiv 2\nundo\n")

	out, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Equal(t, "20\n", out)
}

func TestRunScriptTrace(t *testing.T) {
	path := writeFile(t, "walk.yaml", `steps:
  - do: add
    operand: 5
  - do: div
    operand: 0
  - do: undo
`)

	out, err := execute(t, "run", "--trace", path)
	require.NoError(t, err)
	assert.Contains(t, out, "  1  add 5")
	assert.Contains(t, out, "  2  div 0")
	assert.Contains(t, out, "  3  undo")
	assert.Contains(t, out, "\n5\n")
}

func TestRunScriptErrors(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.calc"))
	assert.Error(t, err)

	path := writeFile(t, "bad.calc", "add 1\nsquare 2\n")
	_, err = execute(t, "run", path)
	assert.Error(t, err)

	_, err = execute(t, "run")
	assert.Error(t, err)
}

func TestRunMaxEntries(t *testing.T) {
	path := writeFile(t, "capped.calc", "add 1\nadd 2\nadd 3\nundo\nundo\nundo\n")

	out, err := execute(t, "--max-entries", "2", "run", path)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestLua(t *testing.T) {
	path := writeFile(t, "walk.lua", `
calc.add(8)
calc.sub(3)
calc.mul(4)
calc.div(2)
calc.undo()
print(calc.value())
`)

	out, err := execute(t, "lua", path)
	require.NoError(t, err)
	assert.Equal(t, "20\n", out)
}

func TestLogLevelFlag(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "demo")
	assert.Error(t, err)

	_, err = execute(t, "--log-level", "DEBUG", "demo")
	assert.NoError(t, err)
}

func TestLevelValue(t *testing.T) {
	var l levelValue
	require.NoError(t, l.Set("Warn"))
	assert.Equal(t, "warn", l.String())
	assert.Equal(t, "level", l.Type())
	assert.Error(t, l.Set("verbose"))
}
