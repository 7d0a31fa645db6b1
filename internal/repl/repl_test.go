package repl

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/undocalc/internal/engine/history"
	"github.com/dshills/undocalc/internal/script"
)

func eval(t *testing.T, r *REPL, line string) string {
	t.Helper()
	out, err := r.Eval(line)
	require.NoError(t, err, line)
	return out
}

func TestEvalScenario(t *testing.T) {
	r := New(history.New(), Config{}, nil)

	assert.Equal(t, "8", eval(t, r, "add 8"))
	assert.Equal(t, "5", eval(t, r, "- 3"))
	assert.Equal(t, "20", eval(t, r, "mul 4"))
	assert.Equal(t, "10", eval(t, r, "/ 2"))
	assert.Equal(t, "20", eval(t, r, "undo"))
	assert.Equal(t, "10", eval(t, r, "redo"))
	assert.Equal(t, "10", eval(t, r, "value"))
}

func TestEvalEmptyAndComments(t *testing.T) {
	r := New(history.New(), Config{}, nil)
	assert.Equal(t, "", eval(t, r, ""))
	assert.Equal(t, "", eval(t, r, "   "))
	assert.Equal(t, "", eval(t, r, "# note"))
}

func TestEvalErrors(t *testing.T) {
	r := New(history.New(), Config{}, nil)

	_, err := r.Eval("add")
	assert.ErrorIs(t, err, script.ErrMissingOperand)

	_, err = r.Eval("sqrt 4")
	assert.ErrorIs(t, err, script.ErrUnknownAction)

	_, err = r.Eval("rewind")
	assert.Error(t, err)
}

func TestEvalExit(t *testing.T) {
	r := New(history.New(), Config{}, nil)
	_, err := r.Eval("exit")
	assert.Equal(t, io.EOF, err)
	_, err = r.Eval("QUIT")
	assert.Equal(t, io.EOF, err)
}

func TestEvalHistory(t *testing.T) {
	r := New(history.New(), Config{}, nil)
	assert.Equal(t, "history is empty", eval(t, r, "history"))

	eval(t, r, "add 2")
	eval(t, r, "mul 3")
	eval(t, r, "undo")

	out := eval(t, r, "history")
	assert.Contains(t, out, "  1  add 2")
	assert.Contains(t, out, "  =  2")
	assert.Contains(t, out, "  ~  mul 3")

	eval(t, r, "begin pair")
	assert.Contains(t, eval(t, r, "history"), "(group open)")
}

func TestEvalGroupsAndMarks(t *testing.T) {
	acc := history.New()
	r := New(acc, Config{}, nil)

	eval(t, r, "add 1")
	assert.Equal(t, "marked at depth 1", eval(t, r, "mark"))

	assert.Equal(t, "group started", eval(t, r, "begin double up"))
	eval(t, r, "mul 2")
	eval(t, r, "add 3")
	assert.Equal(t, "5", eval(t, r, "end"))
	eval(t, r, "add 10")

	assert.Equal(t, "1", eval(t, r, "rewind"))
	assert.Equal(t, 2, acc.RedoCount())

	eval(t, r, "begin")
	eval(t, r, "add 50")
	assert.Equal(t, "1", eval(t, r, "cancel"))

	assert.Equal(t, "0", eval(t, r, "reset"))
	assert.False(t, acc.CanUndo())
}

func TestEvalRewindWithCapacity(t *testing.T) {
	r := New(history.New(history.WithMaxEntries(3)), Config{}, nil)

	eval(t, r, "add 1")
	eval(t, r, "add 1")
	eval(t, r, "mark")
	eval(t, r, "add 10")
	eval(t, r, "add 100")
	assert.Equal(t, "2", eval(t, r, "rewind"))

	eval(t, r, "mark")
	eval(t, r, "add 1")
	eval(t, r, "add 1")
	eval(t, r, "add 1")
	eval(t, r, "add 1")
	assert.Equal(t, "3  (mark evicted, rewound to oldest entry)", eval(t, r, "rewind"))
}

func TestEvalHelp(t *testing.T) {
	r := New(history.New(), Config{}, nil)
	assert.Contains(t, eval(t, r, "help"), "undo  redo")
}
