// Package repl implements the interactive undocalc shell.
package repl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"github.com/pkg/errors"

	"github.com/dshills/undocalc/internal/engine/history"
	"github.com/dshills/undocalc/internal/script"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("add"),
	readline.PcItem("sub"),
	readline.PcItem("mul"),
	readline.PcItem("div"),

	readline.PcItem("undo"),
	readline.PcItem("redo"),
	readline.PcItem("value"),
	readline.PcItem("history"),

	readline.PcItem("begin"),
	readline.PcItem("end"),
	readline.PcItem("cancel"),
	readline.PcItem("mark"),
	readline.PcItem("rewind"),
	readline.PcItem("reset"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

const helpText = `operations:  add|+ N   sub|- N   mul|* N   div|/ N
history:     undo  redo  value  history  reset
groups:      begin [name]  end  cancel
marks:       mark  rewind
other:       help  exit`

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// Config configures the shell.
type Config struct {
	Prompt      string
	HistoryFile string
}

// REPL is an interactive shell driving one accumulator.
type REPL struct {
	acc    *history.Accumulator
	cfg    Config
	log    *slog.Logger
	out    io.Writer
	rl     *readline.Instance
	mark   history.Checkpoint
	marked bool
}

// New creates a shell for acc.
func New(acc *history.Accumulator, cfg Config, log *slog.Logger) *REPL {
	if cfg.Prompt == "" {
		cfg.Prompt = "= "
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &REPL{acc: acc, cfg: cfg, log: log, out: os.Stdout}
}

// SetOutput sets where evaluation results are written.
func (r *REPL) SetOutput(w io.Writer) {
	r.out = w
}

// Open starts the line editor.
func (r *REPL) Open() (err error) {
	r.rl, err = readline.NewFromConfig(&readline.Config{
		Prompt:          r.cfg.Prompt,
		HistoryFile:     r.cfg.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	return errors.Wrap(err, "opening line editor")
}

// Close releases the line editor.
func (r *REPL) Close() error {
	if r.rl != nil {
		_ = r.rl.Close()
		r.rl = nil
	}
	return nil
}

// Run reads and evaluates lines until exit, EOF or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if r.rl == nil {
		if err := r.Open(); err != nil {
			return err
		}
	}

	stop := context.AfterFunc(ctx, func() {
		_ = r.Close()
	})
	defer stop()

	out := r.out
	for ctx.Err() == nil {
		line, err := r.rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) != 0 {
				continue
			}
			return nil
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "reading input")
		}

		result, err := r.Eval(line)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			r.log.Debug("eval failed", "line", line, "error", err)
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if result != "" {
			_, _ = fmt.Fprintln(out, result)
		}
	}
	return nil
}

// Eval evaluates one line and returns the text to print.
// It returns io.EOF when the line asks to leave the shell.
func (r *REPL) Eval(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return "", io.EOF
	case "help", "?":
		return helpText, nil
	case "history", "ls":
		return r.history(), nil
	case "mark":
		r.mark = r.acc.CreateCheckpoint()
		r.marked = true
		return fmt.Sprintf("marked at depth %d", r.mark.Depth()), nil
	case "rewind":
		if !r.marked {
			return "", errors.New("no mark set")
		}
		evicted := r.acc.CheckpointEvicted(r.mark)
		r.acc.UndoToCheckpoint(r.mark)
		value := history.FormatValue(r.acc.CurrentValue())
		if evicted {
			return value + "  (mark evicted, rewound to oldest entry)", nil
		}
		return value, nil
	}

	step, err := script.ParseLine(line)
	if errors.Is(err, script.ErrEmptyLine) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if err := script.Apply(r.acc, step); err != nil {
		return "", err
	}

	if step.Do == script.ActionBegin {
		return "group started", nil
	}
	return history.FormatValue(r.acc.CurrentValue()), nil
}

func (r *REPL) history() string {
	var b strings.Builder

	undo := r.acc.UndoInfo()
	redo := r.acc.RedoInfo()
	if len(undo) == 0 && len(redo) == 0 {
		return "history is empty"
	}

	for i, info := range undo {
		fmt.Fprintf(&b, "%3d  %s\n", i+1, info.Description)
	}
	fmt.Fprintf(&b, "  =  %s", history.FormatValue(r.acc.CurrentValue()))
	if r.acc.IsGrouping() {
		b.WriteString("  (group open)")
	}
	for i := len(redo) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "\n  ~  %s", redo[i].Description)
	}
	return b.String()
}
