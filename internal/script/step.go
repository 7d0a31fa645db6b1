// Package script parses and runs accumulator step sequences.
//
// A step is one operation ("add 8"), or a history action: undo, redo,
// value, begin [name], end, cancel, reset. Steps come from single lines
// typed into the shell or from script files in YAML, TOML or plain text.
package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/dshills/undocalc/internal/engine/history"
)

// History actions understood besides the arithmetic operations.
const (
	ActionUndo   = "undo"
	ActionRedo   = "redo"
	ActionValue  = "value"
	ActionBegin  = "begin"
	ActionEnd    = "end"
	ActionCancel = "cancel"
	ActionReset  = "reset"
)

// Parse errors.
var (
	ErrEmptyLine      = errors.New("empty line")
	ErrUnknownAction  = errors.New("unknown action")
	ErrMissingOperand = errors.New("missing operand")
	ErrBadOperand     = errors.New("invalid operand")
	ErrExtraArgs      = errors.New("unexpected arguments")
)

// Step is one scripted action.
type Step struct {
	Do      string  `yaml:"do" toml:"do"`
	Operand float64 `yaml:"operand,omitempty" toml:"operand,omitempty"`
	Name    string  `yaml:"name,omitempty" toml:"name,omitempty"`
}

// Operation returns the arithmetic operation of the step, if it is one.
func (s Step) Operation() (history.Operation, bool) {
	op, err := history.ParseOperation(s.Do)
	if err != nil {
		return 0, false
	}
	return op, true
}

// Validate checks that the action is known.
func (s Step) Validate() error {
	if _, ok := s.Operation(); ok {
		return nil
	}
	switch strings.ToLower(s.Do) {
	case ActionUndo, ActionRedo, ActionValue, ActionBegin, ActionEnd, ActionCancel, ActionReset:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, s.Do)
}

func (s Step) String() string {
	if op, ok := s.Operation(); ok {
		return fmt.Sprintf("%s %s", op, history.FormatValue(s.Operand))
	}
	action := strings.ToLower(s.Do)
	if action == ActionBegin && s.Name != "" {
		return action + " " + s.Name
	}
	return action
}

// ParseLine parses one line such as "add 8", "* 2" or "begin tax".
// Blank lines and lines starting with '#' return ErrEmptyLine.
func ParseLine(line string) (Step, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Step{}, ErrEmptyLine
	}

	fields := strings.Fields(line)
	action, args := strings.ToLower(fields[0]), fields[1:]

	if _, err := history.ParseOperation(action); err == nil {
		if len(args) == 0 {
			return Step{}, fmt.Errorf("%w for %s", ErrMissingOperand, action)
		}
		if len(args) > 1 {
			return Step{}, fmt.Errorf("%w: %s", ErrExtraArgs, strings.Join(args[1:], " "))
		}
		x, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q", ErrBadOperand, args[0])
		}
		return Step{Do: action, Operand: x}, nil
	}

	switch action {
	case ActionBegin:
		return Step{Do: action, Name: strings.Join(args, " ")}, nil
	case ActionUndo, ActionRedo, ActionValue, ActionEnd, ActionCancel, ActionReset:
		if len(args) > 0 {
			return Step{}, fmt.Errorf("%w: %s", ErrExtraArgs, strings.Join(args, " "))
		}
		return Step{Do: action}, nil
	}

	return Step{}, fmt.Errorf("%w: %q", ErrUnknownAction, fields[0])
}

// Apply performs one step on acc.
func Apply(acc *history.Accumulator, s Step) error {
	if op, ok := s.Operation(); ok {
		acc.Execute(op, s.Operand)
		return nil
	}

	switch strings.ToLower(s.Do) {
	case ActionUndo:
		acc.Undo()
	case ActionRedo:
		acc.Redo()
	case ActionValue:
	case ActionBegin:
		acc.BeginGroup(s.Name)
	case ActionEnd:
		acc.EndGroup()
	case ActionCancel:
		acc.CancelGroup()
	case ActionReset:
		acc.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, s.Do)
	}
	return nil
}

// TraceFunc receives the value after each step.
type TraceFunc func(index int, s Step, value float64)

// Run applies steps in order, stopping at the first invalid step.
// An open group is closed when the script ends.
func Run(acc *history.Accumulator, steps []Step, trace TraceFunc) error {
	for i, s := range steps {
		if err := Apply(acc, s); err != nil {
			return errors.Wrapf(err, "step %d", i+1)
		}
		if trace != nil {
			trace(i, s, acc.CurrentValue())
		}
	}
	acc.EndGroup()
	return nil
}
