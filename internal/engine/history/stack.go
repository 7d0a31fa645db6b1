package history

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Accumulator holds a running value and its undo/redo stacks.
type Accumulator struct {
	value float64

	// base is the value before the oldest retained undo entry.
	// It stays 0 unless the capacity policy evicted entries.
	base float64

	// evicted counts entries dropped by the capacity policy since the
	// last Reset. Checkpoints are positions relative to it.
	evicted int

	undoStack []*entry
	redoStack []*entry

	// Grouping state
	grouping  bool
	groupName string
	groupCmds []*Command

	// Configuration
	maxEntries int
	logger     *slog.Logger
	observer   Observer
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithMaxEntries caps the undo stack. n <= 0 keeps history unbounded.
func WithMaxEntries(n int) Option {
	return func(a *Accumulator) {
		if n < 0 {
			n = 0
		}
		a.maxEntries = n
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(a *Accumulator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver registers an observer notified after every Execute, Undo, Redo and Reset.
func WithObserver(o Observer) Option {
	return func(a *Accumulator) {
		a.observer = o
	}
}

// New creates an accumulator at 0 with empty histories.
func New(opts ...Option) *Accumulator {
	a := &Accumulator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CurrentValue returns the current value.
func (a *Accumulator) CurrentValue() float64 {
	return a.value
}

// Execute applies op with operand to the current value and records it.
// The redo stack is cleared.
func (a *Accumulator) Execute(op Operation, operand float64) {
	cmd := newCommand(op, operand)
	a.value = cmd.apply(a.value)
	a.redoStack = nil

	if a.grouping {
		a.groupCmds = append(a.groupCmds, cmd)
	} else {
		a.push(singleEntry(cmd))
	}

	a.logger.Debug("execute",
		"op", op.String(),
		"operand", operand,
		"prev", cmd.Prev,
		"value", a.value,
		"grouping", a.grouping)

	a.notify(Event{
		Kind:    EventExecute,
		Info:    CommandInfo{ID: cmd.ID, Description: cmd.Description(), Timestamp: cmd.Timestamp, Size: 1},
		Op:      op,
		Applied: true,
	})
}

// push adds an entry to the undo stack and enforces the capacity.
func (a *Accumulator) push(e *entry) {
	a.undoStack = append(a.undoStack, e)

	if a.maxEntries > 0 && len(a.undoStack) > a.maxEntries {
		a.evict(len(a.undoStack) - a.maxEntries)
	}
}

// evict drops the n oldest undo entries.
func (a *Accumulator) evict(n int) {
	a.base = a.undoStack[n].before()
	a.evicted += n
	clear(a.undoStack[:n])
	a.undoStack = a.undoStack[n:]
	a.logger.Debug("evicted history", "count", n, "base", a.base)
}

// Undo reverts the most recent entry. It does nothing when there is nothing to undo.
// An open group is closed first.
func (a *Accumulator) Undo() {
	a.EndGroup()

	if len(a.undoStack) == 0 {
		a.logger.Debug("undo skipped", "reason", "nothing to undo", "value", a.value)
		a.notify(Event{Kind: EventUndo})
		return
	}

	e := a.undoStack[len(a.undoStack)-1]
	a.undoStack[len(a.undoStack)-1] = nil
	a.undoStack = a.undoStack[:len(a.undoStack)-1]

	a.value = e.before()
	a.redoStack = append(a.redoStack, e)

	a.logger.Debug("undo", "entry", e.description(), "value", a.value)
	a.notify(Event{Kind: EventUndo, Info: e.info(), Applied: true})
}

// Redo re-applies the most recently undone entry forward from the current
// value. It does nothing when there is nothing to redo.
// An open group is closed first.
func (a *Accumulator) Redo() {
	a.EndGroup()

	if len(a.redoStack) == 0 {
		a.logger.Debug("redo skipped", "reason", "nothing to redo", "value", a.value)
		a.notify(Event{Kind: EventRedo})
		return
	}

	e := a.redoStack[len(a.redoStack)-1]
	a.redoStack[len(a.redoStack)-1] = nil
	a.redoStack = a.redoStack[:len(a.redoStack)-1]

	a.value = e.redo(a.value)
	a.push(e)

	a.logger.Debug("redo", "entry", e.description(), "value", a.value)
	a.notify(Event{Kind: EventRedo, Info: e.info(), Applied: true})
}

// CanUndo returns true if undo is available.
func (a *Accumulator) CanUndo() bool {
	return len(a.undoStack) > 0 || (a.grouping && len(a.groupCmds) > 0)
}

// CanRedo returns true if redo is available.
func (a *Accumulator) CanRedo() bool {
	return len(a.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (a *Accumulator) UndoCount() int {
	return len(a.undoStack)
}

// RedoCount returns the number of redo entries available.
func (a *Accumulator) RedoCount() int {
	return len(a.redoStack)
}

// UndoInfo returns info about the undo stack, oldest first.
func (a *Accumulator) UndoInfo() []CommandInfo {
	return infos(a.undoStack)
}

// RedoInfo returns info about the redo stack, oldest first.
// The last element is the next entry Redo would apply.
func (a *Accumulator) RedoInfo() []CommandInfo {
	return infos(a.redoStack)
}

func infos(stack []*entry) []CommandInfo {
	result := make([]CommandInfo, len(stack))
	for i, e := range stack {
		result[i] = e.info()
	}
	return result
}

// PeekUndo returns info about the next undo entry without removing it.
func (a *Accumulator) PeekUndo() (CommandInfo, bool) {
	if len(a.undoStack) == 0 {
		return CommandInfo{}, false
	}
	return a.undoStack[len(a.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo entry without removing it.
func (a *Accumulator) PeekRedo() (CommandInfo, bool) {
	if len(a.redoStack) == 0 {
		return CommandInfo{}, false
	}
	return a.redoStack[len(a.redoStack)-1].info(), true
}

// Replay recomputes the value by folding the undo stack (and any open
// group) over the base value. It always equals CurrentValue.
func (a *Accumulator) Replay() float64 {
	v := a.base
	for _, e := range a.undoStack {
		for _, c := range e.cmds {
			v = c.Op.Apply(v, c.Operand)
		}
	}
	for _, c := range a.groupCmds {
		v = c.Op.Apply(v, c.Operand)
	}
	return v
}

// Base returns the value the undo stack starts from. It is 0 unless
// entries were evicted by the capacity policy.
func (a *Accumulator) Base() float64 {
	return a.base
}

// Reset returns the accumulator to 0 with empty histories.
func (a *Accumulator) Reset() {
	a.value = 0
	a.base = 0
	a.evicted = 0
	a.undoStack = nil
	a.redoStack = nil
	a.grouping = false
	a.groupName = ""
	a.groupCmds = nil
	a.logger.Debug("reset")
	a.notify(Event{Kind: EventReset, Applied: true})
}

// SetMaxEntries changes the undo capacity. n <= 0 makes history unbounded.
// If the current stack is larger, oldest entries are removed.
func (a *Accumulator) SetMaxEntries(n int) {
	if n < 0 {
		n = 0
	}
	a.maxEntries = n

	if n > 0 && len(a.undoStack) > n {
		a.evict(len(a.undoStack) - n)
	}
}

// MaxEntries returns the undo capacity; 0 means unbounded.
func (a *Accumulator) MaxEntries() int {
	return a.maxEntries
}

func (a *Accumulator) notify(ev Event) {
	if a.observer == nil {
		return
	}
	ev.Value = a.value
	ev.UndoDepth = len(a.undoStack)
	ev.RedoDepth = len(a.redoStack)
	a.observer.Observe(ev)
}

func groupEntry(name string, cmds []*Command) *entry {
	return &entry{
		id:        uuid.New(),
		name:      name,
		cmds:      cmds,
		timestamp: time.Now(),
	}
}
