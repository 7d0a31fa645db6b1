package history

// EventKind identifies what happened to the accumulator.
type EventKind int

const (
	// EventExecute follows every Execute.
	EventExecute EventKind = iota
	// EventUndo follows every Undo, including no-op ones.
	EventUndo
	// EventRedo follows every Redo, including no-op ones.
	EventRedo
	// EventReset follows Reset.
	EventReset
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventExecute:
		return "execute"
	case EventUndo:
		return "undo"
	case EventRedo:
		return "redo"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event describes the accumulator state after a change.
type Event struct {
	Kind EventKind

	// Info describes the entry that moved. Zero for no-op undo/redo.
	Info CommandInfo

	// Op is set for EventExecute only.
	Op Operation

	// Applied is false when Undo or Redo found an empty stack.
	Applied bool

	Value     float64
	UndoDepth int
	RedoDepth int
}

// Observer receives accumulator events.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
