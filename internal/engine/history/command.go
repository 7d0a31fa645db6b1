package history

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Command is one applied operation instance.
// It carries enough to undo (the snapshot) and redo (kind and operand) it.
type Command struct {
	ID      uuid.UUID
	Op      Operation
	Operand float64

	// Prev is the value the command was last applied to.
	Prev float64

	// Timestamp is when the command was created.
	Timestamp time.Time
}

func newCommand(op Operation, operand float64) *Command {
	return &Command{
		ID:        uuid.New(),
		Op:        op,
		Operand:   operand,
		Timestamp: time.Now(),
	}
}

// apply snapshots v and returns the transformed value.
func (c *Command) apply(v float64) float64 {
	c.Prev = v
	return c.Op.Apply(v, c.Operand)
}

// Description returns a short human-readable form such as "add 8".
func (c *Command) Description() string {
	return fmt.Sprintf("%s %s", c.Op, FormatValue(c.Operand))
}

// FormatValue formats a value the way history listings show it.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// CommandInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type CommandInfo struct {
	ID          uuid.UUID
	Description string
	Timestamp   time.Time
	Size        int // Number of commands in the entry; greater than one for groups
}

// entry is one undo unit: a single command or a closed group.
type entry struct {
	id        uuid.UUID
	name      string
	cmds      []*Command
	timestamp time.Time
}

func singleEntry(cmd *Command) *entry {
	return &entry{
		id:        cmd.ID,
		cmds:      []*Command{cmd},
		timestamp: cmd.Timestamp,
	}
}

// before returns the value prior to the entry's first command.
func (e *entry) before() float64 {
	return e.cmds[0].Prev
}

// redo re-applies every command forward from v.
func (e *entry) redo(v float64) float64 {
	for _, c := range e.cmds {
		v = c.apply(v)
	}
	return v
}

func (e *entry) description() string {
	if e.name != "" {
		return e.name
	}
	if len(e.cmds) == 1 {
		return e.cmds[0].Description()
	}
	return fmt.Sprintf("%d operations", len(e.cmds))
}

func (e *entry) info() CommandInfo {
	return CommandInfo{
		ID:          e.id,
		Description: e.description(),
		Timestamp:   e.timestamp,
		Size:        len(e.cmds),
	}
}
