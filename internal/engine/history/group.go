package history

// BeginGroup starts a command group.
// Executions while grouping are combined into a single undo unit.
func (a *Accumulator) BeginGroup(name string) {
	if a.grouping {
		// Already grouping, ignore nested calls
		return
	}

	a.grouping = true
	a.groupName = name
	a.groupCmds = nil
}

// EndGroup finishes a command group.
// An empty group records nothing.
func (a *Accumulator) EndGroup() {
	if !a.grouping {
		return
	}

	a.grouping = false
	cmds := a.groupCmds
	a.groupCmds = nil

	if len(cmds) == 0 {
		return
	}

	e := groupEntry(a.groupName, cmds)
	a.push(e)
	a.logger.Debug("group recorded", "name", e.name, "size", len(cmds), "value", a.value)
}

// CancelGroup rolls the value back to before the group and drops its commands.
func (a *Accumulator) CancelGroup() {
	if !a.grouping {
		return
	}

	if len(a.groupCmds) > 0 {
		a.value = a.groupCmds[0].Prev
	}
	a.logger.Debug("group cancelled", "name", a.groupName, "size", len(a.groupCmds), "value", a.value)

	a.grouping = false
	a.groupName = ""
	a.groupCmds = nil
}

// IsGrouping returns true if a group is open.
func (a *Accumulator) IsGrouping() bool {
	return a.grouping
}

// GroupScope provides a convenient way to group executions using defer.
// Usage:
//
//	func applyTax(acc *Accumulator) {
//	    defer acc.GroupScope("tax").End()
//	    acc.Execute(Multiply, 1.2)
//	    acc.Execute(Subtract, 5)
//	}
type GroupScope struct {
	acc    *Accumulator
	active bool
}

// GroupScope starts a new group scope.
func (a *Accumulator) GroupScope(name string) *GroupScope {
	a.BeginGroup(name)
	return &GroupScope{acc: a, active: true}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.acc.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope, rolling back its executions.
func (g *GroupScope) Cancel() {
	if g.active {
		g.acc.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn within a group.
// If fn returns an error the group is cancelled and the error returned.
// Inside an already open group, fn simply joins it.
func (a *Accumulator) Transaction(name string, fn func() error) error {
	if a.grouping {
		return fn()
	}

	a.BeginGroup(name)
	if err := fn(); err != nil {
		a.CancelGroup()
		return err
	}
	a.EndGroup()
	return nil
}

// Checkpoint represents a point in history that can be returned to.
// It records the absolute history position, so it stays valid when the
// capacity policy evicts older entries.
type Checkpoint struct {
	undoDepth int
	position  int
}

// Depth returns the undo depth at the time the checkpoint was created.
func (cp Checkpoint) Depth() int {
	return cp.undoDepth
}

// CreateCheckpoint creates a checkpoint at the current history position.
// An open group is closed first.
func (a *Accumulator) CreateCheckpoint() Checkpoint {
	a.EndGroup()
	return Checkpoint{
		undoDepth: len(a.undoStack),
		position:  a.evicted + len(a.undoStack),
	}
}

// depthOf converts a checkpoint into a depth of the current undo stack.
// It is negative when the checkpoint position has been evicted.
func (a *Accumulator) depthOf(cp Checkpoint) int {
	return cp.position - a.evicted
}

// CheckpointEvicted reports whether the history at cp was dropped by the
// capacity policy, so UndoToCheckpoint can only reach the oldest retained value.
func (a *Accumulator) CheckpointEvicted(cp Checkpoint) bool {
	return a.depthOf(cp) < 0
}

// UndoToCheckpoint undoes all entries recorded since the checkpoint.
// If the checkpoint was evicted it undoes everything retained.
func (a *Accumulator) UndoToCheckpoint(cp Checkpoint) {
	a.EndGroup()
	target := max(a.depthOf(cp), 0)
	for len(a.undoStack) > target {
		a.Undo()
	}
}

// RedoToCheckpoint redoes entries until the checkpoint depth is reached
// or the redo stack runs out.
func (a *Accumulator) RedoToCheckpoint(cp Checkpoint) {
	a.EndGroup()
	target := a.depthOf(cp)
	for len(a.undoStack) < target && len(a.redoStack) > 0 {
		a.Redo()
	}
}
