// Package history provides the undoable arithmetic accumulator.
//
// The accumulator keeps a single running float64 value together with two
// stacks of applied commands. Key concepts:
//
// # Operations
//
// An Operation is one of Add, Subtract, Multiply or Divide. The kind alone
// determines the transform; Divide by zero leaves the value unchanged.
//
// # Commands
//
// A Command records one applied operation: its kind, its operand and the
// value it was applied to. Undo restores that snapshot instead of computing
// an inverse, so multiply-by-zero and divide-by-zero undo exactly.
//
// # Undo and Redo Stacks
//
// The Accumulator type manages the undo and redo stacks:
//
//	acc := New()
//
//	acc.Execute(Add, 8)
//	acc.Execute(Multiply, 4)
//
//	acc.Undo() // back to 8
//	acc.Redo() // forward to 32 again
//
// Executing a new operation clears the redo stack. Redo re-applies the
// command forward from the current value using its stored operand.
//
// # Grouping
//
// Several executions can be recorded as a single undo unit:
//
//	acc.BeginGroup("tax")
//	acc.Execute(Multiply, 1.2)
//	acc.Execute(Subtract, 5)
//	acc.EndGroup()
//
// Now both operations undo together with one Undo.
//
// An Accumulator is not safe for concurrent use.
package history
