package history

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOperation is returned when an operation name cannot be parsed.
var ErrUnknownOperation = errors.New("unknown operation")

// Operation identifies the arithmetic transform a Command applies.
type Operation int

const (
	// Add adds the operand to the value.
	Add Operation = iota
	// Subtract subtracts the operand from the value.
	Subtract
	// Multiply multiplies the value by the operand.
	Multiply
	// Divide divides the value by the operand. A zero operand leaves the
	// value unchanged.
	Divide
)

// Operations lists every operation kind in declaration order.
var Operations = []Operation{Add, Subtract, Multiply, Divide}

// String returns the canonical lower-case name of the operation.
func (op Operation) String() string {
	switch op {
	case Add:
		return "add"
	case Subtract:
		return "sub"
	case Multiply:
		return "mul"
	case Divide:
		return "div"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// Valid reports whether op is one of the four known kinds.
func (op Operation) Valid() bool {
	return op >= Add && op <= Divide
}

// Apply returns the result of applying op to v with operand x.
// Unknown kinds return v unchanged.
func (op Operation) Apply(v, x float64) float64 {
	switch op {
	case Add:
		return v + x
	case Subtract:
		return v - x
	case Multiply:
		return v * x
	case Divide:
		if x == 0 {
			return v
		}
		return v / x
	default:
		return v
	}
}

// ParseOperation parses an operation name or symbol.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "+", "plus":
		return Add, nil
	case "sub", "subtract", "-", "minus":
		return Subtract, nil
	case "mul", "multiply", "*", "x", "times":
		return Multiply, nil
	case "div", "divide", "/":
		return Divide, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}
