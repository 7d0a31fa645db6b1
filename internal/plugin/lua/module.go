package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undocalc/internal/engine/history"
)

// ModuleName is the global table scripts use.
const ModuleName = "calc"

func (s *State) installModule() {
	mod := s.L.SetFuncs(s.L.NewTable(), map[string]lua.LGFunction{
		"add":      s.operation(history.Add),
		"sub":      s.operation(history.Subtract),
		"mul":      s.operation(history.Multiply),
		"div":      s.operation(history.Divide),
		"execute":  s.execute,
		"undo":     s.undo,
		"redo":     s.redo,
		"value":    s.value,
		"can_undo": s.canUndo,
		"can_redo": s.canRedo,
		"reset":    s.reset,
		"group":    s.group,
		"history":  s.history,
	})
	s.L.SetGlobal(ModuleName, mod)
}

// pushValue pushes the current value and returns the result count.
func (s *State) pushValue(L *lua.LState) int {
	L.Push(lua.LNumber(s.acc.CurrentValue()))
	return 1
}

func (s *State) operation(op history.Operation) lua.LGFunction {
	return func(L *lua.LState) int {
		s.acc.Execute(op, float64(L.CheckNumber(1)))
		return s.pushValue(L)
	}
}

// execute(op, x) with op given by name or symbol.
func (s *State) execute(L *lua.LState) int {
	op, err := history.ParseOperation(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	s.acc.Execute(op, float64(L.CheckNumber(2)))
	return s.pushValue(L)
}

func (s *State) undo(L *lua.LState) int {
	s.acc.Undo()
	return s.pushValue(L)
}

func (s *State) redo(L *lua.LState) int {
	s.acc.Redo()
	return s.pushValue(L)
}

func (s *State) value(L *lua.LState) int {
	return s.pushValue(L)
}

func (s *State) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(s.acc.CanUndo()))
	return 1
}

func (s *State) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(s.acc.CanRedo()))
	return 1
}

func (s *State) reset(L *lua.LState) int {
	s.acc.Reset()
	return s.pushValue(L)
}

// group(name, fn) records everything fn executes as one undo unit.
// If fn raises an error the group is rolled back and the error re-raised.
func (s *State) group(L *lua.LState) int {
	name := L.OptString(1, "")
	fn := L.CheckFunction(2)

	err := s.acc.Transaction(name, func() error {
		L.Push(fn)
		return L.PCall(0, 0, nil)
	})
	if err != nil {
		L.RaiseError("group %q: %s", name, err.Error())
		return 0
	}
	return s.pushValue(L)
}

// history() returns the undo stack descriptions, oldest first.
func (s *State) history(L *lua.LState) int {
	tbl := L.NewTable()
	for _, info := range s.acc.UndoInfo() {
		tbl.Append(lua.LString(info.Description))
	}
	L.Push(tbl)
	return 1
}
