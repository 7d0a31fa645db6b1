// Package lua runs Lua scripts against an accumulator.
//
// Scripts see a global "calc" table:
//
//	calc.add(8)            -- 8
//	calc.mul(4)            -- 32
//	calc.undo()            -- 8
//	calc.group("tax", function()
//	    calc.mul(1.2)
//	    calc.sub(5)
//	end)
//	print(calc.value())
//
// Only the base, table, string and math libraries are opened; io, os,
// debug and package are not available. Each run is bounded by a timeout.
package lua
