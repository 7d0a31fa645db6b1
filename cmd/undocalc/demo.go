package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/undocalc/internal/engine/history"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Runs the add/sub/mul/div walk-through",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runDemo(cmd)
		},
	}
}

func runDemo(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	acc := history.New()

	acc.Execute(history.Add, 8)
	acc.Execute(history.Subtract, 3)
	acc.Execute(history.Multiply, 4)
	acc.Execute(history.Divide, 2)
	fmt.Fprintf(out, "Current Result: %.1f\n", acc.CurrentValue())

	acc.Undo()
	fmt.Fprintf(out, "After Undo: %.1f\n", acc.CurrentValue())

	acc.Redo()
	fmt.Fprintf(out, "After Redo: %.1f\n", acc.CurrentValue())
}
