package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/undocalc/internal/app"
	"github.com/dshills/undocalc/internal/engine/history"
	"github.com/dshills/undocalc/internal/plugin/lua"
)

func newLuaCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lua <file>",
		Short: "Runs a Lua script against the accumulator",
		Long: `Runs a Lua script with the "calc" module loaded:

  calc.add(8); calc.sub(3); calc.undo()
  print(calc.value())
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options()
			opts.LogOutput = cmd.ErrOrStderr()
			application, err := app.New(opts)
			if err != nil {
				return err
			}
			return runLua(cmd, application, args[0])
		},
	}
}

func runLua(cmd *cobra.Command, application *app.Application, path string) error {
	acc := application.NewAccumulator()
	state := lua.NewState(acc,
		lua.WithExecutionTimeout(application.Config().Lua.Timeout),
		lua.WithOutput(cmd.OutOrStdout()),
	)
	defer state.Close()

	if err := state.DoFile(cmd.Context(), path); err != nil {
		return err
	}

	application.Logger().Debug("lua script finished",
		"path", path,
		"value", history.FormatValue(acc.CurrentValue()))
	return nil
}
