package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/undocalc/internal/app"
	"github.com/dshills/undocalc/internal/engine/history"
	"github.com/dshills/undocalc/internal/script"
	"github.com/dshills/undocalc/internal/watch"
)

type runFlags struct {
	watch bool
	trace bool
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [flags] <script>",
		Short: "Runs a step script",
		Long: `Runs a step script and prints the final value.

Scripts ending in .yaml, .yml or .toml hold a "steps" list such as
{do: add, operand: 8}. Any other file is read one step per line:

  add 8
  sub 3
  undo
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options()
			opts.LogOutput = cmd.ErrOrStderr()
			application, err := app.New(opts)
			if err != nil {
				return err
			}
			return runScript(cmd, application, args[0], f)
		},
	}
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Rerun the script whenever it changes")
	cmd.Flags().BoolVarP(&f.trace, "trace", "t", false, "Print the value after every step")
	return cmd
}

func runScript(cmd *cobra.Command, application *app.Application, path string, f *runFlags) error {
	out := cmd.OutOrStdout()
	log := app.WithComponent(application.Logger(), "run")

	if err := runOnce(out, application, path, f.trace); err != nil {
		if !f.watch {
			return err
		}
		fmt.Fprintf(out, "error: %v\n", err)
	}
	if !f.watch {
		return nil
	}

	w, err := watch.New(watch.WithLogger(app.WithComponent(application.Logger(), "watch")))
	if err != nil {
		return errors.Wrap(err, "starting watcher")
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return errors.Wrapf(err, "watching %s", path)
	}

	log.Info("watching script", "path", path)
	return w.Run(cmd.Context(), func(ev watch.Event) {
		log.Debug("script changed", "path", ev.Path, "op", ev.Op.String())
		fmt.Fprintln(out, "--")
		if err := runOnce(out, application, path, f.trace); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	})
}

// runOnce runs the script against a fresh accumulator.
func runOnce(out io.Writer, application *app.Application, path string, trace bool) error {
	steps, err := script.Load(path)
	if err != nil {
		return err
	}

	var tf script.TraceFunc
	if trace {
		tf = func(i int, s script.Step, v float64) {
			fmt.Fprintf(out, "%3d  %-12s %s\n", i+1, s.String(), history.FormatValue(v))
		}
	}

	acc := application.NewAccumulator()
	if err := script.Run(acc, steps, tf); err != nil {
		return err
	}
	fmt.Fprintln(out, history.FormatValue(acc.CurrentValue()))
	return nil
}
