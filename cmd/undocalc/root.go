package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/undocalc/internal/app"
)

// levelValue is a pflag.Value accepting only known log levels.
type levelValue string

var _ pflag.Value = (*levelValue)(nil)

func (l *levelValue) String() string { return string(*l) }

func (l *levelValue) Set(s string) error {
	s = strings.ToLower(s)
	switch s {
	case "debug", "info", "warn", "error":
		*l = levelValue(s)
		return nil
	}
	return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s)
}

func (l *levelValue) Type() string { return "level" }

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   levelValue
	logFormat  string
	maxEntries int
}

func (g *globalFlags) options() app.Options {
	opts := app.Options{
		ConfigPath: g.configPath,
		LogLevel:   string(g.logLevel),
		LogFormat:  g.logFormat,
	}
	if g.maxEntries >= 0 {
		maxEntries := g.maxEntries
		opts.MaxEntries = &maxEntries
	}
	return opts
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "undocalc",
		Short: "Undocalc - an accumulator calculator with undo and redo",
		Long: `Undocalc applies add, subtract, multiply and divide to a running value
and keeps every step so it can be undone and redone.

Run "undocalc repl" for an interactive shell, "undocalc run" for step
scripts, or "undocalc lua" to drive the accumulator from Lua.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Path to configuration file (.toml, .yaml)")
	flags.Var(&g.logLevel, "log-level", "Log level (debug, info, warn, error)")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format (text, json)")
	flags.IntVar(&g.maxEntries, "max-entries", -1, "Maximum undo entries (0 for unbounded)")

	root.AddCommand(
		newDemoCmd(),
		newReplCmd(g),
		newRunCmd(g),
		newLuaCmd(g),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Shows build information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Undocalc %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}
