package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/undocalc/internal/app"
	"github.com/dshills/undocalc/internal/repl"
)

func newReplCmd(g *globalFlags) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Starts the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options()
			opts.MetricsAddr = metricsAddr
			opts.LogOutput = cmd.ErrOrStderr()
			return runRepl(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address")
	return cmd
}

func runRepl(cmd *cobra.Command, opts app.Options) error {
	application, err := app.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Shutdown(ctx)
	}()

	if _, err := application.StartMetrics(); err != nil && !errors.Is(err, app.ErrMetricsDisabled) {
		return err
	}

	cfg := application.Config()
	shell := repl.New(application.NewAccumulator(), repl.Config{
		Prompt:      cfg.REPL.Prompt,
		HistoryFile: cfg.REPL.HistoryFile,
	}, app.WithComponent(application.Logger(), "repl"))
	shell.SetOutput(cmd.OutOrStdout())
	defer shell.Close()

	return shell.Run(cmd.Context())
}
