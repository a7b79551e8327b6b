// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/treewalk/pkg/config"
	"github.com/AleutianAI/treewalk/pkg/logging"
	"github.com/AleutianAI/treewalk/pkg/telemetry"
	"github.com/AleutianAI/treewalk/pkg/traverse"
	"github.com/AleutianAI/treewalk/pkg/ux"
)

// usageError marks bad flags or arguments; main exits with status 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// app holds everything a subcommand needs once flags are resolved.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	flagOrder  string
	flagLimit  int
	flagLevel  string
	flagJSON   bool
	flagColor  string

	cfg       config.Config
	algorithm traverse.Algorithm
	runID     string
	logger    *logging.Logger
	base      *logging.Logger
	printer   *ux.Printer
	shutdown  func(context.Context) error
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "treewalk",
		Short: "Print the nodes of a tree in depth-first or breadth-first order",
		Long: `treewalk walks YAML documents, syntax trees and directories lazily.

Roots are printed first, each followed by its descendants (dfs), or all
roots first and then each root's level-order expansion (bfs).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/"+config.DefaultFile+")")
	flags.StringVarP(&a.flagOrder, "order", "o", "dfs", "traversal order: dfs or bfs")
	flags.IntVarP(&a.flagLimit, "limit", "n", 0, "stop after this many nodes (0 = no limit)")
	flags.StringVar(&a.flagLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.BoolVar(&a.flagJSON, "log-json", false, "log as JSON")
	flags.StringVar(&a.flagColor, "color", "auto", "color output: auto, always, never")

	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(
		newYAMLCmd(a),
		newSyntaxCmd(a),
		newDirCmd(a),
	)
	return root
}

// setup layers config file, environment and changed flags, then starts
// logging and telemetry.
func (a *app) setup(cmd *cobra.Command) (err error) {
	defer func() {
		if err != nil {
			_ = a.teardown(cmd.Context())
		}
	}()

	path, optional := a.configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return &usageError{err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("order") {
		cfg.Order = a.flagOrder
	}
	if flags.Changed("limit") {
		cfg.Limit = a.flagLimit
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flagLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = a.flagJSON
	}
	if flags.Changed("color") {
		cfg.Output.Color = a.flagColor
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		cfg.Watch.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if cfg.Watch.MetricsAddr != "" {
		cfg.Telemetry.MetricExporter = telemetry.ExporterPrometheus
	}

	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	a.cfg = cfg

	if a.algorithm, err = traverse.ParseAlgorithm(cfg.Order); err != nil {
		return &usageError{err: err}
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return &usageError{err: err}
	}
	a.runID = uuid.NewString()
	a.base = logging.New(logging.Config{
		Level:   level,
		JSON:    cfg.Log.JSON,
		Service: "treewalk",
		LogDir:  cfg.Log.Dir,
		Output:  a.errOut,
	})
	a.logger = a.base.With("run_id", a.runID)
	slog.SetDefault(a.logger.Slog())

	mode, err := ux.ParseColorMode(cfg.Output.Color)
	if err != nil {
		return &usageError{err: err}
	}
	a.printer = ux.NewPrinter(a.out, mode, cfg.Output.Indent)

	telemetryCfg := cfg.Telemetry
	telemetryCfg.Writer = a.errOut
	a.shutdown, err = telemetry.Init(cmd.Context(), telemetryCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	a.logger.Debug("configured",
		"order", a.algorithm.String(),
		"limit", cfg.Limit,
		"config", path,
		"trace_exporter", telemetryCfg.TraceExporter,
		"metric_exporter", telemetryCfg.MetricExporter)
	return nil
}

// run wraps a subcommand so logging and telemetry are flushed whether or
// not it fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		return errors.Join(err, a.teardown(cmd.Context()))
	}
}

func (a *app) teardown(ctx context.Context) error {
	var err error
	if a.shutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err = a.shutdown(shutdownCtx)
		a.shutdown = nil
	}
	if a.base != nil {
		if cerr := a.base.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
