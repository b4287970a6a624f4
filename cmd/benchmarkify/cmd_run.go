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
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/benchmarkify/cmd/benchmarkify/config"
	"github.com/AleutianAI/benchmarkify/cmd/benchmarkify/suites"
	"github.com/AleutianAI/benchmarkify/pkg/bench"
	"github.com/AleutianAI/benchmarkify/pkg/bench/platform"
	"github.com/AleutianAI/benchmarkify/pkg/bench/telemetry"
	"github.com/AleutianAI/benchmarkify/pkg/logging"
	"github.com/AleutianAI/benchmarkify/pkg/ux"
)

// errRunFailed marks a run that completed with at least one failed case.
var errRunFailed = errors.New("one or more benchmark cases failed")

// shutdownTimeout bounds the telemetry flush after the run.
const shutdownTimeout = 10 * time.Second

// runBenchmarks is the run command.
func runBenchmarks(cmd *cobra.Command, f *flags, args []string) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if err := config.ApplyOverrides(cfg, f.overrides(cmd, args)); err != nil {
		return err
	}
	if cfg.Output.Personality != "" {
		ux.SetPersonalityLevel(ux.PersonalityLevel(cfg.Output.Personality))
	}
	ux.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	_, err = execute(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	return err
}

// execute runs the configured suites and writes every requested output.
//
// Description:
//
//	The console table goes to stdout, unless a json or yaml report is
//	written to stdout, in which case the console moves to stderr. Sinks
//	are the console, the Prometheus sink when a textfile or the
//	prometheus metric exporter is configured, and the OTel sink when a
//	trace or metric exporter is configured.
//
// Outputs:
//   - *bench.Report: The report, partial when the run aborted.
//   - error: errRunFailed when a case failed, or the abort cause.
func execute(ctx context.Context, cfg *config.BenchmarkifyConfig, stdout, stderr io.Writer) (*bench.Report, error) {
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return nil, err
	}
	defer logger.Close()

	runID := uuid.NewString()
	log := logger.With("run_id", runID)

	console := stdout
	if cfg.Output.Format != config.FormatText && cfg.Output.Path == "" {
		console = stderr
	}

	consoleOpts := []ux.ConsoleOption{ux.WithLevel(ux.GetPersonality().Level)}
	if !cfg.Output.Spinner {
		consoleOpts = append(consoleOpts, ux.WithoutSpinner())
	}
	consoleSink := ux.NewConsoleSink(console, consoleOpts...)
	sinks := bench.MultiSink{consoleSink}

	var registry *prometheus.Registry
	if cfg.Telemetry.PromTextfile != "" || cfg.Telemetry.Metrics == telemetry.ExporterPrometheus {
		registry = prometheus.NewRegistry()
		sinks = append(sinks, telemetry.NewPromSink(registry))
	}

	var providers *telemetry.Providers
	if cfg.Telemetry.Traces != telemetry.ExporterNone || cfg.Telemetry.Metrics != telemetry.ExporterNone {
		setup := telemetry.DefaultSetupConfig()
		setup.ServiceVersion = version
		setup.TraceExporter = cfg.Telemetry.Traces
		setup.MetricExporter = cfg.Telemetry.Metrics
		setup.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
		setup.OTLPInsecure = cfg.Telemetry.OTLPInsecure
		setup.Output = console
		if registry != nil {
			setup.Registerer = registry
		}

		providers, err = telemetry.Setup(ctx, setup)
		if err != nil {
			return nil, fmt.Errorf("setup telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				log.Warn("telemetry shutdown failed", "error", err)
			}
		}()

		otelSink, err := telemetry.NewOTelSink(providers.SinkConfig(setup.ServiceName, version))
		if err != nil {
			return nil, fmt.Errorf("create otel sink: %w", err)
		}
		defer otelSink.Close()
		sinks = append(sinks, otelSink)
	}

	h := bench.New(cfg.Name,
		bench.WithSink(sinks),
		bench.WithLogger(log.Slog()),
		bench.WithSettle(cfg.Bench.Settle),
		bench.WithDefaults(cfg.BenchOptions()...),
	)
	if _, err := suites.Register(h, cfg.Suites); err != nil {
		return nil, err
	}

	var info *platform.Info
	if cfg.Output.ShowPlatform {
		collected, err := platform.Collect(ctx)
		if err != nil {
			log.Warn("platform probe incomplete", "error", err)
		}
		info = &collected
	}
	consoleSink.PrintHeader(cfg.Name, info)

	log.Info("run starting", "suites", len(h.Suites()))
	report, runErr := h.Run(ctx)

	if report != nil && cfg.Output.Format != config.FormatText {
		if err := writeReport(stdout, cfg.Output.Path, cfg.Output.Format, report); err != nil {
			return report, errors.Join(runErr, err)
		}
		if cfg.Output.Path != "" {
			ux.Success("Report written to " + cfg.Output.Path)
		}
	}

	if registry != nil && cfg.Telemetry.PromTextfile != "" {
		if err := telemetry.WriteTextfile(cfg.Telemetry.PromTextfile, registry); err != nil {
			return report, errors.Join(runErr, fmt.Errorf("write prometheus textfile: %w", err))
		}
	}

	if runErr != nil {
		return report, runErr
	}
	if report.Failed() {
		return report, errRunFailed
	}
	log.Info("run finished", "elapsed_ms", report.ElapsedMs)
	return report, nil
}

// newLogger builds the diagnostic logger from the logging section.
func newLogger(cfg *config.BenchmarkifyConfig, stderr io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bench.ErrInvalidConfig, err)
	}
	lc := logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "benchmarkify",
		JSON:    cfg.Logging.JSON,
		Output:  stderr,
	}
	if cfg.Logging.Export != "" {
		exp, err := logging.OpenFileExporter(cfg.Logging.Export)
		if err != nil {
			return nil, err
		}
		lc.Exporter = exp
	}
	return logging.New(lc), nil
}
