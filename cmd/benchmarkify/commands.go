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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/benchmarkify/cmd/benchmarkify/config"
	"github.com/AleutianAI/benchmarkify/pkg/ux"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// flags holds the values bound to the command line.
type flags struct {
	configPath   string
	suites       []string
	timeBudget   time.Duration
	cycles       int
	minSamples   int
	settle       time.Duration
	format       string
	output       string
	personality  string
	noSpinner    bool
	noPlatform   bool
	logLevel     string
	logExport    string
	traces       string
	metrics      string
	promTextfile string

	platformFormat string
}

// newRootCmd builds the command tree.
//
// Each call returns a fresh tree with its own flag values, so tests can
// execute commands in isolation.
func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "benchmarkify",
		Short: "Run micro-benchmark suites and rank their cases",
		Long: `benchmarkify runs registered benchmark suites case by case, measures
invocations per second and ranks every case against a reference.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if f.personality != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(f.personality))
			} else {
				ux.InitPersonality()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&f.personality, "personality", "",
		"Output verbosity: full, standard, minimal or machine (default: auto)")

	// --- Run ---
	runCmd := &cobra.Command{
		Use:   "run [suite...]",
		Short: "Run the built-in suites (all of them by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmarks(cmd, f, args)
		},
	}
	runFlags := runCmd.Flags()
	runFlags.StringVarP(&f.configPath, "config", "c", "", "Config file (default: ./"+config.DefaultPath+" when present)")
	runFlags.StringSliceVarP(&f.suites, "suite", "s", nil, "Suites to run, repeatable")
	runFlags.DurationVarP(&f.timeBudget, "time", "t", 0, "Time budget per case")
	runFlags.IntVar(&f.cycles, "cycles", 0, "Invocations per timed batch")
	runFlags.IntVar(&f.minSamples, "min-samples", 0, "Minimum invocations per case")
	runFlags.DurationVar(&f.settle, "settle", 0, "Pause between cases")
	runFlags.StringVarP(&f.format, "format", "f", "", "Report format: text, json or yaml")
	runFlags.StringVarP(&f.output, "output", "o", "", "Write the json or yaml report to this file")
	runFlags.BoolVar(&f.noSpinner, "no-spinner", false, "Disable the progress spinner")
	runFlags.BoolVar(&f.noPlatform, "no-platform", false, "Do not print the platform block")
	runFlags.StringVar(&f.logLevel, "log-level", "", "Diagnostic log level: debug, info, warn or error")
	runFlags.StringVar(&f.logExport, "log-export", "", "Append diagnostic log lines to this file")
	runFlags.StringVar(&f.traces, "traces", "", "Trace exporter: none, stdout or otlp")
	runFlags.StringVar(&f.metrics, "metrics", "", "Metric exporter: none, stdout or prometheus")
	runFlags.StringVar(&f.promTextfile, "prom-textfile", "", "Write Prometheus metrics in text format to this file")

	// --- Info ---
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the built-in suites",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	platformCmd := &cobra.Command{
		Use:   "platform",
		Short: "Print the platform the benchmarks run on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlatform(cmd, f.platformFormat)
		},
	}
	platformCmd.Flags().StringVarP(&f.platformFormat, "format", "f", config.FormatText, "Output format: text, json or yaml")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run:   runVersion,
	}

	rootCmd.AddCommand(runCmd, listCmd, platformCmd, initCmd, versionCmd)
	return rootCmd
}

// overrides collects the flags the user set on cmd.
func (f *flags) overrides(cmd *cobra.Command, args []string) config.Overrides {
	changed := cmd.Flags().Changed
	var o config.Overrides

	o.Suites = append(append(o.Suites, f.suites...), args...)
	if changed("time") {
		o.TimeBudget = &f.timeBudget
	}
	if changed("cycles") {
		o.Cycles = &f.cycles
	}
	if changed("min-samples") {
		o.MinSamples = &f.minSamples
	}
	if changed("settle") {
		o.Settle = &f.settle
	}
	if changed("format") {
		o.Format = &f.format
	}
	if changed("output") {
		o.Path = &f.output
	}
	if f.personality != "" {
		level := string(ux.ParsePersonalityLevel(f.personality))
		o.Personality = &level
	}
	if changed("no-spinner") {
		spinner := !f.noSpinner
		o.Spinner = &spinner
	}
	if changed("no-platform") {
		show := !f.noPlatform
		o.ShowPlatform = &show
	}
	if changed("log-level") {
		o.LogLevel = &f.logLevel
	}
	if changed("log-export") {
		o.LogExport = &f.logExport
	}
	if changed("traces") {
		o.Traces = &f.traces
	}
	if changed("metrics") {
		o.Metrics = &f.metrics
	}
	if changed("prom-textfile") {
		o.PromTextfile = &f.promTextfile
	}
	return o
}
