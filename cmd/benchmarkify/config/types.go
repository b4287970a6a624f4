// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
)

// Output formats of the run command.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// configValidate is the validator instance for configuration structs.
var configValidate = validator.New()

// BenchmarkifyConfig is the content of benchmarkify.yaml.
//
// # Description
//
// Every section is optional: a missing file or a missing key keeps the
// value of DefaultConfig. Command line flags override the file through
// ApplyOverrides.
//
// # Example
//
//	name: nightly
//	suites: [hashing, encoding]
//	bench:
//	  time_budget: 2s
//	  cycles: 500
//	  min_samples: 5
//	  settle: 200ms
//	output:
//	  format: json
//	  path: reports/nightly.json
//	telemetry:
//	  traces: otlp
//	  otlp_endpoint: collector:4317
type BenchmarkifyConfig struct {
	// Name is the harness name printed in the header and the report.
	Name string `yaml:"name" validate:"required"`

	// Suites restricts the run to the named built-in suites. Empty runs all.
	Suites []string `yaml:"suites,omitempty"`

	Bench     BenchConfig     `yaml:"bench"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BenchConfig holds the harness defaults inherited by every suite.
type BenchConfig struct {
	TimeBudget time.Duration `yaml:"time_budget" validate:"gte=0"`
	Cycles     int           `yaml:"cycles" validate:"gte=1"`
	MinSamples int           `yaml:"min_samples" validate:"gte=0"`

	// Settle is the pause between two cases.
	Settle time.Duration `yaml:"settle" validate:"gte=0"`
}

// OutputConfig selects how the report is presented.
type OutputConfig struct {
	// Format is "text" (console table only), "json" or "yaml".
	Format string `yaml:"format" validate:"oneof=text json yaml"`

	// Path receives the json or yaml report. Empty writes to stdout.
	Path string `yaml:"path,omitempty"`

	// Personality is the console verbosity: full, standard, minimal or machine.
	// Empty detects it from the environment.
	Personality string `yaml:"personality,omitempty" validate:"omitempty,oneof=full standard minimal machine"`

	Spinner      bool `yaml:"spinner"`
	ShowPlatform bool `yaml:"show_platform"`
}

// LoggingConfig configures the diagnostic log on stderr.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`

	// Export appends one plain line per log record to this file.
	Export string `yaml:"export,omitempty"`
}

// TelemetryConfig selects the exporters of the run.
type TelemetryConfig struct {
	// Traces is "none", "stdout" or "otlp".
	Traces string `yaml:"traces" validate:"oneof=none stdout otlp"`

	// Metrics is "none", "stdout" or "prometheus".
	Metrics string `yaml:"metrics" validate:"oneof=none stdout prometheus"`

	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" validate:"required_if=Traces otlp"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`

	// PromTextfile receives the Prometheus text exposition of the run.
	PromTextfile string `yaml:"prom_textfile,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() BenchmarkifyConfig {
	defaults := bench.DefaultConfig()
	return BenchmarkifyConfig{
		Name: "benchmarkify",
		Bench: BenchConfig{
			TimeBudget: defaults.TimeBudget,
			Cycles:     defaults.Cycles,
			MinSamples: defaults.MinSamples,
			Settle:     bench.DefaultSettle,
		},
		Output: OutputConfig{
			Format:       FormatText,
			Spinner:      true,
			ShowPlatform: true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Telemetry: TelemetryConfig{
			Traces:       "none",
			Metrics:      "none",
			OTLPEndpoint: "localhost:4317",
			OTLPInsecure: true,
		},
	}
}

// Validate checks the struct tags.
//
// Failures wrap bench.ErrInvalidConfig and name every offending field.
func (c *BenchmarkifyConfig) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Join(bench.ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", bench.ErrInvalidConfig, strings.Join(msgs, "; "))
}

// describe renders one validation failure with the yaml path of the field.
func describe(fe validator.FieldError) string {
	path := yamlPath(fe.StructNamespace())
	switch fe.Tag() {
	case "required", "required_if":
		return path + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", path, fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must be >= %s", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", path, fe.Tag())
	}
}

var yamlKeys = map[string]string{
	"BenchmarkifyConfig": "",
	"Bench":              "bench",
	"Output":             "output",
	"Logging":            "logging",
	"Telemetry":          "telemetry",
	"Name":               "name",
	"TimeBudget":         "time_budget",
	"Cycles":             "cycles",
	"MinSamples":         "min_samples",
	"Settle":             "settle",
	"Format":             "format",
	"Personality":        "personality",
	"Level":              "level",
	"Traces":             "traces",
	"Metrics":            "metrics",
	"OTLPEndpoint":       "otlp_endpoint",
}

// yamlPath maps "BenchmarkifyConfig.Bench.Cycles" to "bench.cycles".
func yamlPath(namespace string) string {
	var parts []string
	for _, p := range strings.Split(namespace, ".") {
		key, ok := yamlKeys[p]
		if !ok {
			key = p
		}
		if key != "" {
			parts = append(parts, key)
		}
	}
	return strings.Join(parts, ".")
}

// BenchOptions converts the bench section to harness defaults.
func (c *BenchmarkifyConfig) BenchOptions() []bench.Option {
	return []bench.Option{
		bench.WithTimeBudget(c.Bench.TimeBudget),
		bench.WithCycles(c.Bench.Cycles),
		bench.WithMinSamples(c.Bench.MinSamples),
	}
}
