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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "benchmarkify.yaml"

// Load reads and validates the configuration file at path.
//
// An empty path reads DefaultPath and falls back to DefaultConfig when
// that file does not exist. An explicit path must exist. Keys missing from
// the file keep their default values.
func Load(path string) (*BenchmarkifyConfig, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", bench.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// WriteDefault writes DefaultConfig to path, creating parent directories.
func WriteDefault(path string) error {
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Overrides carries the command line flags the user set explicitly.
//
// A nil field leaves the file value untouched.
type Overrides struct {
	Suites       []string
	TimeBudget   *time.Duration
	Cycles       *int
	MinSamples   *int
	Settle       *time.Duration
	Format       *string
	Path         *string
	Personality  *string
	Spinner      *bool
	ShowPlatform *bool
	LogLevel     *string
	LogExport    *string
	Traces       *string
	Metrics      *string
	PromTextfile *string
}

// ApplyOverrides copies the set flags into cfg and validates the result.
func ApplyOverrides(cfg *BenchmarkifyConfig, o Overrides) error {
	if len(o.Suites) > 0 {
		cfg.Suites = o.Suites
	}
	setIf(&cfg.Bench.TimeBudget, o.TimeBudget)
	setIf(&cfg.Bench.Cycles, o.Cycles)
	setIf(&cfg.Bench.MinSamples, o.MinSamples)
	setIf(&cfg.Bench.Settle, o.Settle)
	setIf(&cfg.Output.Format, o.Format)
	setIf(&cfg.Output.Path, o.Path)
	setIf(&cfg.Output.Personality, o.Personality)
	setIf(&cfg.Output.Spinner, o.Spinner)
	setIf(&cfg.Output.ShowPlatform, o.ShowPlatform)
	setIf(&cfg.Logging.Level, o.LogLevel)
	setIf(&cfg.Logging.Export, o.LogExport)
	setIf(&cfg.Telemetry.Traces, o.Traces)
	setIf(&cfg.Telemetry.Metrics, o.Metrics)
	setIf(&cfg.Telemetry.PromTextfile, o.PromTextfile)

	if cfg.Output.Format != "" {
		cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	}
	return cfg.Validate()
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// expandPath replaces a leading ~ with the home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
