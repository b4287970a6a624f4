// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import "time"

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

const (
	// DefaultTimeBudget is the wall-clock budget of a case.
	DefaultTimeBudget = 5 * time.Second

	// DefaultCycles is the number of invocations per timed batch.
	DefaultCycles = 1000

	// DefaultMinSamples is the minimum number of invocations of a case.
	DefaultMinSamples = 5

	// DefaultSettle is the pause after each case, before its result is
	// reported, that lets lingering asynchronous work drain.
	DefaultSettle = 200 * time.Millisecond
)

// Config holds the sampling configuration of a case.
//
// Description:
//
//	A case keeps cycling while it has fewer than MinSamples invocations or
//	has run for less than TimeBudget. Both conditions are evaluated after
//	each batch, so at least one batch of Cycles invocations always runs.
//
// Thread Safety: Immutable once resolved for a case.
type Config struct {
	// TimeBudget is the minimum wall-clock time spent cycling.
	// Default: 5s
	TimeBudget time.Duration `json:"timeBudget" yaml:"time_budget"`

	// Cycles is the number of invocations per timed batch. Clamped to at
	// least 1.
	// Default: 1000
	Cycles int `json:"cycles" yaml:"cycles"`

	// MinSamples is the minimum total number of invocations.
	// Default: 5
	MinSamples int `json:"minSamples" yaml:"min_samples"`
}

// DefaultConfig returns the built-in sampling defaults.
func DefaultConfig() Config {
	return Config{
		TimeBudget: DefaultTimeBudget,
		Cycles:     DefaultCycles,
		MinSamples: DefaultMinSamples,
	}
}

// Option overrides one field of a Config for a suite, a case, or the
// harness defaults. Fields that no option touches are inherited.
type Option func(*overrides)

// overrides records which fields were set explicitly, so that an explicit
// zero is honoured instead of being mistaken for "inherit".
type overrides struct {
	timeBudget *time.Duration
	cycles     *int
	minSamples *int
}

// WithTimeBudget sets the time budget. Negative values clamp to zero.
func WithTimeBudget(d time.Duration) Option {
	return func(o *overrides) {
		d := max(d, 0)
		o.timeBudget = &d
	}
}

// WithCycles sets the invocations per batch. Values below 1 clamp to 1.
func WithCycles(n int) Option {
	return func(o *overrides) {
		n := max(n, 1)
		o.cycles = &n
	}
}

// WithMinSamples sets the minimum invocation count. Negative values clamp
// to zero.
func WithMinSamples(n int) Option {
	return func(o *overrides) {
		n := max(n, 0)
		o.minSamples = &n
	}
}

// WithConfig sets every field from cfg, clamping as the individual options do.
func WithConfig(cfg Config) Option {
	return func(o *overrides) {
		WithTimeBudget(cfg.TimeBudget)(o)
		WithCycles(cfg.Cycles)(o)
		WithMinSamples(cfg.MinSamples)(o)
	}
}

func collect(opts []Option) overrides {
	var o overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// resolve applies opts on top of parent.
func resolve(parent Config, opts []Option) Config {
	return collect(opts).apply(parent)
}

// resolveSuite is resolve for suite options: a suite that asks for a
// positive MinSamples without choosing Cycles runs batches of MinSamples
// invocations, so the floor is met by the first batch.
func resolveSuite(parent Config, opts []Option) Config {
	o := collect(opts)
	if o.cycles == nil && o.minSamples != nil && *o.minSamples > 0 {
		n := *o.minSamples
		o.cycles = &n
	}
	return o.apply(parent)
}

func (o overrides) apply(parent Config) Config {
	cfg := parent
	if o.timeBudget != nil {
		cfg.TimeBudget = *o.timeBudget
	}
	if o.cycles != nil {
		cfg.Cycles = *o.cycles
	}
	if o.minSamples != nil {
		cfg.MinSamples = *o.minSamples
	}
	return cfg.clamped()
}

// clamped enforces the non-negative policy on a Config built by hand.
func (c Config) clamped() Config {
	c.TimeBudget = max(c.TimeBudget, 0)
	c.Cycles = max(c.Cycles, 1)
	c.MinSamples = max(c.MinSamples, 0)
	return c
}
