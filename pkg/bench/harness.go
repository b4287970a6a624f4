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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// GeneratedLayout is the layout of Report.Generated.
const GeneratedLayout = time.RFC1123Z

// Harness is the top-level entry point: it owns suites, runs them one after
// another and aggregates their reports.
//
// Thread Safety: CreateSuite is safe for concurrent use until Run starts.
// A Harness runs once.
type Harness struct {
	name     string
	sink     Sink
	logger   *slog.Logger
	clock    Clock
	settle   time.Duration
	defaults Config

	mu     sync.Mutex
	suites []*Suite
	closed bool

	state atomic.Int32
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithSink sets the sink that observes the run. Nil restores NopSink.
func WithSink(s Sink) HarnessOption {
	return func(h *Harness) {
		if s == nil {
			s = NopSink{}
		}
		h.sink = s
	}
}

// WithLogger sets the logger. Nil restores slog.Default().
func WithLogger(l *slog.Logger) HarnessOption {
	return func(h *Harness) {
		if l == nil {
			l = slog.Default()
		}
		h.logger = l
	}
}

// WithClock sets the clock used for timing and timestamps.
func WithClock(c Clock) HarnessOption {
	return func(h *Harness) {
		if c != nil {
			h.clock = c
		}
	}
}

// WithSettle sets the pause after each case. Zero disables it.
func WithSettle(d time.Duration) HarnessOption {
	return func(h *Harness) {
		h.settle = max(d, 0)
	}
}

// WithDefaults overrides the built-in sampling defaults inherited by every
// suite of the harness.
func WithDefaults(opts ...Option) HarnessOption {
	return func(h *Harness) {
		h.defaults = resolve(h.defaults, opts)
	}
}

// New creates a Harness.
//
// Description:
//
//	Defaults: NopSink, slog.Default(), the system clock, DefaultSettle and
//	DefaultConfig() for suites that do not override them.
//
// Example:
//
//	h := bench.New("hashing",
//	    bench.WithSink(sink),
//	    bench.WithDefaults(bench.WithTimeBudget(time.Second)),
//	)
func New(name string, opts ...HarnessOption) *Harness {
	h := &Harness{
		name:     name,
		sink:     NopSink{},
		logger:   slog.Default(),
		clock:    SystemClock{},
		settle:   DefaultSettle,
		defaults: DefaultConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.logger = h.logger.With(slog.String("harness", name))
	return h
}

// Name returns the harness name.
func (h *Harness) Name() string { return h.name }

// Defaults returns the sampling defaults inherited by new suites.
func (h *Harness) Defaults() Config { return h.defaults }

// CreateSuite registers a new suite. Options override the harness defaults
// for the suite and are inherited by its cases. A positive WithMinSamples
// given without WithCycles also sets the suite's cycles to that value.
//
// A suite created after Run started is returned detached: it is not run
// and its Err reports ErrRegistrationClosed.
func (h *Harness) CreateSuite(name string, opts ...Option) *Suite {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := newSuite(h, name, resolveSuite(h.defaults, opts))
	if h.closed {
		s.err = fmt.Errorf("suite %q: %w", name, ErrRegistrationClosed)
		h.logger.Warn("registration rejected", slog.Any("error", s.err))
		return s
	}
	h.suites = append(h.suites, s)
	return s
}

// Suites returns the registered suites in registration order.
func (h *Harness) Suites() []*Suite {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Suite, len(h.suites))
	copy(out, h.suites)
	return out
}

// Select returns the registered suites whose names are listed, in
// registration order. Without names it returns every suite. Unknown names
// are reported together, each wrapping ErrUnknownSuite.
func (h *Harness) Select(names ...string) ([]*Suite, error) {
	suites := h.Suites()
	if len(names) == 0 {
		return suites, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = false
	}

	var out []*Suite
	for _, s := range suites {
		if _, ok := wanted[s.name]; ok {
			wanted[s.name] = true
			out = append(out, s)
		}
	}

	var errs []error
	for _, n := range names {
		if !wanted[n] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownSuite, n))
			wanted[n] = true
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Run executes suites strictly one after another.
//
// Description:
//
//	Runs the given suites, or every registered suite when none is given.
//	Registration errors of the selected suites are checked before anything
//	runs and returned joined. RunFinished is emitted even when the run
//	aborts, carrying the suites completed so far.
//
// Inputs:
//   - ctx: Cancellation aborts the run; ctx.Err() is returned.
//   - suites: Suites of this harness. Foreign suites yield ErrUnknownSuite.
//
// Outputs:
//   - *Report: The aggregated report. On abort, the partial report.
//   - error: nil, a registration/orchestration error, or ctx.Err().
func (h *Harness) Run(ctx context.Context, suites ...*Suite) (*Report, error) {
	if !h.state.CompareAndSwap(int32(suiteIdle), int32(suiteRunning)) {
		if suiteState(h.state.Load()) == suiteRunning {
			return nil, ErrAlreadyRunning
		}
		return nil, ErrAlreadyRan
	}

	h.mu.Lock()
	h.closed = true
	if len(suites) == 0 {
		suites = make([]*Suite, len(h.suites))
		copy(suites, h.suites)
	}
	h.mu.Unlock()

	var errs []error
	for _, s := range suites {
		if s == nil || s.harness != h {
			errs = append(errs, ErrUnknownSuite)
			continue
		}
		if err := s.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		h.state.Store(int32(suiteFailed))
		return nil, errors.Join(errs...)
	}

	start := h.clock.Now()
	report := &Report{
		Name:    h.name,
		Suites:  make([]SuiteReport, 0, len(suites)),
		Started: start.UnixMilli(),
	}

	h.sink.RunStarted(ctx, h.name)
	h.logger.Info("benchmark started", slog.Int("suites", len(suites)))

	var runErr error
	for _, s := range suites {
		sr, err := s.Run(ctx)
		if err != nil {
			runErr = err
			break
		}
		report.Suites = append(report.Suites, *sr)
	}

	end := h.clock.Now()
	report.Timestamp = end.UnixMilli()
	report.Generated = end.Format(GeneratedLayout)
	report.ElapsedMs = h.clock.Since(start).Milliseconds()

	if runErr != nil {
		h.state.Store(int32(suiteFailed))
		h.logger.Error("benchmark aborted", slog.Any("error", runErr))
	} else {
		h.state.Store(int32(suiteDone))
		h.logger.Info("benchmark finished",
			slog.Int64("elapsed_ms", report.ElapsedMs),
			slog.Bool("failed", report.Failed()),
		)
	}
	h.sink.RunFinished(ctx, report)

	return report, runErr
}

// pause waits for the settle duration or until ctx is done.
func (h *Harness) pause(ctx context.Context) error {
	if h.settle <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(h.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
