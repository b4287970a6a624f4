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
)

// Suite is an ordered group of competing cases.
//
// Description:
//
//	Cases run strictly one after another in registration order, with a
//	settle pause after each one. Once every case finished, the suite picks
//	the fastest case and the baseline (the reference case if there is one,
//	else the fastest) and computes the percent delta of every case against
//	the baseline.
//
// Thread Safety: Registration methods are safe for concurrent use until Run
// starts. Run must not be called concurrently; a second call is rejected.
type Suite struct {
	harness *Harness
	name    string
	config  Config
	logger  *slog.Logger

	mu     sync.Mutex
	cases  []*Case
	only   *Case
	ref    *Case
	err    error
	closed bool

	state  atomic.Int32
	report *SuiteReport
}

func newSuite(h *Harness, name string, cfg Config) *Suite {
	return &Suite{
		harness: h,
		name:    name,
		config:  cfg,
		logger:  h.logger.With(slog.String("suite", name)),
	}
}

// Name returns the suite name.
func (s *Suite) Name() string { return s.name }

// Config returns the defaults inherited by cases of the suite.
func (s *Suite) Config() Config { return s.config }

// Cases returns the registered cases in registration order.
func (s *Suite) Cases() []*Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Case, len(s.cases))
	copy(out, s.cases)
	return out
}

// Err returns the first registration error, if any.
func (s *Suite) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Report returns the suite report, or nil until Run completed.
func (s *Suite) Report() *SuiteReport {
	if suiteState(s.state.Load()) != suiteDone {
		return nil
	}
	return s.report
}

// -----------------------------------------------------------------------------
// Registration
// -----------------------------------------------------------------------------

// caseKind is the registration flavour of a case.
type caseKind int

const (
	kindPlain caseKind = iota
	kindOnly
	kindSkip
	kindRef
)

// Add registers a case. Options override the suite defaults for this case.
func (s *Suite) Add(name string, unit Unit, opts ...Option) *Suite {
	s.register(name, unit, opts, kindPlain)
	return s
}

// Only registers a case and makes it the only one that runs; every other
// case of the suite is skipped. If Only is called more than once, the last
// call wins.
func (s *Suite) Only(name string, unit Unit, opts ...Option) *Suite {
	s.register(name, unit, opts, kindOnly)
	return s
}

// Skip registers a case that is reported as skipped and never runs.
func (s *Suite) Skip(name string, unit Unit, opts ...Option) *Suite {
	s.register(name, unit, opts, kindSkip)
	return s
}

// Ref registers the reference case that other cases are compared against.
//
// A suite has at most one reference. A second Ref records
// ErrDuplicateReference and the case is not added.
func (s *Suite) Ref(name string, unit Unit, opts ...Option) *Suite {
	s.register(name, unit, opts, kindRef)
	return s
}

func (s *Suite) register(name string, unit Unit, opts []Option, kind caseKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		s.fail(fmt.Errorf("case %q: %w", name, ErrRegistrationClosed))
		return
	case !unit.valid():
		s.fail(fmt.Errorf("%w: case %q has no unit of work", ErrInvalidConfig, name))
		return
	case kind == kindRef && s.ref != nil:
		s.fail(fmt.Errorf("case %q: %w (%q)", name, ErrDuplicateReference, s.ref.name))
		return
	}

	c := newCase(s, name, unit, resolve(s.config, opts))
	switch kind {
	case kindOnly:
		s.only = c
	case kindSkip:
		c.skip = true
	case kindRef:
		c.reference = true
		s.ref = c
	}
	s.cases = append(s.cases, c)
}

// fail keeps the first registration error. Callers hold s.mu.
func (s *Suite) fail(err error) {
	s.logger.Warn("registration rejected", slog.Any("error", err))
	if s.err == nil {
		s.err = err
	}
}

// -----------------------------------------------------------------------------
// Execution
// -----------------------------------------------------------------------------

type suiteState int32

const (
	suiteIdle suiteState = iota
	suiteRunning
	suiteDone
	suiteFailed
)

// Run executes every case and returns the ranked suite report.
//
// Description:
//
//	Closes registration, applies the only policy, then runs the cases in
//	registration order. A case that fails with an ExecutionError is
//	recorded in the report and the suite moves on; any other error (a
//	cancelled ctx, a case that already ran) aborts the suite.
//
// Inputs:
//   - ctx: Cancellation aborts the suite at the next batch boundary or
//     settle pause.
//
// Outputs:
//   - *SuiteReport: Entries in registration order. Nil on error.
//   - error: The first registration error, ErrAlreadyRunning,
//     ErrAlreadyRan, or the error that aborted the suite.
func (s *Suite) Run(ctx context.Context) (*SuiteReport, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}
	if !s.state.CompareAndSwap(int32(suiteIdle), int32(suiteRunning)) {
		if suiteState(s.state.Load()) == suiteRunning {
			return nil, ErrAlreadyRunning
		}
		return nil, ErrAlreadyRan
	}

	s.mu.Lock()
	s.closed = true
	cases := make([]*Case, len(s.cases))
	copy(cases, s.cases)
	only := s.only
	s.mu.Unlock()

	if only != nil {
		for _, c := range cases {
			c.skip = c != only
		}
	}

	sink := s.harness.sink
	sink.SuiteStarted(ctx, s.name, len(cases))
	s.logger.Info("suite started", slog.Int("cases", len(cases)))

	results := make([]TestResult, 0, len(cases))
	for _, c := range cases {
		if c.skip {
			r := c.result()
			results = append(results, r)
			sink.CaseFinished(ctx, s.name, r)
			continue
		}

		sink.CaseStarted(ctx, s.name, c.name)
		err := c.Run(ctx)

		var execErr *ExecutionError
		if err != nil && !errors.As(err, &execErr) {
			s.state.Store(int32(suiteFailed))
			s.logger.Error("suite aborted", slog.String("case", c.name), slog.Any("error", err))
			return nil, err
		}
		if execErr != nil {
			s.logger.Warn("case failed", slog.String("case", c.name), slog.Any("error", execErr.Err))
		}

		if err := s.harness.pause(ctx); err != nil {
			s.state.Store(int32(suiteFailed))
			return nil, err
		}

		r := c.result()
		results = append(results, r)
		sink.CaseFinished(ctx, s.name, r)
	}

	rank(results)
	for i, c := range cases {
		if st := results[i].Stat; st != nil {
			c.stat.Percent = st.Percent
		}
	}

	s.report = &SuiteReport{Name: s.name, Tests: results}
	s.state.Store(int32(suiteDone))

	attrs := []any{slog.Int("cases", len(cases))}
	if fastest, ok := s.report.Fastest(); ok {
		attrs = append(attrs, slog.String("fastest", fastest.Name))
	}
	s.logger.Info("suite finished", attrs...)
	sink.SuiteFinished(ctx, *s.report)

	return s.report, nil
}

// rank flags the fastest entry and fills Percent against the baseline.
//
// Only entries with a Stat (neither skipped nor errored) take part. The
// fastest entry has the highest RPS; ties go to the earliest entry. The
// baseline is the reference entry if it has a Stat, else the fastest.
func rank(results []TestResult) {
	fastest, ref := -1, -1
	for i, r := range results {
		if r.Stat == nil {
			continue
		}
		if fastest < 0 || r.Stat.RPS > results[fastest].Stat.RPS {
			fastest = i
		}
		if r.Reference && ref < 0 {
			ref = i
		}
	}
	if fastest < 0 {
		return
	}
	results[fastest].Fastest = true

	base := fastest
	if ref >= 0 {
		base = ref
	}
	baseRPS := results[base].Stat.RPS

	for i := range results {
		st := results[i].Stat
		if st == nil {
			continue
		}
		if baseRPS > 0 {
			st.Percent = st.RPS/baseRPS*100 - 100
		} else {
			st.Percent = 0
		}
	}
}
