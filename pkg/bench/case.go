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
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

type caseState int32

const (
	caseIdle caseState = iota
	caseRunning
	caseDone
	caseFailed
)

// Case is one benchmarked unit of work inside a Suite.
//
// Description:
//
//	A Case runs its unit in timed batches of Config.Cycles invocations,
//	appending one sample per batch, until it has at least MinSamples
//	invocations and has cycled for at least TimeBudget. Statistics are
//	computed once when the case finishes and never change afterwards.
//
// Thread Safety: A Case is driven by one goroutine. Accessors may be called
// from that goroutine (or after Run returned) only.
type Case struct {
	suite  *Suite
	name   string
	unit   Unit
	config Config
	clock  Clock
	logger *slog.Logger

	skip      bool
	reference bool

	state     atomic.Int32
	startedAt time.Time
	samples   []time.Duration
	stat      Stat
	err       *ExecutionError

	// signal carries the completion of the async invocation in flight.
	signal chan error
}

func newCase(s *Suite, name string, unit Unit, cfg Config) *Case {
	return &Case{
		suite:  s,
		name:   name,
		unit:   unit,
		config: cfg,
		clock:  s.harness.clock,
		logger: s.logger.With(slog.String("case", name)),
	}
}

// Name returns the case name.
func (c *Case) Name() string { return c.name }

// Suite returns the owning suite.
func (c *Case) Suite() *Suite { return c.suite }

// Async reports whether the case uses the asynchronous strategy.
func (c *Case) Async() bool { return c.unit.IsAsync() }

// Config returns the resolved sampling configuration.
func (c *Case) Config() Config { return c.config }

// Skipped reports whether the case is (or was forced to be) skipped.
func (c *Case) Skipped() bool { return c.skip }

// Reference reports whether the case is the suite's comparison anchor.
func (c *Case) Reference() bool { return c.reference }

// Running reports whether the case is cycling.
func (c *Case) Running() bool { return caseState(c.state.Load()) == caseRunning }

// Done reports whether the case finished and froze its statistics.
func (c *Case) Done() bool { return caseState(c.state.Load()) == caseDone }

// StartedAt returns when the case started cycling.
func (c *Case) StartedAt() time.Time { return c.startedAt }

// Stat returns the case statistics. Only meaningful once Done.
func (c *Case) Stat() Stat { return c.stat }

// Err returns the failure recorded for the case, if any.
func (c *Case) Err() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

// Samples returns a copy of the per-batch durations.
func (c *Case) Samples() []time.Duration {
	out := make([]time.Duration, len(c.samples))
	copy(out, c.samples)
	return out
}

// Run cycles the unit until the termination condition holds.
//
// Description:
//
//	Runs batches with the strategy matching the unit (sync or async),
//	yielding the processor between batches. After each batch the case
//	continues while Count < MinSamples or the elapsed wall-clock time is
//	below TimeBudget; the check happens after the batch, so at least one
//	batch always runs.
//
// Inputs:
//   - ctx: Observed between batches and while waiting for async
//     completions. Cancellation aborts the case with ctx.Err().
//
// Outputs:
//   - error: nil on success (Done() is true and Stat() is frozen),
//     *ExecutionError when the unit failed, ctx.Err() on cancellation,
//     ErrAlreadyRunning / ErrAlreadyRan on invalid state.
func (c *Case) Run(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(caseIdle), int32(caseRunning)) {
		if caseState(c.state.Load()) == caseRunning {
			return ErrAlreadyRunning
		}
		return ErrAlreadyRan
	}

	c.startedAt = c.clock.Now()
	c.samples = c.samples[:0]
	c.stat = Stat{}

	batch := c.syncBatch
	if c.unit.IsAsync() {
		c.signal = make(chan error, 1)
		batch = c.asyncBatch
	}

	for {
		if err := batch(ctx); err != nil {
			c.state.Store(int32(caseFailed))
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return ctxErr
			}
			c.err = &ExecutionError{Suite: c.suite.name, Case: c.name, Err: err}
			c.logger.Debug("case failed", slog.Int("cycle", c.stat.Cycle), slog.Any("error", err))
			return c.err
		}

		runtime.Gosched()
		if err := ctx.Err(); err != nil {
			c.state.Store(int32(caseFailed))
			return err
		}

		if !c.shouldContinue() {
			break
		}
	}

	c.finish()
	return nil
}

// shouldContinue is the termination condition: keep going while either the
// sample floor or the time budget is unmet.
func (c *Case) shouldContinue() bool {
	return c.stat.Count < c.config.MinSamples ||
		c.clock.Since(c.startedAt) < c.config.TimeBudget
}

// syncBatch calls the unit Cycles times back to back and records the batch.
func (c *Case) syncBatch(_ context.Context) (err error) {
	defer recoverUnit(&err)

	fn := c.unit.sync
	t0 := c.clock.Now()
	for i := c.config.Cycles; i > 0; i-- {
		if err := fn(); err != nil {
			return err
		}
	}
	c.record(c.clock.Since(t0))
	return nil
}

// asyncBatch chains Cycles invocations, each starting after the previous
// one signalled completion, and records the batch.
//
// Every invocation gets its own Done. Only its first call is delivered, so
// a repeated or late call can never stand in for the completion of a later
// invocation. The channel is drained before the next invocation starts and
// therefore never holds more than one value.
func (c *Case) asyncBatch(ctx context.Context) (err error) {
	defer recoverUnit(&err)

	fn := c.unit.async
	t0 := c.clock.Now()
	for i := c.config.Cycles; i > 0; i-- {
		fn(c.completion())
		select {
		case err := <-c.signal:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.record(c.clock.Since(t0))
	return nil
}

// completion returns the Done of one async invocation.
func (c *Case) completion() Done {
	var fired atomic.Bool
	return func(err error) {
		if fired.CompareAndSwap(false, true) {
			c.signal <- err
		}
	}
}

func (c *Case) record(d time.Duration) {
	c.samples = append(c.samples, d)
	c.stat.Count += c.config.Cycles
	c.stat.Cycle++
}

// finish freezes the statistics from the recorded samples.
//
// Whole seconds and nanosecond remainders are summed separately so that
// many small batches do not accumulate floating-point error.
func (c *Case) finish() {
	var secs, nanos int64
	for _, d := range c.samples {
		secs += int64(d / time.Second)
		nanos += int64(d % time.Second)
	}
	duration := float64(secs) + float64(nanos)/1e9

	c.stat.Duration = duration
	if c.stat.Count > 0 {
		c.stat.Avg = duration / float64(c.stat.Count)
	}
	if duration > 0 {
		c.stat.RPS = float64(c.stat.Count) / duration
	}

	c.state.Store(int32(caseDone))
	c.logger.Debug("case finished",
		slog.Int("cycle", c.stat.Cycle),
		slog.Int("count", c.stat.Count),
		slog.Float64("duration", c.stat.Duration),
		slog.Float64("rps", c.stat.RPS),
	)
}

// result builds the unranked report entry of the case.
func (c *Case) result() TestResult {
	r := TestResult{
		Name:      c.name,
		Reference: c.reference,
		Skipped:   c.skip,
		Async:     c.unit.IsAsync(),
	}
	switch {
	case c.skip:
	case c.err != nil:
		msg := c.err.Err.Error()
		r.Error = &msg
	case c.Done():
		stat := c.stat
		r.Stat = &stat
	}
	return r
}

// recoverUnit turns a panic raised by a unit into an error.
func recoverUnit(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r}
	}
}
