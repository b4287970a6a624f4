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
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// stepClock advances by step on every Now call, so every batch lasts
// exactly one step and the elapsed time after k batches is (k+1) steps.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{
		now:  time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		step: step,
	}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *stepClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(t)
}

// recordingSink records every event as a short string.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	report *Report
}

func (r *recordingSink) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordingSink) RunStarted(_ context.Context, name string) {
	r.add("run:%s", name)
}

func (r *recordingSink) SuiteStarted(_ context.Context, suite string, cases int) {
	r.add("suite:%s:%d", suite, cases)
}

func (r *recordingSink) CaseStarted(_ context.Context, suite, name string) {
	r.add("start:%s/%s", suite, name)
}

func (r *recordingSink) CaseFinished(_ context.Context, suite string, result TestResult) {
	switch {
	case result.Skipped:
		r.add("skip:%s/%s", suite, result.Name)
	case result.Failed():
		r.add("fail:%s/%s", suite, result.Name)
	default:
		r.add("done:%s/%s", suite, result.Name)
	}
}

func (r *recordingSink) SuiteFinished(_ context.Context, report SuiteReport) {
	r.add("end:%s", report.Name)
}

func (r *recordingSink) RunFinished(_ context.Context, report *Report) {
	r.add("finish:%s", report.Name)
	r.mu.Lock()
	r.report = report
	r.mu.Unlock()
}

// quietHarness builds a harness with no settle pause and a discarded log.
func quietHarness(opts ...HarnessOption) *Harness {
	base := []HarnessOption{
		WithSettle(0),
		WithLogger(slog.New(slog.DiscardHandler)),
	}
	return New("test", append(base, opts...)...)
}

// singleCase registers one case on a fresh quiet harness and returns it.
func singleCase(clock Clock, unit Unit, opts ...Option) *Case {
	h := quietHarness(WithClock(clock))
	return h.CreateSuite("suite").Add("case", unit, opts...).Cases()[0]
}

func noop() error { return nil }
