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

import "context"

// Sink observes the progress of a harness run.
//
// Description:
//
//	A Sink renders or exports data the harness already computed; it never
//	feeds anything back. Methods are called from the goroutine running the
//	harness, in this order:
//
//	  RunStarted
//	    SuiteStarted
//	      CaseStarted / CaseFinished (skipped cases only get CaseFinished)
//	    SuiteFinished
//	  RunFinished
//
//	CaseFinished carries the case result before ranking, so Percent and
//	Fastest are only meaningful in SuiteFinished.
//
// Implementations embed NopSink to implement a subset.
type Sink interface {
	RunStarted(ctx context.Context, name string)
	SuiteStarted(ctx context.Context, suite string, cases int)
	CaseStarted(ctx context.Context, suite, name string)
	CaseFinished(ctx context.Context, suite string, result TestResult)
	SuiteFinished(ctx context.Context, report SuiteReport)
	RunFinished(ctx context.Context, report *Report)
}

// NopSink ignores every event.
type NopSink struct{}

func (NopSink) RunStarted(context.Context, string)               {}
func (NopSink) SuiteStarted(context.Context, string, int)        {}
func (NopSink) CaseStarted(context.Context, string, string)      {}
func (NopSink) CaseFinished(context.Context, string, TestResult) {}
func (NopSink) SuiteFinished(context.Context, SuiteReport)       {}
func (NopSink) RunFinished(context.Context, *Report)             {}

// MultiSink fans every event out to several sinks, in order.
type MultiSink []Sink

func (m MultiSink) RunStarted(ctx context.Context, name string) {
	for _, s := range m {
		s.RunStarted(ctx, name)
	}
}

func (m MultiSink) SuiteStarted(ctx context.Context, suite string, cases int) {
	for _, s := range m {
		s.SuiteStarted(ctx, suite, cases)
	}
}

func (m MultiSink) CaseStarted(ctx context.Context, suite, name string) {
	for _, s := range m {
		s.CaseStarted(ctx, suite, name)
	}
}

func (m MultiSink) CaseFinished(ctx context.Context, suite string, result TestResult) {
	for _, s := range m {
		s.CaseFinished(ctx, suite, result)
	}
}

func (m MultiSink) SuiteFinished(ctx context.Context, report SuiteReport) {
	for _, s := range m {
		s.SuiteFinished(ctx, report)
	}
}

func (m MultiSink) RunFinished(ctx context.Context, report *Report) {
	for _, s := range m {
		s.RunFinished(ctx, report)
	}
}
