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

// -----------------------------------------------------------------------------
// Results
// -----------------------------------------------------------------------------

// Stat holds the frozen statistics of a finished case.
//
// Thread Safety: Safe for concurrent read access after the case finished.
type Stat struct {
	// Duration is the summed batch time in seconds.
	Duration float64 `json:"duration" yaml:"duration"`

	// Cycle is the number of timed batches.
	Cycle int `json:"cycle" yaml:"cycle"`

	// Count is the total number of invocations (Cycle × cycles per batch).
	Count int `json:"count" yaml:"count"`

	// Avg is the mean time per invocation in seconds.
	Avg float64 `json:"avg" yaml:"avg"`

	// RPS is the number of invocations per second.
	RPS float64 `json:"rps" yaml:"rps"`

	// Percent is the delta against the suite baseline, set by the suite.
	Percent float64 `json:"percent" yaml:"percent"`
}

// TestResult is the report entry of one case.
//
// Skipped and errored cases carry a nil Stat.
type TestResult struct {
	Name      string  `json:"name" yaml:"name"`
	Error     *string `json:"error" yaml:"error"`
	Fastest   bool    `json:"fastest" yaml:"fastest"`
	Reference bool    `json:"reference" yaml:"reference"`
	Skipped   bool    `json:"skipped" yaml:"skipped"`
	Async     bool    `json:"async" yaml:"async"`
	Stat      *Stat   `json:"stat" yaml:"stat"`
}

// Failed reports whether the case errored.
func (r TestResult) Failed() bool {
	return r.Error != nil
}

// SuiteReport is the report of one suite, in registration order.
type SuiteReport struct {
	Name  string       `json:"name" yaml:"name"`
	Tests []TestResult `json:"tests" yaml:"tests"`
}

// Failed reports whether any case of the suite errored.
func (s SuiteReport) Failed() bool {
	for _, t := range s.Tests {
		if t.Failed() {
			return true
		}
	}
	return false
}

// Fastest returns the entry flagged fastest, if any.
func (s SuiteReport) Fastest() (TestResult, bool) {
	for _, t := range s.Tests {
		if t.Fastest {
			return t, true
		}
	}
	return TestResult{}, false
}

// Report aggregates the suite reports of one harness run.
type Report struct {
	// Name is the harness name.
	Name string `json:"name" yaml:"name"`

	// Suites holds one entry per executed suite, in execution order.
	Suites []SuiteReport `json:"suites" yaml:"suites"`

	// Timestamp is the end of the run in Unix milliseconds.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	// Generated is the end of the run as a human-readable string.
	Generated string `json:"generated" yaml:"generated"`

	// Started is the start of the run in Unix milliseconds.
	Started int64 `json:"started" yaml:"started"`

	// ElapsedMs is the wall-clock duration of the run.
	ElapsedMs int64 `json:"elapsedMs" yaml:"elapsed_ms"`
}

// Failed reports whether any case of any suite errored.
func (r *Report) Failed() bool {
	for _, s := range r.Suites {
		if s.Failed() {
			return true
		}
	}
	return false
}
