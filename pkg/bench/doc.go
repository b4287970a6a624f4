// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bench provides a micro-benchmark harness for comparing competing
// implementations of the same operation.
//
// # Overview
//
// A Harness owns Suites, a Suite owns Cases. Each Case repeatedly invokes
// one unit of work in timed batches until both its minimum-sample floor
// and its time budget are satisfied, then freezes throughput statistics.
// The Suite ranks its cases against a reference case (or the fastest one)
// and reports the percent delta of every case.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────────────┐
//	│                              Harness                                     │
//	│   suites run one after another, report aggregated + timestamped          │
//	│                                                                          │
//	│  ┌───────────────────────────────┐   ┌───────────────────────────────┐  │
//	│  │            Suite               │   │            Suite               │  │
//	│  │ • skip / only / ref selection  │   │                                │  │
//	│  │ • cases run one at a time      │   │              ...               │  │
//	│  │ • settle pause after each case │   │                                │  │
//	│  │ • fastest / baseline / percent │   │                                │  │
//	│  │                                │   └───────────────────────────────┘  │
//	│  │  ┌──────────┐  ┌──────────┐    │                                      │
//	│  │  │  Case    │  │  Case    │    │        Sink (console, otel,          │
//	│  │  │ sync or  │  │  async   │    │        prometheus) observes          │
//	│  │  │ batches  │  │ batches  │    │        every event                   │
//	│  │  └──────────┘  └──────────┘    │                                      │
//	│  └───────────────────────────────┘                                      │
//	└─────────────────────────────────────────────────────────────────────────┘
//
// # Usage
//
//	h := bench.New("string building", bench.WithSink(ux.NewConsoleSink(os.Stdout)))
//	h.CreateSuite("concat", bench.WithTimeBudget(2*time.Second)).
//	    Ref("plus", bench.Sync(func() error { _ = a + b; return nil })).
//	    Add("builder", bench.Sync(buildWithBuilder)).
//	    Add("channel", bench.Async(func(done bench.Done) {
//	        go func() { done(nil) }()
//	    }))
//	report, err := h.Run(ctx)
//
// # Execution Modes
//
// Sync units are called back to back in a tight loop. Async units receive
// a Done callback and the next invocation only starts after the previous
// one called it, so an async case measures the throughput of a serial
// chain, never of concurrent operations.
//
// # Thread Safety
//
// Registration must complete before Run. Concurrent or repeated Run calls
// on the same Suite or Case are rejected with ErrAlreadyRunning or
// ErrAlreadyRan. Nothing inside a run executes concurrently, which is why
// the measured timings are not distorted by CPU contention.
package bench
