// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
)

// runSample runs a small harness through sink: one suite with a reference,
// a plain case, a skipped case and a failing case.
func runSample(t *testing.T, sink bench.Sink) *bench.Report {
	t.Helper()

	h := bench.New("sample",
		bench.WithSink(sink),
		bench.WithSettle(0),
		bench.WithLogger(slog.New(slog.DiscardHandler)),
		bench.WithDefaults(bench.WithTimeBudget(0), bench.WithCycles(10), bench.WithMinSamples(0)),
	)
	h.CreateSuite("strings").
		Ref("plus", bench.Sync(func() error { return nil })).
		Add("builder", bench.Async(func(done bench.Done) { done(nil) })).
		Skip("fmt", bench.Sync(func() error { return nil })).
		Add("broken", bench.Sync(func() error { return errors.New("broken") }))

	report, err := h.Run(context.Background())
	require.NoError(t, err)
	return report
}
