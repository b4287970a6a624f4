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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	h := New("defaults")

	assert.Equal(t, "defaults", h.Name())
	assert.Equal(t, NopSink{}, h.sink)
	assert.Equal(t, SystemClock{}, h.clock)
	assert.Equal(t, DefaultSettle, h.settle)
	assert.Equal(t, DefaultConfig(), h.Defaults())
}

func TestNew_NilOptionsRestoreDefaults(t *testing.T) {
	h := New("nil", WithSink(nil), WithLogger(nil), WithClock(nil), WithSettle(-time.Second), nil)

	assert.Equal(t, NopSink{}, h.sink)
	assert.NotNil(t, h.logger)
	assert.Equal(t, SystemClock{}, h.clock)
	assert.Zero(t, h.settle)
}

func TestHarness_RunAggregatesSuites(t *testing.T) {
	sink := &recordingSink{}
	clock := newStepClock(time.Millisecond)
	h := quietHarness(WithSink(sink), WithClock(clock), WithDefaults(fast...))

	h.CreateSuite("one").Add("a", Sync(noop))
	h.CreateSuite("two").Ref("b", Sync(noop)).Add("c", Async(func(done Done) { done(nil) }))

	report, err := h.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test", report.Name)
	require.Len(t, report.Suites, 2)
	assert.Equal(t, "one", report.Suites[0].Name)
	assert.Equal(t, "two", report.Suites[1].Name)
	assert.True(t, report.Suites[1].Tests[0].Reference)
	assert.True(t, report.Suites[1].Tests[1].Async)
	assert.False(t, report.Failed())

	assert.Greater(t, report.Timestamp, report.Started)
	assert.Positive(t, report.ElapsedMs)
	generated, err := time.Parse(GeneratedLayout, report.Generated)
	require.NoError(t, err)
	assert.Equal(t, report.Timestamp/1000, generated.Unix())

	assert.Equal(t, []string{
		"run:test",
		"suite:one:1", "start:one/a", "done:one/a", "end:one",
		"suite:two:2", "start:two/b", "done:two/b", "start:two/c", "done:two/c", "end:two",
		"finish:test",
	}, sink.events)
	assert.Same(t, report, sink.report)
}

func TestHarness_RunSelectedSuites(t *testing.T) {
	h := quietHarness(WithDefaults(fast...))
	h.CreateSuite("one").Add("a", Sync(noop))
	two := h.CreateSuite("two").Add("b", Sync(noop))

	report, err := h.Run(context.Background(), two)
	require.NoError(t, err)

	require.Len(t, report.Suites, 1)
	assert.Equal(t, "two", report.Suites[0].Name)
}

func TestHarness_Select(t *testing.T) {
	h := quietHarness()
	h.CreateSuite("a")
	h.CreateSuite("b")
	h.CreateSuite("c")

	all, err := h.Select()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	picked, err := h.Select("c", "a")
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "a", picked[0].Name())
	assert.Equal(t, "c", picked[1].Name())

	_, err = h.Select("a", "x", "y")
	require.ErrorIs(t, err, ErrUnknownSuite)
	assert.Contains(t, err.Error(), `"x"`)
	assert.Contains(t, err.Error(), `"y"`)
}

func TestHarness_RegistrationErrorsBlockRun(t *testing.T) {
	sink := &recordingSink{}
	h := quietHarness(WithSink(sink), WithDefaults(fast...))
	h.CreateSuite("one").Ref("a", Sync(noop)).Ref("b", Sync(noop))
	h.CreateSuite("two").Add("empty", Unit{})

	report, err := h.Run(context.Background())

	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrDuplicateReference)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Empty(t, sink.events)
}

func TestHarness_ForeignSuiteRejected(t *testing.T) {
	other := quietHarness().CreateSuite("other")

	_, err := quietHarness().Run(context.Background(), other)
	assert.ErrorIs(t, err, ErrUnknownSuite)
}

func TestHarness_RunTwiceIsRejected(t *testing.T) {
	h := quietHarness(WithDefaults(fast...))
	h.CreateSuite("s").Add("a", Sync(noop))

	_, err := h.Run(context.Background())
	require.NoError(t, err)

	_, err = h.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRan)
}

func TestHarness_CreateSuiteAfterRunIsDetached(t *testing.T) {
	h := quietHarness()
	_, err := h.Run(context.Background())
	require.NoError(t, err)

	late := h.CreateSuite("late")

	assert.ErrorIs(t, late.Err(), ErrRegistrationClosed)
	assert.Empty(t, h.Suites())
}

func TestHarness_AbortReturnsPartialReport(t *testing.T) {
	sink := &recordingSink{}
	h := quietHarness(WithSink(sink), WithDefaults(fast...))
	h.CreateSuite("one").Add("a", Sync(noop))
	h.CreateSuite("two").Add("stuck", Async(func(Done) {}))
	h.CreateSuite("three").Add("never", Sync(noop))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	report, err := h.Run(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, report)
	require.Len(t, report.Suites, 1)
	assert.Equal(t, "one", report.Suites[0].Name)
	assert.Equal(t, "finish:test", sink.events[len(sink.events)-1])
	assert.NotContains(t, sink.events, "suite:three:1")
}

func TestHarness_FailedCaseMarksReport(t *testing.T) {
	h := quietHarness(WithDefaults(fast...))
	h.CreateSuite("s").
		Add("ok", Sync(noop)).
		Add("bad", Sync(func() error { return errors.New("nope") }))

	report, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Failed())
}

func TestReport_JSONShape(t *testing.T) {
	h := quietHarness(WithDefaults(fast...))
	h.CreateSuite("s").
		Ref("ref", Sync(noop)).
		Skip("skipped", Sync(noop)).
		Add("bad", Sync(func() error { return errors.New("nope") }))

	report, err := h.Run(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"name", "suites", "timestamp", "generated", "started", "elapsedMs"} {
		assert.Contains(t, doc, key)
	}

	tests := doc["suites"].([]any)[0].(map[string]any)["tests"].([]any)
	require.Len(t, tests, 3)

	ref := tests[0].(map[string]any)
	assert.Nil(t, ref["error"])
	assert.Equal(t, true, ref["reference"])
	assert.Equal(t, true, ref["fastest"])
	stat := ref["stat"].(map[string]any)
	for _, key := range []string{"duration", "cycle", "count", "avg", "rps", "percent"} {
		assert.Contains(t, stat, key)
	}

	skipped := tests[1].(map[string]any)
	assert.Equal(t, true, skipped["skipped"])
	assert.Nil(t, skipped["stat"])

	bad := tests[2].(map[string]any)
	assert.Equal(t, "nope", bad["error"])
	assert.Nil(t, bad["stat"])
}

func TestMultiSink_FansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	h := quietHarness(WithSink(MultiSink{a, b, NopSink{}}), WithDefaults(fast...))
	h.CreateSuite("s").Add("x", Sync(noop))

	_, err := h.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, a.events)
	assert.Equal(t, a.events, b.events)
}
