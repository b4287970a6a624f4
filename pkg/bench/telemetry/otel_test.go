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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// -----------------------------------------------------------------------------
// Configuration Tests
// -----------------------------------------------------------------------------

func TestDefaultOTelConfig(t *testing.T) {
	config := DefaultOTelConfig()

	assert.Equal(t, "benchmarkify", config.ServiceName)
	assert.True(t, config.TraceEnabled)
	assert.True(t, config.MetricsEnabled)
	assert.NoError(t, config.Validate())
}

func TestNewOTelSink_RejectsInvalidConfig(t *testing.T) {
	_, err := NewOTelSink(nil)
	assert.ErrorIs(t, err, ErrInvalidOTelConfig)

	_, err = NewOTelSink(&OTelConfig{})
	assert.ErrorIs(t, err, ErrInvalidOTelConfig)
}

func TestNewOTelSink_GlobalProviders(t *testing.T) {
	sink, err := NewOTelSink(DefaultOTelConfig())
	require.NoError(t, err)
	require.NotNil(t, sink)
	assert.NoError(t, sink.Close())
}

// -----------------------------------------------------------------------------
// Sink Tests
// -----------------------------------------------------------------------------

type otelFixture struct {
	sink   *OTelSink
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

func newOTelFixture(t *testing.T) *otelFixture {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	config := DefaultOTelConfig()
	config.TracerProvider = tp
	config.MeterProvider = mp

	sink, err := NewOTelSink(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	return &otelFixture{sink: sink, spans: spans, reader: reader}
}

func (f *otelFixture) metrics(t *testing.T) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestOTelSink_SpanTree(t *testing.T) {
	f := newOTelFixture(t)
	runSample(t, f.sink)

	ended := f.spans.Ended()
	byName := make(map[string][]sdktrace.ReadOnlySpan)
	for _, s := range ended {
		byName[s.Name()] = append(byName[s.Name()], s)
	}

	require.Len(t, byName["benchmark.run"], 1)
	require.Len(t, byName["benchmark.suite"], 1)
	require.Len(t, byName["benchmark.case"], 3)

	run := byName["benchmark.run"][0]
	suite := byName["benchmark.suite"][0]
	assert.Equal(t, run.SpanContext().SpanID(), suite.Parent().SpanID())
	assert.Equal(t, codes.Error, run.Status().Code)

	for _, c := range byName["benchmark.case"] {
		assert.Equal(t, suite.SpanContext().SpanID(), c.Parent().SpanID())
	}

	broken := byName["benchmark.case"][2]
	assert.Equal(t, codes.Error, broken.Status().Code)
	assert.Equal(t, "broken", broken.Status().Description)

	var skippedEvent bool
	for _, e := range suite.Events() {
		if e.Name == "case skipped" {
			skippedEvent = true
		}
	}
	assert.True(t, skippedEvent)
}

func TestOTelSink_Metrics(t *testing.T) {
	f := newOTelFixture(t)
	report := runSample(t, f.sink)

	metrics := f.metrics(t)

	tests := report.Suites[0].Tests
	wantInvocations := int64(tests[0].Stat.Count + tests[1].Stat.Count)

	assert.Equal(t, wantInvocations, sumInt64(t, metrics["benchmark.case.invocations"]))
	assert.Equal(t, int64(1), sumInt64(t, metrics["benchmark.case.errors"]))
	assert.Equal(t, int64(1), sumInt64(t, metrics["benchmark.case.skipped"]))
	assert.Equal(t, int64(1), sumInt64(t, metrics["benchmark.runs"]))

	rps, ok := metrics["benchmark.case.rps"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, rps.DataPoints, 2)

	percent, ok := metrics["benchmark.case.percent"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	assert.Len(t, percent.DataPoints, 2)
}

func TestOTelSink_CloseEndsOpenSpans(t *testing.T) {
	f := newOTelFixture(t)
	ctx := context.Background()

	f.sink.RunStarted(ctx, "aborted")
	f.sink.SuiteStarted(ctx, "s", 1)
	f.sink.CaseStarted(ctx, "s", "stuck")

	require.NoError(t, f.sink.Close())
	require.NoError(t, f.sink.Close())

	ended := f.spans.Ended()
	require.Len(t, ended, 3)
	for _, s := range ended {
		assert.Equal(t, codes.Error, s.Status().Code)
	}

	f.sink.RunStarted(ctx, "ignored")
	assert.Empty(t, f.spans.Started()[3:])
}

func TestOTelSink_TracingDisabled(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	defer tp.Shutdown(context.Background())

	config := DefaultOTelConfig()
	config.TracerProvider = tp
	config.TraceEnabled = false
	config.MetricsEnabled = false

	sink, err := NewOTelSink(config)
	require.NoError(t, err)
	defer sink.Close()

	runSample(t, sink)
	assert.Empty(t, spans.Ended())
}
