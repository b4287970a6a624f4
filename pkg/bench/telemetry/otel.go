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
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
)

// instrumentationScope names the tracer and meter of the sink.
const instrumentationScope = "github.com/AleutianAI/benchmarkify/pkg/bench/telemetry"

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrOTelInitFailed is returned when OpenTelemetry initialization fails.
	ErrOTelInitFailed = errors.New("opentelemetry initialization failed")

	// ErrInvalidOTelConfig is returned when the OTel configuration is invalid.
	ErrInvalidOTelConfig = errors.New("invalid opentelemetry configuration")
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// OTelConfig configures the OpenTelemetry sink.
//
// Thread Safety: Immutable after creation; safe for concurrent read access.
type OTelConfig struct {
	// ServiceName is the service name for telemetry.
	// Required.
	ServiceName string

	// ServiceVersion is the instrumentation version.
	// Optional.
	ServiceVersion string

	// TracerProvider is the tracer provider to use.
	// If nil, uses the global tracer provider.
	TracerProvider trace.TracerProvider

	// MeterProvider is the meter provider to use.
	// If nil, uses the global meter provider.
	MeterProvider metric.MeterProvider

	// TraceEnabled enables span creation.
	// Default: true.
	TraceEnabled bool

	// MetricsEnabled enables metric recording.
	// Default: true.
	MetricsEnabled bool
}

// DefaultOTelConfig returns a configuration with tracing and metrics on.
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    "benchmarkify",
		ServiceVersion: "1.0.0",
		TraceEnabled:   true,
		MetricsEnabled: true,
	}
}

// Validate checks that required fields are set.
func (c *OTelConfig) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service name is required")
	}
	return nil
}

// -----------------------------------------------------------------------------
// OpenTelemetry Sink
// -----------------------------------------------------------------------------

// OTelSink exports benchmark runs via OpenTelemetry.
//
// Description:
//
//	Spans form the tree benchmark.run > benchmark.suite > benchmark.case.
//	Skipped cases get no span; they are recorded as an event on the suite
//	span. Metrics are recorded when a case finishes, except the percent
//	gauge which is only known once the suite ranked its cases.
//
// Thread Safety: Safe for concurrent use.
//
// Example:
//
//	sink, err := telemetry.NewOTelSink(telemetry.DefaultOTelConfig())
//	if err != nil {
//	    return fmt.Errorf("create otel sink: %w", err)
//	}
//	defer sink.Close()
type OTelSink struct {
	config *OTelConfig
	tracer trace.Tracer
	meter  metric.Meter

	caseRPS         metric.Float64Histogram
	caseAvg         metric.Float64Histogram
	caseDuration    metric.Float64Histogram
	caseInvocations metric.Int64Counter
	caseErrors      metric.Int64Counter
	caseSkipped     metric.Int64Counter
	casePercent     metric.Float64Gauge
	runsTotal       metric.Int64Counter

	mu        sync.Mutex
	closed    bool
	runCtx    context.Context
	runSpan   trace.Span
	suiteCtx  map[string]context.Context
	suiteSpan map[string]trace.Span
	caseSpan  map[string]trace.Span
}

// NewOTelSink creates an OpenTelemetry sink.
//
// Inputs:
//   - config: Must not be nil. Providers default to the global ones.
//
// Outputs:
//   - *OTelSink: Never nil on success.
//   - error: ErrInvalidOTelConfig or ErrOTelInitFailed, joined with the cause.
//
// Limitations:
//   - Without configured providers, telemetry is discarded (no-op).
//   - Caller is responsible for shutting down providers.
func NewOTelSink(config *OTelConfig) (*OTelSink, error) {
	if config == nil {
		return nil, ErrInvalidOTelConfig
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidOTelConfig, err)
	}

	cfg := *config

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	sink := &OTelSink{
		config:    &cfg,
		tracer:    tp.Tracer(instrumentationScope, trace.WithInstrumentationVersion(cfg.ServiceVersion)),
		meter:     mp.Meter(instrumentationScope, metric.WithInstrumentationVersion(cfg.ServiceVersion)),
		suiteCtx:  make(map[string]context.Context),
		suiteSpan: make(map[string]trace.Span),
		caseSpan:  make(map[string]trace.Span),
	}

	if cfg.MetricsEnabled {
		if err := sink.initializeMetrics(); err != nil {
			return nil, errors.Join(ErrOTelInitFailed, err)
		}
	}

	return sink, nil
}

// initializeMetrics creates all metric instruments.
func (s *OTelSink) initializeMetrics() error {
	var err error

	s.caseRPS, err = s.meter.Float64Histogram(
		"benchmark.case.rps",
		metric.WithDescription("Invocations per second of a finished case"),
		metric.WithUnit("{invocation}/s"),
	)
	if err != nil {
		return err
	}

	s.caseAvg, err = s.meter.Float64Histogram(
		"benchmark.case.avg",
		metric.WithDescription("Mean time per invocation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	s.caseDuration, err = s.meter.Float64Histogram(
		"benchmark.case.duration",
		metric.WithDescription("Summed batch time of a case"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	s.caseInvocations, err = s.meter.Int64Counter(
		"benchmark.case.invocations",
		metric.WithDescription("Total invocations of benchmarked units"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return err
	}

	s.caseErrors, err = s.meter.Int64Counter(
		"benchmark.case.errors",
		metric.WithDescription("Cases that failed"),
		metric.WithUnit("{case}"),
	)
	if err != nil {
		return err
	}

	s.caseSkipped, err = s.meter.Int64Counter(
		"benchmark.case.skipped",
		metric.WithDescription("Cases that were skipped"),
		metric.WithUnit("{case}"),
	)
	if err != nil {
		return err
	}

	s.casePercent, err = s.meter.Float64Gauge(
		"benchmark.case.percent",
		metric.WithDescription("Percent delta against the suite baseline"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return err
	}

	s.runsTotal, err = s.meter.Int64Counter(
		"benchmark.runs",
		metric.WithDescription("Completed benchmark runs"),
		metric.WithUnit("{run}"),
	)
	return err
}

func caseKey(suite, name string) string {
	return suite + "\x00" + name
}

// RunStarted opens the run span.
func (s *OTelSink) RunStarted(ctx context.Context, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.runCtx = ctx
	if s.config.TraceEnabled {
		s.runCtx, s.runSpan = s.tracer.Start(ctx, "benchmark.run",
			trace.WithAttributes(
				attribute.String("benchmark.name", name),
				attribute.String("service.name", s.config.ServiceName),
			),
		)
	}
}

// SuiteStarted opens a suite span under the run span.
func (s *OTelSink) SuiteStarted(ctx context.Context, suite string, cases int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.config.TraceEnabled {
		return
	}

	parent := ctx
	if s.runCtx != nil {
		parent = s.runCtx
	}
	suiteCtx, span := s.tracer.Start(parent, "benchmark.suite",
		trace.WithAttributes(
			attribute.String("benchmark.suite", suite),
			attribute.Int("benchmark.cases", cases),
		),
	)
	s.suiteCtx[suite] = suiteCtx
	s.suiteSpan[suite] = span
}

// CaseStarted opens a case span under its suite span.
func (s *OTelSink) CaseStarted(ctx context.Context, suite, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.config.TraceEnabled {
		return
	}

	parent, ok := s.suiteCtx[suite]
	if !ok {
		parent = ctx
	}
	_, span := s.tracer.Start(parent, "benchmark.case",
		trace.WithAttributes(
			attribute.String("benchmark.suite", suite),
			attribute.String("benchmark.case", name),
		),
	)
	s.caseSpan[caseKey(suite, name)] = span
}

// CaseFinished closes the case span and records the case metrics.
func (s *OTelSink) CaseFinished(ctx context.Context, suite string, result bench.TestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("benchmark.suite", suite),
		attribute.String("benchmark.case", result.Name),
		attribute.Bool("benchmark.async", result.Async),
	}

	if s.config.TraceEnabled {
		key := caseKey(suite, result.Name)
		if span, ok := s.caseSpan[key]; ok {
			delete(s.caseSpan, key)
			switch {
			case result.Failed():
				span.RecordError(errors.New(*result.Error))
				span.SetStatus(codes.Error, *result.Error)
			case result.Stat != nil:
				span.SetAttributes(
					attribute.Int("benchmark.cycle", result.Stat.Cycle),
					attribute.Int("benchmark.count", result.Stat.Count),
					attribute.Float64("benchmark.rps", result.Stat.RPS),
					attribute.Float64("benchmark.avg", result.Stat.Avg),
				)
				span.SetStatus(codes.Ok, "")
			}
			span.End()
		} else if result.Skipped {
			if suiteSpan, ok := s.suiteSpan[suite]; ok {
				suiteSpan.AddEvent("case skipped", trace.WithAttributes(attrs...))
			}
		}
	}

	if !s.config.MetricsEnabled {
		return
	}
	opt := metric.WithAttributes(attrs...)
	switch {
	case result.Skipped:
		s.caseSkipped.Add(ctx, 1, opt)
	case result.Failed():
		s.caseErrors.Add(ctx, 1, opt)
	case result.Stat != nil:
		s.caseRPS.Record(ctx, result.Stat.RPS, opt)
		s.caseAvg.Record(ctx, result.Stat.Avg, opt)
		s.caseDuration.Record(ctx, result.Stat.Duration, opt)
		s.caseInvocations.Add(ctx, int64(result.Stat.Count), opt)
	}
}

// SuiteFinished records the ranked percents and closes the suite span.
func (s *OTelSink) SuiteFinished(ctx context.Context, report bench.SuiteReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.config.MetricsEnabled {
		for _, t := range report.Tests {
			if t.Stat == nil {
				continue
			}
			s.casePercent.Record(ctx, t.Stat.Percent, metric.WithAttributes(
				attribute.String("benchmark.suite", report.Name),
				attribute.String("benchmark.case", t.Name),
				attribute.Bool("benchmark.reference", t.Reference),
			))
		}
	}

	span, ok := s.suiteSpan[report.Name]
	if !ok {
		return
	}
	delete(s.suiteSpan, report.Name)
	delete(s.suiteCtx, report.Name)

	if fastest, ok := report.Fastest(); ok {
		span.SetAttributes(attribute.String("benchmark.fastest", fastest.Name))
	}
	if report.Failed() {
		span.SetStatus(codes.Error, "one or more cases failed")
	}
	span.End()
}

// RunFinished closes the run span.
func (s *OTelSink) RunFinished(ctx context.Context, report *bench.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.config.MetricsEnabled {
		s.runsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("benchmark.name", report.Name),
			attribute.Bool("benchmark.failed", report.Failed()),
		))
	}

	if s.runSpan == nil {
		return
	}
	s.runSpan.SetAttributes(
		attribute.Int("benchmark.suites", len(report.Suites)),
		attribute.Int64("benchmark.elapsed_ms", report.ElapsedMs),
	)
	if report.Failed() {
		s.runSpan.SetStatus(codes.Error, "one or more cases failed")
	}
	s.runSpan.End()
	s.runSpan = nil
	s.runCtx = nil
}

// Close ends any span left open by an aborted run and stops recording.
//
// Thread Safety: Safe for concurrent use. Idempotent.
func (s *OTelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	for key, span := range s.caseSpan {
		span.SetStatus(codes.Error, "aborted")
		span.End()
		delete(s.caseSpan, key)
	}
	for name, span := range s.suiteSpan {
		span.SetStatus(codes.Error, "aborted")
		span.End()
		delete(s.suiteSpan, name)
	}
	if s.runSpan != nil {
		s.runSpan.SetStatus(codes.Error, "aborted")
		s.runSpan.End()
		s.runSpan = nil
	}
	return nil
}

var _ bench.Sink = (*OTelSink)(nil)
