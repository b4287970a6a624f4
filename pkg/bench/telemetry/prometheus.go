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
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
)

// =============================================================================
// Prometheus Metrics for Benchmark Runs
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "benchmarkify"

// Case status label values.
const (
	statusOK      = "ok"
	statusError   = "error"
	statusSkipped = "skipped"
)

// PromSink publishes benchmark results as Prometheus metrics.
//
// # Description
//
// Gauges hold the latest value per suite and case, so a scrape or a
// textfile export after the run shows the final ranking. Counters
// accumulate across runs that share the registry.
//
// # Fields
//
//   - CasesTotal: Counter of finished cases by suite and status
//   - Invocations: Counter of unit invocations by suite and case
//   - RPS: Gauge of invocations per second by suite and case
//   - AvgSeconds: Gauge of mean time per invocation by suite and case
//   - Percent: Gauge of delta against the suite baseline by suite and case
//   - Fastest: Gauge set to 1 for the fastest case of each suite, else 0
//   - RunTimestamp: Gauge of the end of the last run (unix seconds)
//   - RunElapsed: Gauge of the wall-clock duration of the last run
//
// # Thread Safety
//
// All operations are thread-safe via Prometheus's internal locking.
type PromSink struct {
	bench.NopSink

	CasesTotal   *prometheus.CounterVec
	Invocations  *prometheus.CounterVec
	RPS          *prometheus.GaugeVec
	AvgSeconds   *prometheus.GaugeVec
	Percent      *prometheus.GaugeVec
	Fastest      *prometheus.GaugeVec
	RunTimestamp prometheus.Gauge
	RunElapsed   prometheus.Gauge
}

// NewPromSink creates the metrics and registers them on reg.
//
// # Description
//
// A nil reg leaves the metrics unregistered, which is useful when only the
// sink's fields are read. Registering twice on the same registry panics,
// as with any promauto metric.
//
// # Examples
//
//	reg := prometheus.NewRegistry()
//	sink := telemetry.NewPromSink(reg)
func NewPromSink(reg prometheus.Registerer) *PromSink {
	factory := promauto.With(reg)

	return &PromSink{
		CasesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "case",
			Name:      "finished_total",
			Help:      "Finished benchmark cases by suite and status",
		}, []string{"suite", "status"}),

		Invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "case",
			Name:      "invocations_total",
			Help:      "Invocations of benchmarked units",
		}, []string{"suite", "case"}),

		RPS: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "case",
			Name:      "rps",
			Help:      "Invocations per second of the last run of a case",
		}, []string{"suite", "case", "async"}),

		AvgSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "case",
			Name:      "avg_seconds",
			Help:      "Mean time per invocation of the last run of a case",
		}, []string{"suite", "case"}),

		Percent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "case",
			Name:      "percent",
			Help:      "Percent delta against the suite baseline",
		}, []string{"suite", "case", "reference"}),

		Fastest: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "case",
			Name:      "fastest",
			Help:      "1 for the fastest case of a suite, 0 otherwise",
		}, []string{"suite", "case"}),

		RunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "run",
			Name:      "timestamp_seconds",
			Help:      "End of the last benchmark run",
		}),

		RunElapsed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "run",
			Name:      "elapsed_seconds",
			Help:      "Wall-clock duration of the last benchmark run",
		}),
	}
}

// CaseFinished counts the case and publishes its raw statistics.
func (p *PromSink) CaseFinished(_ context.Context, suite string, result bench.TestResult) {
	switch {
	case result.Skipped:
		p.CasesTotal.WithLabelValues(suite, statusSkipped).Inc()
	case result.Failed():
		p.CasesTotal.WithLabelValues(suite, statusError).Inc()
	case result.Stat != nil:
		p.CasesTotal.WithLabelValues(suite, statusOK).Inc()
		p.Invocations.WithLabelValues(suite, result.Name).Add(float64(result.Stat.Count))
		p.RPS.WithLabelValues(suite, result.Name, strconv.FormatBool(result.Async)).Set(result.Stat.RPS)
		p.AvgSeconds.WithLabelValues(suite, result.Name).Set(result.Stat.Avg)
	}
}

// SuiteFinished publishes the ranking.
func (p *PromSink) SuiteFinished(_ context.Context, report bench.SuiteReport) {
	for _, t := range report.Tests {
		if t.Stat == nil {
			continue
		}
		p.Percent.WithLabelValues(report.Name, t.Name, strconv.FormatBool(t.Reference)).Set(t.Stat.Percent)

		fastest := 0.0
		if t.Fastest {
			fastest = 1
		}
		p.Fastest.WithLabelValues(report.Name, t.Name).Set(fastest)
	}
}

// RunFinished publishes the run timing.
func (p *PromSink) RunFinished(_ context.Context, report *bench.Report) {
	p.RunTimestamp.Set(float64(report.Timestamp) / 1000)
	p.RunElapsed.Set(float64(report.ElapsedMs) / 1000)
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format, atomically, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write prometheus textfile %s: %w", path, err)
	}
	return nil
}

var _ bench.Sink = (*PromSink)(nil)
