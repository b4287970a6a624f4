// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry exports benchmark runs to observability backends.
//
// # Description
//
// Both sinks implement bench.Sink and only observe: they never influence
// timing or ranking.
//
//   - OTelSink: one span per run, suite and case, plus histograms and
//     counters through the OpenTelemetry metric API.
//   - PromSink: Prometheus gauges and counters registered on a caller
//     supplied registry, with WriteTextfile for node_exporter's textfile
//     collector.
//
// # Integration
//
//	reg := prometheus.NewRegistry()
//	prom := telemetry.NewPromSink(reg)
//	otelSink, err := telemetry.NewOTelSink(telemetry.DefaultOTelConfig())
//	if err != nil {
//	    return err
//	}
//	defer otelSink.Close()
//
//	h := bench.New("run", bench.WithSink(bench.MultiSink{console, prom, otelSink}))
//	report, err := h.Run(ctx)
//	...
//	err = telemetry.WriteTextfile("/var/lib/node_exporter/bench.prom", reg)
//
// # Thread Safety
//
// Both sinks are safe for concurrent use.
package telemetry
