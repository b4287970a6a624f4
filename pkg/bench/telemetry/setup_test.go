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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSetupConfig(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfg := DefaultSetupConfig()

	assert.Equal(t, "benchmarkify", cfg.ServiceName)
	assert.Equal(t, ExporterStdout, cfg.TraceExporter)
	assert.Equal(t, ExporterStdout, cfg.MetricExporter)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
}

func TestDefaultSetupConfig_EndpointFromEnv(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	assert.Equal(t, "collector:4317", DefaultSetupConfig().OTLPEndpoint)
}

func TestSetup_None(t *testing.T) {
	providers, err := Setup(context.Background(), SetupConfig{
		ServiceName:    "test",
		TraceExporter:  ExporterNone,
		MetricExporter: "",
	})
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)

	cfg := providers.SinkConfig("test", "1")
	assert.False(t, cfg.TraceEnabled)
	assert.False(t, cfg.MetricsEnabled)
	assert.Nil(t, cfg.TracerProvider)
	assert.Nil(t, cfg.MeterProvider)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestSetup_UnknownExporter(t *testing.T) {
	tests := []struct {
		name string
		cfg  SetupConfig
	}{
		{name: "trace", cfg: SetupConfig{ServiceName: "test", TraceExporter: "zipkin"}},
		{name: "metric", cfg: SetupConfig{ServiceName: "test", MetricExporter: "statsd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Setup(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, ErrUnknownExporter)
		})
	}
}

func TestSetup_StdoutExportsOnShutdown(t *testing.T) {
	var out bytes.Buffer
	providers, err := Setup(context.Background(), SetupConfig{
		ServiceName:    "test",
		TraceExporter:  ExporterStdout,
		MetricExporter: ExporterStdout,
		Output:         &out,
	})
	require.NoError(t, err)

	sink, err := NewOTelSink(providers.SinkConfig("test", "1"))
	require.NoError(t, err)
	runSample(t, sink)
	require.NoError(t, sink.Close())

	require.NoError(t, providers.Shutdown(context.Background()))

	assert.Contains(t, out.String(), "benchmark.run")
	assert.Contains(t, out.String(), "benchmark.case.invocations")
}

func TestSetup_PrometheusExporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	providers, err := Setup(context.Background(), SetupConfig{
		ServiceName:    "test",
		MetricExporter: ExporterPrometheus,
		Registerer:     reg,
	})
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	sink, err := NewOTelSink(providers.SinkConfig("test", "1"))
	require.NoError(t, err)
	runSample(t, sink)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "benchmark_case_invocations") {
			found = true
		}
	}
	assert.True(t, found, "expected benchmark_case_invocations in the registry")
}
