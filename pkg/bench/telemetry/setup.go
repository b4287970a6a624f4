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
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

// Exporter names accepted by SetupConfig.
const (
	ExporterNone       = "none"
	ExporterStdout     = "stdout"
	ExporterOTLP       = "otlp"
	ExporterPrometheus = "prometheus"
)

// ErrUnknownExporter is returned for an exporter name Setup does not know.
var ErrUnknownExporter = errors.New("unknown telemetry exporter")

// SetupConfig selects the exporters behind the OTel sink.
type SetupConfig struct {
	// ServiceName identifies the benchmark process in traces and metrics.
	ServiceName string

	// ServiceVersion is the version string of the process.
	ServiceVersion string

	// TraceExporter selects the trace exporter: "stdout", "otlp" or "none".
	TraceExporter string

	// MetricExporter selects the metric exporter: "stdout", "prometheus" or "none".
	MetricExporter string

	// OTLPEndpoint is the OTLP gRPC receiver for traces.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the OTLP connection.
	OTLPInsecure bool

	// Registerer receives the collector of the "prometheus" metric exporter.
	// Default: prometheus.DefaultRegisterer
	Registerer prometheus.Registerer

	// Output receives the "stdout" exporters.
	// Default: os.Stdout
	Output io.Writer
}

// DefaultSetupConfig writes traces and metrics to stdout.
//
// OTEL_EXPORTER_OTLP_ENDPOINT overrides the OTLP endpoint.
func DefaultSetupConfig() SetupConfig {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}
	return SetupConfig{
		ServiceName:    "benchmarkify",
		ServiceVersion: "1.0.0",
		TraceExporter:  ExporterStdout,
		MetricExporter: ExporterStdout,
		OTLPEndpoint:   endpoint,
		OTLPInsecure:   true,
	}
}

// Providers holds the SDK providers built by Setup.
//
// A nil provider means the corresponding exporter is "none".
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

// SinkConfig returns an OTelConfig bound to the providers.
func (p *Providers) SinkConfig(serviceName, serviceVersion string) *OTelConfig {
	cfg := &OTelConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		TraceEnabled:   p.TracerProvider != nil,
		MetricsEnabled: p.MeterProvider != nil,
	}
	if p.TracerProvider != nil {
		cfg.TracerProvider = p.TracerProvider
	}
	if p.MeterProvider != nil {
		cfg.MeterProvider = p.MeterProvider
	}
	return cfg
}

// Shutdown flushes and stops both providers concurrently.
//
// Thread Safety: Call once, after the run finished.
func (p *Providers) Shutdown(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if p.TracerProvider != nil {
		g.Go(func() error {
			if err := p.TracerProvider.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown tracer provider: %w", err)
			}
			return nil
		})
	}
	if p.MeterProvider != nil {
		g.Go(func() error {
			if err := p.MeterProvider.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown meter provider: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Setup builds the tracer and meter providers named by cfg.
//
// Description:
//
//	Unlike a process-wide telemetry init, Setup does not install global
//	providers: the returned Providers are handed to NewOTelSink through
//	SinkConfig. The caller must call Shutdown so batched spans and the
//	final metric collection are exported.
//
// Inputs:
//   - ctx: Used for exporter connections.
//   - cfg: Exporter selection. Empty exporter names mean "none".
//
// Outputs:
//   - *Providers: Never nil on success.
//   - error: ErrUnknownExporter or an exporter construction error.
//
// Example:
//
//	providers, err := telemetry.Setup(ctx, telemetry.DefaultSetupConfig())
//	if err != nil {
//	    return fmt.Errorf("setup telemetry: %w", err)
//	}
//	defer providers.Shutdown(context.Background())
func Setup(ctx context.Context, cfg SetupConfig) (*Providers, error) {
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	providers := &Providers{}

	tp, err := newTracerProvider(ctx, cfg, res, out)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	providers.TracerProvider = tp

	mp, err := newMeterProvider(cfg, res, out)
	if err != nil {
		if tp != nil {
			_ = tp.Shutdown(ctx)
		}
		return nil, fmt.Errorf("init meter: %w", err)
	}
	providers.MeterProvider = mp

	return providers, nil
}

func newTracerProvider(ctx context.Context, cfg SetupConfig, res *resource.Resource, out io.Writer) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "", ExporterNone:
		return nil, nil

	case ExporterOTLP:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)

	case ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}

	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func newMeterProvider(cfg SetupConfig, res *resource.Resource, out io.Writer) (*sdkmetric.MeterProvider, error) {
	switch cfg.MetricExporter {
	case "", ExporterNone:
		return nil, nil

	case ExporterPrometheus:
		reg := cfg.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		return sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		), nil

	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		return sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}
}
