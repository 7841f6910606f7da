package main

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/monitor"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// observability holds the monitors installed for one command.
type observability struct {
	registry *prometheus.Registry
	provider *sdktrace.TracerProvider
	monitor  reactive.Monitor
}

// setupObservability builds the Prometheus and OpenTelemetry monitors that
// cfg enables. Flush spans are children of any span in ctx and are written to
// traceOut.
func setupObservability(ctx context.Context, cfg *config.Config, traceOut io.Writer) (*observability, error) {
	o := &observability{}
	var monitors []reactive.Monitor

	if cfg.Metrics.Enabled {
		o.registry = prometheus.NewRegistry()
		opts := []monitor.MetricsOption{
			monitor.WithRegistry(o.registry),
			monitor.WithNamespace(cfg.Metrics.Namespace),
		}
		if cfg.Metrics.Subsystem != "" {
			opts = append(opts, monitor.WithSubsystem(cfg.Metrics.Subsystem))
		}
		monitors = append(monitors, monitor.Prometheus(opts...))
	}

	if cfg.Tracing.Enabled {
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(traceOut),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, errors.New("X002").WithDetail("Could not create the trace exporter").Wrap(err)
		}
		o.provider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		monitors = append(monitors, monitor.OpenTelemetry(
			monitor.WithTracerProvider(o.provider),
			monitor.WithTracerName(cfg.Tracing.TracerName),
			monitor.WithParentContext(ctx),
		))
	}

	switch len(monitors) {
	case 0:
	case 1:
		o.monitor = monitors[0]
	default:
		o.monitor = monitor.Multi(monitors...)
	}
	return o, nil
}

// writeMetrics writes the collected metrics in the Prometheus text format.
func (o *observability) writeMetrics(w io.Writer) error {
	if o.registry == nil {
		return nil
	}
	families, err := o.registry.Gather()
	if err != nil {
		return errors.New("X002").Wrap(err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.New("X002").Wrap(err)
		}
	}
	return nil
}

// shutdown flushes pending spans.
func (o *observability) shutdown(ctx context.Context) error {
	if o.provider == nil {
		return nil
	}
	return o.provider.Shutdown(ctx)
}
