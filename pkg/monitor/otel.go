package monitor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// Default tracer name for reactive runtimes.
const defaultTracerName = "reactive"

// OTelConfig configures the OpenTelemetry monitor.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "reactive").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// Context is the parent context of every flush span.
	// Default: context.Background()
	Context context.Context
}

// OTelOption configures the OpenTelemetry monitor.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithParentContext sets the context flush spans are started from.
func WithParentContext(ctx context.Context) OTelOption {
	return func(c *OTelConfig) {
		c.Context = ctx
	}
}

// Tracer is a reactive.Monitor that records one span per flush.
type Tracer struct {
	tracer trace.Tracer
	ctx    context.Context

	span trace.Span
	runs map[string]int
}

var _ reactive.Monitor = (*Tracer)(nil)

// OpenTelemetry creates a monitor that traces every flush.
//
// Each span carries:
//   - reactive.pending: nodes queued when the flush started
//   - reactive.runs: computations executed
//   - reactive.runs.<kind>: computations executed per kind
//   - reactive.discarded: pending nodes dropped by a failed flush
//
// Errors that reach no handler are recorded on the flush span, or on a
// standalone "reactive.uncaught" span outside a flush.
//
// Example:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	reactive.Configure(reactive.Config{
//	    Monitor: monitor.OpenTelemetry(monitor.WithTracerProvider(tp)),
//	})
func OpenTelemetry(opts ...OTelOption) *Tracer {
	config := OTelConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}

	return &Tracer{
		tracer: config.TracerProvider.Tracer(config.TracerName),
		ctx:    config.Context,
	}
}

// FlushStarted implements reactive.Monitor.
func (t *Tracer) FlushStarted(pending int) {
	_, t.span = t.tracer.Start(t.ctx, "reactive.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("reactive.pending", pending)),
		trace.WithTimestamp(time.Now()),
	)
	t.runs = make(map[string]int)
}

// NodeRan implements reactive.Monitor.
func (t *Tracer) NodeRan(kind string, _ time.Duration) {
	if t.span != nil {
		t.runs[kind]++
	}
}

// FlushFinished implements reactive.Monitor.
func (t *Tracer) FlushFinished(stats reactive.FlushStats) {
	if t.span == nil {
		return
	}
	span := t.span
	t.span = nil

	attrs := []attribute.KeyValue{
		attribute.Int("reactive.runs", stats.Runs),
		attribute.Int("reactive.discarded", stats.Discarded),
	}
	for kind, n := range t.runs {
		attrs = append(attrs, attribute.Int("reactive.runs."+kind, n))
	}
	span.SetAttributes(attrs...)
	if stats.Failed {
		span.SetStatus(codes.Error, "flush aborted")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Uncaught implements reactive.Monitor.
func (t *Tracer) Uncaught(err error) {
	if t.span != nil {
		t.span.RecordError(err)
		return
	}
	_, span := t.tracer.Start(t.ctx, "reactive.uncaught")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
