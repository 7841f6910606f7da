package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *Tracer) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, OpenTelemetry(WithTracerProvider(tp), WithTracerName("test"))
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestOpenTelemetrySpanPerFlush(t *testing.T) {
	sr, tracer := newRecorder(t)
	useMonitor(t, tracer)

	s := reactive.NewSignal(0)
	dispose := reactive.CreateRoot(func(dispose func()) func() {
		m := reactive.NewMemo(func() int { return s.Get() + 1 })
		reactive.Effect(func() { _ = m.Get() })
		return dispose
	})
	defer dispose()

	s.Set(1)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "reactive.flush", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)

	a := attrs(span)
	assert.Equal(t, int64(1), a["reactive.pending"].AsInt64())
	assert.Equal(t, int64(2), a["reactive.runs"].AsInt64())
	assert.Equal(t, int64(1), a["reactive.runs.memo"].AsInt64())
	assert.Equal(t, int64(1), a["reactive.runs.effect"].AsInt64())
}

func TestOpenTelemetryRecordsUncaught(t *testing.T) {
	sr, tracer := newRecorder(t)
	useMonitor(t, tracer)

	s := reactive.NewSignal(0)
	dispose := reactive.CreateRoot(func(dispose func()) func() {
		reactive.Effect(func() {
			if s.Get() > 0 {
				panic("fail")
			}
		})
		return dispose
	})
	defer dispose()

	assert.Panics(t, func() { s.Set(1) })

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestOpenTelemetryUncaughtOutsideFlush(t *testing.T) {
	sr, tracer := newRecorder(t)
	useMonitor(t, tracer)

	assert.Panics(t, func() {
		reactive.Root(func(func()) {
			reactive.Effect(func() { panic("initial") })
		})
	})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "reactive.uncaught", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestOpenTelemetryParentContext(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, parent := tp.Tracer("test").Start(context.Background(), "command")
	tracer := OpenTelemetry(WithTracerProvider(tp), WithParentContext(ctx))
	useMonitor(t, tracer)

	s := reactive.NewSignal(0)
	dispose := reactive.CreateRoot(func(dispose func()) func() {
		reactive.Effect(func() { _ = s.Get() })
		return dispose
	})
	defer dispose()

	s.Set(1)
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	flush := spans[0]
	assert.Equal(t, "reactive.flush", flush.Name())
	assert.Equal(t, parent.SpanContext().TraceID(), flush.SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), flush.Parent().SpanID())
}
