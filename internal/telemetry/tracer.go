// Package telemetry exports a session's step visits as OpenTelemetry spans.
//
// A session becomes one root span; every visited step is a child span that
// ends when the viewer leaves it, and stage changes are recorded as span
// events. Export is disabled unless OTEL_EXPORTER_OTLP_ENDPOINT is set.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/san-kum/qjourney/internal/journey"
)

const instrumentation = "qjourney/journey"

// Tracer turns journey events into spans. A nil *Tracer is valid and does
// nothing.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer

	rootCtx context.Context
	root    oteltrace.Span
	step    oteltrace.Span
}

// NewOTLP returns a tracer exporting over OTLP/HTTP, or nil when
// OTEL_EXPORTER_OTLP_ENDPOINT is unset.
func NewOTLP(ctx context.Context) (*Tracer, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	return newTracer(sdktrace.WithBatcher(exporter)), nil
}

// NewWithExporter returns a tracer that hands every finished span to exp
// synchronously.
func NewWithExporter(exp sdktrace.SpanExporter) *Tracer {
	return newTracer(sdktrace.WithSyncer(exp))
}

func newTracer(opt sdktrace.TracerProviderOption) *Tracer {
	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "qjourney"
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
	provider := sdktrace.NewTracerProvider(opt, sdktrace.WithResource(res))
	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer(instrumentation),
	}
}

// Attach opens the root span for sess, opens a span for its current step
// and subscribes to its events.
func (t *Tracer) Attach(ctx context.Context, sess *journey.Session) {
	if t == nil {
		return
	}
	a := sess.Artifacts()
	t.rootCtx, t.root = t.tracer.Start(ctx, "journey",
		oteltrace.WithAttributes(
			attribute.String("qjourney.message", a.Message),
			attribute.String("qjourney.charset", a.Policy.String()),
			attribute.Int("qjourney.bits.original", a.Stats.OriginalBits),
			attribute.Int("qjourney.bits.compressed", a.Stats.CompressedBits),
		),
	)
	st := sess.Frame().State
	t.startStep(st.Index, st.Name, st.Panel, 0)
	sess.AddObserver(t)
}

func (t *Tracer) OnEvent(e journey.Event) {
	if t == nil || t.root == nil {
		return
	}
	switch e.Kind {
	case journey.EventStep:
		t.endStep()
		t.startStep(e.Step, e.StepName, e.Panel, e.Time.Milliseconds())
	case journey.EventStage:
		if t.step == nil {
			return
		}
		t.step.AddEvent("stage", oteltrace.WithAttributes(
			attribute.String("qjourney.stage", e.Stage),
			attribute.Int("qjourney.stage.index", e.Index),
			attribute.Int("qjourney.stage.progress", e.Progress),
			attribute.Bool("qjourney.stage.done", e.Done),
			attribute.Int64("qjourney.virtual_ms", e.Time.Milliseconds()),
		))
	}
}

// End closes the open step span and the root span.
func (t *Tracer) End() {
	if t == nil || t.root == nil {
		return
	}
	t.endStep()
	t.root.End()
	t.root = nil
}

// Shutdown ends open spans, then flushes and closes the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.End()
	return t.provider.Shutdown(ctx)
}

func (t *Tracer) startStep(index int, name, panel string, virtualMS int64) {
	_, t.step = t.tracer.Start(t.rootCtx, "step "+name,
		oteltrace.WithAttributes(
			attribute.Int("qjourney.step.index", index),
			attribute.String("qjourney.step.name", name),
			attribute.String("qjourney.panel", panel),
			attribute.Int64("qjourney.virtual_ms", virtualMS),
		),
	)
}

func (t *Tracer) endStep() {
	if t.step != nil {
		t.step.End()
		t.step = nil
	}
}
