package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/san-kum/qjourney/internal/journey"
)

func TestStepSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tr := NewWithExporter(exp)

	sess, err := journey.New(journey.Options{Message: "Hello"})
	require.NoError(t, err)
	defer sess.Close()

	tr.Attach(context.Background(), sess)
	sess.Next()
	sess.Advance(3 * time.Second)
	sess.Next()
	tr.End()

	// Shutdown clears the in-memory exporter, so read the spans first.
	spans := exp.GetSpans()
	require.Len(t, spans, 4)
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"step Original Message",
		"step Binary Conversion",
		"step Huffman Compression",
		"journey",
	}, names)

	root := spans[3]
	for _, s := range spans[:3] {
		assert.Equal(t, root.SpanContext.SpanID(), s.Parent.SpanID())
	}

	binary := spans[1]
	assert.Len(t, binary.Events, 3, "one event per revealed group")

	require.NoError(t, tr.Shutdown(context.Background()))
	assert.Empty(t, exp.GetSpans())
}

func TestNilTracerIsInert(t *testing.T) {
	var tr *Tracer
	tr.Attach(context.Background(), nil)
	tr.OnEvent(journey.Event{})
	tr.End()
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestNewOTLPDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	tr, err := NewOTLP(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, tr)
}
