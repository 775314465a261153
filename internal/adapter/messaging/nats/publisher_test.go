package nats

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestQualify(t *testing.T) {
	assert.Equal(t, "reusehub.listing.created", qualify("reusehub", "listing.created"))
	assert.Equal(t, "listing.created", qualify("", "listing.created"))
}

func TestHeaderCarrier_InjectsTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	header := make(nats.Header)
	propagation.TraceContext{}.Inject(ctx, HeaderCarrier(header))

	assert.NotEmpty(t, HeaderCarrier(header).Get("traceparent"))
	assert.NotEmpty(t, HeaderCarrier(header).Keys())
}
