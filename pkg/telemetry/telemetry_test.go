package telemetry

import (
	"context"
	"testing"

	"transaction-orchestrator/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{ServiceName: "test"}, "dev")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := Tracer().Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid(), "no-op provider produces invalid span contexts")
	assert.NotNil(t, otel.GetTextMapPropagator())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), Sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), Sampler(0).Description())
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased")
}
