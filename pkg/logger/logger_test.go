package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNew_StructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info().Str("key", "value").Msg("test message")

	var output map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err, "logger output should be valid JSON")

	assert.Equal(t, "test message", output["message"])
	assert.Equal(t, "value", output["key"])
	assert.Equal(t, "info", output["level"])
	assert.Contains(t, output, "time", "should include timestamp")
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		logDebug  bool
		logInfo   bool
		logErrors bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, true},
		{"bogus", false, true, true},
		{"", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)

			buf.Reset()
			log.Debug().Msg("d")
			assert.Equal(t, tt.logDebug, buf.Len() > 0)

			buf.Reset()
			log.Info().Msg("i")
			assert.Equal(t, tt.logInfo, buf.Len() > 0)

			buf.Reset()
			log.Error().Msg("e")
			assert.Equal(t, tt.logErrors, buf.Len() > 0)
		})
	}
}

func TestWithTrace(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	traced := WithTrace(ctx, log)
	traced.Info().Msg("traced")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", output["trace_id"])
	assert.Equal(t, "0102030405060708", output["span_id"])
}

func TestWithTrace_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	plain := WithTrace(context.Background(), log)
	plain.Info().Msg("plain")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.NotContains(t, output, "trace_id")
}
