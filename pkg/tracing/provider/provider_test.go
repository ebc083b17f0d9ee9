package provider

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestConfig(exporter Exporter) *Config {
	config := DefaultConfig("provider-test")
	config.Exporter = exporter
	config.SetGlobal = false
	return config
}

func TestNewProvider_NilConfig(t *testing.T) {
	provider, err := NewProvider(context.Background(), nil)

	assert.Nil(t, provider)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"unknown exporter", func(c *Config) { c.Exporter = "zipkin" }, ErrUnknownExporter},
		{"insecure in production", func(c *Config) { c.Environment = "production"; c.Insecure = true }, ErrInsecureInProduction},
		{"sample rate out of range", func(c *Config) { c.SampleRate = 2 }, ErrInvalidSampleRate},
		{"sample rate not a number", func(c *Config) { c.SampleRate = math.NaN() }, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := newTestConfig(ExporterNone)
			tt.mutate(config)

			_, err := NewProvider(context.Background(), config)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewProvider_Stdout(t *testing.T) {
	var out bytes.Buffer
	config := newTestConfig(ExporterStdout)
	config.Writer = &out
	config.ResourceAttributes = map[string]string{"team": "payments"}

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)

	tracer := provider.Tracer("")
	root := tracer.StartSpan(context.Background(), "checkout", time.UnixMilli(1000))
	root.StartSpan("charge-card", time.UnixMilli(1010)).End(time.UnixMilli(1020))
	root.End(time.UnixMilli(1030))

	require.NoError(t, provider.Shutdown(context.Background()))

	assert.Contains(t, out.String(), "checkout")
	assert.Contains(t, out.String(), "charge-card")
	assert.Contains(t, out.String(), "payments")
	assert.Contains(t, out.String(), "provider-test")
}

func TestNewProvider_None(t *testing.T) {
	config := newTestConfig(" NOOP ")

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	}()

	assert.Equal(t, ExporterNone, provider.Exporter())
	assert.Equal(t, Exporter(" NOOP "), config.Exporter)
	assert.NotNil(t, provider.TracerProvider())

	span := provider.Tracer("custom").StartSpan(context.Background(), "op", time.UnixMilli(0))
	assert.True(t, span.SpanContext().IsSampled())
	assert.NotEmpty(t, span.Encode().Get("traceparent"))
	span.End(time.UnixMilli(1))

	assert.NoError(t, provider.ForceFlush(context.Background()))
}

func TestNewProvider_NeverSample(t *testing.T) {
	config := newTestConfig(ExporterNone)
	config.SampleRate = 0

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	}()

	span := provider.Tracer("").StartSpan(context.Background(), "op", time.UnixMilli(0))
	defer span.End(time.UnixMilli(1))

	assert.False(t, span.SpanContext().IsSampled())
}

func TestNewProvider_OTLPExporters(t *testing.T) {
	for _, exporter := range []Exporter{ExporterGRPC, ExporterHTTP} {
		t.Run(string(exporter), func(t *testing.T) {
			config := newTestConfig(exporter)
			config.Insecure = true

			provider, err := NewProvider(context.Background(), config)
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, provider.Shutdown(ctx))
		})
	}
}

func TestNewProvider_SetGlobal(t *testing.T) {
	previousProvider := otel.GetTracerProvider()
	previousPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(previousProvider)
		otel.SetTextMapPropagator(previousPropagator)
	})

	core, logs := observer.New(zapcore.InfoLevel)
	config := newTestConfig(ExporterNone)
	config.SetGlobal = true
	config.Logger = zap.New(core)

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	}()

	assert.Same(t, provider.TracerProvider(), otel.GetTracerProvider())
	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
	assert.Equal(t, 1, logs.FilterMessage("tracing provider initialized").Len())
}

func TestNewProvider_RejectsNaNSampleRateFromEnv(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "NaN")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "none")

	config := ConfigFromEnv()
	config.SetGlobal = false

	provider, err := NewProvider(context.Background(), config)

	assert.Nil(t, provider)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}
