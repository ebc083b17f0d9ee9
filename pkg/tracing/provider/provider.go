// Package provider configures the OpenTelemetry SDK that records and exports
// the spans created through package tracing.
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials"
)

// Provider owns an SDK tracer provider and hands out tracers bound to it.
type Provider struct {
	config         *Config
	exporter       Exporter
	logger         *zap.Logger
	tracerProvider *sdktrace.TracerProvider
	propagator     propagation.TextMapPropagator
	shutdownFuncs  []func(context.Context) error
}

// NewProvider creates and initializes a tracing provider.
func NewProvider(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		return nil, ErrNilConfig
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := validateSecurityConfig(config, logger); err != nil {
		return nil, err
	}

	if err := validateSampleRate(config.SampleRate); err != nil {
		return nil, err
	}

	exporter, err := normalizeExporter(string(config.Exporter))
	if err != nil {
		return nil, err
	}

	provider := &Provider{
		config:        config,
		exporter:      exporter,
		logger:        logger,
		propagator:    tracing.DefaultPropagator(),
		shutdownFuncs: make([]func(context.Context) error, 0, 1),
	}

	res, err := provider.createResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := provider.initTracerProvider(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}

	if config.SetGlobal {
		otel.SetTracerProvider(provider.tracerProvider)
		otel.SetTextMapPropagator(provider.propagator)
		otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
			logger.Error("opentelemetry engine error", zap.Error(err))
		}))
	}

	logger.Info("tracing provider initialized",
		zap.String("service", config.ServiceName),
		zap.String("exporter", string(exporter)),
		zap.Float64("sample_rate", config.SampleRate),
	)

	return provider, nil
}

// createResource creates a resource describing the service.
func (p *Provider) createResource(ctx context.Context) (*resource.Resource, error) {
	attrs := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceName(p.config.ServiceName),
			semconv.ServiceVersion(p.config.ServiceVersion),
			semconv.DeploymentEnvironment(p.config.Environment),
		),
	}

	if len(p.config.ResourceAttributes) > 0 {
		customAttrs := make([]attribute.KeyValue, 0, len(p.config.ResourceAttributes))
		for k, v := range p.config.ResourceAttributes {
			customAttrs = append(customAttrs, attribute.String(k, v))
		}
		attrs = append(attrs, resource.WithAttributes(customAttrs...))
	}

	return resource.New(ctx, attrs...)
}

// initTracerProvider builds the SDK provider around the configured exporter.
func (p *Provider) initTracerProvider(ctx context.Context, res *resource.Resource) error {
	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(p.createTraceSampler()),
	}

	switch p.exporter {
	case ExporterNone:
		// spans are recorded and sampled but never leave the process
	case ExporterStdout:
		exporter, err := p.createStdoutExporter()
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithSyncer(exporter))
	default:
		exporter, err := p.createOTLPExporter(ctx)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	p.tracerProvider = sdktrace.NewTracerProvider(providerOpts...)
	p.shutdownFuncs = append(p.shutdownFuncs, p.tracerProvider.Shutdown)

	return nil
}

// createOTLPExporter creates the OTLP exporter for the configured protocol.
func (p *Provider) createOTLPExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if p.exporter == ExporterHTTP {
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(p.config.Endpoint),
		}

		if p.config.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		} else if p.config.TLSConfig != nil {
			opts = append(opts, otlptracehttp.WithTLSClientConfig(p.config.TLSConfig))
		}

		return otlptracehttp.New(ctx, opts...)
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(p.config.Endpoint),
	}

	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else if p.config.TLSConfig != nil {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(p.config.TLSConfig)))
	}

	return otlptracegrpc.New(ctx, opts...)
}

func (p *Provider) createStdoutExporter() (sdktrace.SpanExporter, error) {
	writer := p.config.Writer
	if writer == nil {
		writer = os.Stdout
	}
	return stdouttrace.New(stdouttrace.WithWriter(writer))
}

// createTraceSampler creates the sampler for the configured rate.
func (p *Provider) createTraceSampler() sdktrace.Sampler {
	if p.config.SampleRate >= 1.0 {
		return sdktrace.AlwaysSample()
	}

	if p.config.SampleRate <= 0.0 {
		return sdktrace.NeverSample()
	}

	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.config.SampleRate))
}

// Tracer returns a tracer for scope name bound to this provider. An empty
// name uses the service name.
func (p *Provider) Tracer(name string, opts ...tracing.Option) *tracing.Tracer {
	if name == "" {
		name = p.config.ServiceName
	}

	all := make([]tracing.Option, 0, len(opts)+2)
	all = append(all,
		tracing.WithTracerProvider(p.tracerProvider),
		tracing.WithPropagator(p.propagator),
	)
	all = append(all, opts...)

	return tracing.New(name, all...)
}

// Exporter returns the exporter in use, normalized from Config.Exporter.
func (p *Provider) Exporter() Exporter {
	return p.exporter
}

// TracerProvider returns the underlying SDK provider.
func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	return p.tracerProvider
}

// ForceFlush exports all ended spans that have not been exported yet.
func (p *Provider) ForceFlush(ctx context.Context) error {
	return p.tracerProvider.ForceFlush(ctx)
}

// Shutdown flushes pending spans and releases the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, shutdown := range p.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		p.logger.Error("tracing provider shutdown failed", zap.Error(err))
		return fmt.Errorf("errors during shutdown: %w", err)
	}

	return nil
}
