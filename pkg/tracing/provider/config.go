package provider

import (
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Exporter selects where finished spans are sent.
type Exporter string

const (
	// ExporterGRPC exports over OTLP/gRPC (default port 4317).
	ExporterGRPC Exporter = "grpc"
	// ExporterHTTP exports over OTLP/HTTP protobuf (default port 4318).
	ExporterHTTP Exporter = "http"
	// ExporterStdout writes spans as JSON to Config.Writer.
	ExporterStdout Exporter = "stdout"
	// ExporterNone records spans without exporting them.
	ExporterNone Exporter = "none"
)

// Config holds the configuration of the tracing provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	Exporter Exporter
	Endpoint string

	// Security configuration
	Insecure  bool        // Allow insecure connections (only for non-production environments)
	TLSConfig *tls.Config // Custom TLS configuration (optional, uses system defaults if nil)

	SampleRate float64 // 0.0 to 1.0

	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer

	ResourceAttributes map[string]string

	// SetGlobal installs the tracer provider, the propagator and an error
	// handler as OpenTelemetry globals.
	SetGlobal bool

	Logger *zap.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName:    serviceName,
		ServiceVersion: "unknown",
		Environment:    "development",
		Exporter:       ExporterGRPC,
		Endpoint:       "localhost:4317",
		SampleRate:     1.0,
		SetGlobal:      true,
	}
}

// ConfigFromEnv builds a configuration from environment variables.
// Environment variables:
//   - SERVICE_NAME: Service name (default: "unknown")
//   - SERVICE_VERSION: Service version (default: "unknown")
//   - ENVIRONMENT: Environment name (default: "development")
//   - OTEL_EXPORTER_OTLP_PROTOCOL: grpc, http, http/protobuf, stdout or none (default: "grpc")
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector endpoint (default: "localhost:4317")
//   - OTEL_EXPORTER_OTLP_INSECURE: "true" disables TLS (default: "false")
//   - OTEL_TRACES_SAMPLER_ARG: sample rate (default: "1.0")
func ConfigFromEnv() *Config {
	cfg := DefaultConfig(getEnv("SERVICE_NAME", "unknown"))
	cfg.ServiceVersion = getEnv("SERVICE_VERSION", cfg.ServiceVersion)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.Exporter = Exporter(getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", string(cfg.Exporter)))
	cfg.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Endpoint)

	if insecure, err := strconv.ParseBool(getEnv("OTEL_EXPORTER_OTLP_INSECURE", "false")); err == nil {
		cfg.Insecure = insecure
	}

	if rate, err := strconv.ParseFloat(getEnv("OTEL_TRACES_SAMPLER_ARG", "1.0"), 64); err == nil {
		cfg.SampleRate = rate
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// normalizeExporter maps user spellings onto an Exporter.
func normalizeExporter(exporter string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "grpc", "":
		return ExporterGRPC, nil
	case "http", "http/protobuf":
		return ExporterHTTP, nil
	case "stdout", "console":
		return ExporterStdout, nil
	case "none", "noop":
		return ExporterNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownExporter, exporter)
	}
}

// validateSecurityConfig rejects insecure production setups and warns about
// weakened ones.
func validateSecurityConfig(config *Config, logger *zap.Logger) error {
	if config.Insecure {
		env := strings.ToLower(config.Environment)
		if env == "production" || env == "prod" {
			return ErrInsecureInProduction
		}
		logger.Warn("using insecure OTLP connection, only suitable for development",
			zap.String("endpoint", config.Endpoint),
			zap.String("environment", config.Environment),
		)
	}

	if config.TLSConfig != nil {
		if config.TLSConfig.InsecureSkipVerify {
			logger.Warn("TLS verification is disabled for the OTLP exporter")
		}

		if config.TLSConfig.MinVersion > 0 && config.TLSConfig.MinVersion < tls.VersionTLS12 {
			return ErrWeakTLS
		}
	}

	return nil
}

func validateSampleRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSampleRate, rate)
	}
	return nil
}
