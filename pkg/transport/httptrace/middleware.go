package httptrace

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// HeaderRequestID is the header carrying the request ID.
const HeaderRequestID = "X-Request-ID"

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	logger   *zap.Logger
	now      func() time.Time
	spanName func(*http.Request) string
}

// WithLogger logs decoded inbound traces at debug level.
func WithLogger(logger *zap.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.logger = logger
	}
}

// WithClock overrides the clock used for span start and end times.
func WithClock(now func() time.Time) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.now = now
	}
}

// WithSpanNameFormatter overrides the default "METHOD /path" span name.
func WithSpanNameFormatter(format func(*http.Request) string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.spanName = format
	}
}

func defaultSpanName(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

// Middleware continues the trace found in the request headers with a
// server span that lasts for the whole request. The span is available to
// handlers through SpanFromContext.
func Middleware(tracer *tracing.Tracer, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		logger:   zap.NewNop(),
		now:      time.Now,
		spanName: defaultSpanName,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remote := tracer.DecodeFrom(r.Context(), propagation.HeaderCarrier(r.Header))
			if remote.SpanContext().IsValid() {
				cfg.logger.Debug("continuing inbound trace",
					zap.String("trace_id", remote.TraceID()),
					zap.String("parent_span_id", remote.SpanID()),
				)
			}

			requestID := r.Header.Get(HeaderRequestID)
			if strings.TrimSpace(requestID) == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(HeaderRequestID, requestID)

			span := remote.StartSpan(cfg.spanName(r), cfg.now(),
				tracing.WithSpanKind(tracing.SpanKindServer),
				tracing.WithAttributes(
					tracing.String("http.method", r.Method),
					tracing.String("http.target", r.URL.Path),
					tracing.String("http.request_id", requestID),
				),
			)

			rw := newStatusRecorder(w)
			defer func() {
				if recovered := recover(); recovered != nil {
					span.SetStatus(false, fmt.Sprintf("panic: %v", recovered))
					span.End(cfg.now())
					panic(recovered)
				}

				span.SetAttribute("http.status_code", rw.Status())
				if rw.Status() >= http.StatusInternalServerError {
					span.SetStatus(false, fmt.Sprintf("HTTP %d", rw.Status()))
				} else {
					span.SetStatus(true, "")
				}
				span.End(cfg.now())
			}()

			ctx := ContextWithSpan(span.Context(), span)
			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status        int
	headerWritten bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.headerWritten {
		rw.headerWritten = true
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.headerWritten = true
	return rw.ResponseWriter.Write(b)
}

// Status returns the status code sent, 200 if the handler never set one.
func (rw *statusRecorder) Status() int {
	return rw.status
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
