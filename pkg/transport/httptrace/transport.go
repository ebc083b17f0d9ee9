package httptrace

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	"go.opentelemetry.io/otel/propagation"
)

// Transport is an http.RoundTripper that wraps each request whose context
// holds a span in a client span and encodes that client span into the
// outbound headers. Requests without a span pass through untouched.
type Transport struct {
	// Base is the underlying round tripper. Defaults to http.DefaultTransport.
	Base http.RoundTripper
	// Now is the clock for span times. Defaults to time.Now.
	Now func() time.Time
}

// NewTransport wraps base.
func NewTransport(base http.RoundTripper) *Transport {
	return &Transport{Base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	parent := SpanFromContext(req.Context())
	if parent == nil {
		return t.base().RoundTrip(req)
	}

	span := parent.StartSpan("HTTP "+req.Method, t.now(),
		tracing.WithSpanKind(tracing.SpanKindClient),
		tracing.WithAttributes(
			tracing.String("http.method", req.Method),
			tracing.String("http.url", req.URL.String()),
			tracing.String("http.host", req.URL.Host),
		),
	)

	// a RoundTripper must not modify the caller's request
	req = req.Clone(ContextWithSpan(req.Context(), span))
	span.EncodeInto(propagation.HeaderCarrier(req.Header))

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		span.RecordError(err)
		span.End(t.now())
		return resp, err
	}

	span.SetAttribute("http.status_code", resp.StatusCode)
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(false, fmt.Sprintf("HTTP %d", resp.StatusCode))
	} else {
		span.SetStatus(true, "")
	}
	span.End(t.now())

	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}
