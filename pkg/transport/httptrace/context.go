// Package httptrace carries spans across net/http servers and clients.
package httptrace

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
)

type spanKey struct{}

// ContextWithSpan returns a copy of ctx holding span.
func ContextWithSpan(ctx context.Context, span *tracing.Span) context.Context {
	return context.WithValue(ctx, spanKey{}, span)
}

// SpanFromContext returns the span stored by Middleware or ContextWithSpan,
// or nil when there is none.
func SpanFromContext(ctx context.Context) *tracing.Span {
	span, _ := ctx.Value(spanKey{}).(*tracing.Span)
	return span
}
