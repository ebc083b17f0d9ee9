// Package fibertrace carries spans across Fiber handlers.
package fibertrace

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID is the header carrying the request ID.
	HeaderRequestID = "X-Request-ID"
	// LocalsSpan is the key under which the request span is stored in Fiber locals.
	LocalsSpan = "tracing-span"
	// LocalsRequestID is the key under which the request ID is stored in Fiber locals.
	LocalsRequestID = "request-id"
)

// Middleware continues the trace found in the request headers with a server
// span covering the rest of the handler chain. Handlers reach the span with
// SpanFromCtx; c.UserContext() carries it for downstream libraries.
//
// A panic further down the chain ends the span as failed and is re-raised,
// so a recover middleware registered before this one still handles it.
func Middleware(tracer *tracing.Tracer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// fasthttp reuses request buffers, values kept past the handler must be copied
		method := utils.CopyString(c.Method())
		path := utils.CopyString(c.Path())

		requestID := utils.CopyString(c.Get(HeaderRequestID))
		if strings.TrimSpace(requestID) == "" {
			requestID = uuid.New().String()
		}
		c.Set(HeaderRequestID, requestID)
		c.Locals(LocalsRequestID, requestID)

		remote := tracer.Decode(c.UserContext(), headerCarrier(c))

		span := remote.StartSpan(method+" "+path, time.Now(),
			tracing.WithSpanKind(tracing.SpanKindServer),
			tracing.WithAttributes(
				tracing.String("http.method", method),
				tracing.String("http.target", path),
				tracing.String("http.request_id", requestID),
			),
		)

		c.Locals(LocalsSpan, span)
		c.SetUserContext(span.Context())

		defer func() {
			if recovered := recover(); recovered != nil {
				span.SetStatus(false, fmt.Sprintf("panic: %v", recovered))
				span.End(time.Now())
				panic(recovered)
			}
		}()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		span.SetAttribute("http.status_code", status)
		switch {
		case status >= fiber.StatusInternalServerError && err != nil:
			span.RecordError(err)
		case status >= fiber.StatusInternalServerError:
			span.SetStatus(false, fmt.Sprintf("HTTP %d", status))
		default:
			span.SetStatus(true, "")
		}
		span.End(time.Now())

		return err
	}
}

// SpanFromCtx returns the span stored by Middleware, or nil.
func SpanFromCtx(c *fiber.Ctx) *tracing.Span {
	if c == nil {
		return nil
	}
	span, _ := c.Locals(LocalsSpan).(*tracing.Span)
	return span
}

// GetRequestID returns the request ID stored by Middleware, or "".
func GetRequestID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	requestID, _ := c.Locals(LocalsRequestID).(string)
	return requestID
}

// headerCarrier copies the request headers into a carrier. Fiber canonicalizes
// header names, so keys are lowercased to match propagator field names.
// Header strings alias the request buffer and are copied.
func headerCarrier(c *fiber.Ctx) tracing.Carrier {
	headers := c.GetReqHeaders()
	carrier := make(tracing.Carrier, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		carrier[strings.ToLower(utils.CopyString(key))] = utils.CopyString(values[0])
	}
	return carrier
}
