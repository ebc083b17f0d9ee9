package fibertrace

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing/tracingtest"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const inboundTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func newApp(recorder *tracingtest.Recorder) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(recorder.Tracer("fiber-test")))

	app.Get("/orders", func(c *fiber.Ctx) error {
		span := SpanFromCtx(c)
		if span == nil {
			return fiber.ErrInternalServerError
		}
		return c.SendString(span.TraceID())
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		return errors.New("database unavailable")
	})
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})

	return app
}

func TestMiddleware_ContinuesInboundTrace(t *testing.T) {
	recorder := tracingtest.NewRecorder()
	app := newApp(recorder)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("traceparent", inboundTraceparent)

	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", string(body))

	span, ok := recorder.Find("GET /orders")
	require.True(t, ok)
	assert.Equal(t, oteltrace.SpanKindServer, span.SpanKind())
	assert.Equal(t, "00f067aa0ba902b7", span.Parent().SpanID().String())
	assert.Equal(t, codes.Ok, span.Status().Code)
}

func TestMiddleware_NewTraceWithoutHeaders(t *testing.T) {
	recorder := tracingtest.NewRecorder()
	app := newApp(recorder)

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.NoError(t, err)

	span, ok := recorder.Find("GET /orders")
	require.True(t, ok)
	assert.False(t, span.Parent().IsValid())
}

func TestMiddleware_Errors(t *testing.T) {
	tests := []struct {
		path       string
		wantStatus int64
		wantCode   codes.Code
		wantDesc   string
	}{
		{"/missing", http.StatusNotFound, codes.Ok, ""},
		{"/broken", http.StatusInternalServerError, codes.Error, "database unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			recorder := tracingtest.NewRecorder()
			app := newApp(recorder)

			_, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)

			span, ok := recorder.Find("GET " + tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, span.Status().Code)
			assert.Equal(t, tt.wantDesc, span.Status().Description)

			status, ok := tracingtest.Attribute(span, "http.status_code")
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, status.AsInt64())
		})
	}
}

func TestSpanFromCtx_Nil(t *testing.T) {
	assert.Nil(t, SpanFromCtx(nil))
}

func TestMiddleware_SpansKeepTheirOwnRequestPath(t *testing.T) {
	recorder := tracingtest.NewRecorder()
	app := newApp(recorder)

	paths := []string{"/items/aaaaaaaa", "/items/bbbbbbbb", "/items/cccccccc"}
	for _, path := range paths {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}

	ended := recorder.Ended()
	require.Len(t, ended, len(paths))
	for i, span := range ended {
		assert.Equal(t, "GET "+paths[i], span.Name())

		target, ok := tracingtest.Attribute(span, "http.target")
		require.True(t, ok)
		assert.Equal(t, paths[i], target.AsString())

		method, ok := tracingtest.Attribute(span, "http.method")
		require.True(t, ok)
		assert.Equal(t, http.MethodGet, method.AsString())
	}
}

func TestMiddleware_PanicEndsSpan(t *testing.T) {
	recorder := tracingtest.NewRecorder()
	app := fiber.New()
	app.Use(recover.New())
	app.Use(Middleware(recorder.Tracer("fiber-test")))
	app.Post("/explode", func(c *fiber.Ctx) error {
		panic("kaboom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/explode", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	require.Len(t, recorder.Ended(), 1)
	span, ok := recorder.Find("POST /explode")
	require.True(t, ok)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "panic: kaboom", span.Status().Description)
}

func TestMiddleware_RequestID(t *testing.T) {
	tests := []struct {
		name     string
		inbound  string
		expected string
	}{
		{name: "propagates inbound id", inbound: "req-123", expected: "req-123"},
		{name: "generates missing id", inbound: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := tracingtest.NewRecorder()
			app := newApp(recorder)

			req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
			if tt.inbound != "" {
				req.Header.Set(HeaderRequestID, tt.inbound)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			requestID := resp.Header.Get(HeaderRequestID)
			require.NotEmpty(t, requestID)
			if tt.expected != "" {
				assert.Equal(t, tt.expected, requestID)
			}
			assert.Equal(t, requestID, string(body))

			span, ok := recorder.Find("GET /items/1")
			require.True(t, ok)
			attr, ok := tracingtest.Attribute(span, "http.request_id")
			require.True(t, ok)
			assert.Equal(t, requestID, attr.AsString())
		})
	}
}

func TestGetRequestID_Nil(t *testing.T) {
	assert.Empty(t, GetRequestID(nil))
}
