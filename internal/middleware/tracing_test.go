package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	incomingTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	incomingSpanID  = "00f067aa0ba902b7"
	traceparent     = "00-" + incomingTraceID + "-" + incomingSpanID + "-01"
)

func newRecordingProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func spanNamed(t *testing.T, spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range spans {
		if s.Name() == name {
			return s
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	tp, sr := newRecordingProvider(t)

	app := fiber.New()
	app.Use(Tracing(tp, propagation.TraceContext{}))
	app.Get("/api/coupons/:id<int>", func(c *fiber.Ctx) error {
		_, span := tp.Tracer("test").Start(c.UserContext(), "CouponService.GetByID")
		span.End()
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/coupons/7", nil)
	req.Header.Set("traceparent", traceparent)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	server := spanNamed(t, spans, "GET /api/coupons/:id<int>")
	assert.Equal(t, trace.SpanKindServer, server.SpanKind())
	assert.True(t, server.Parent().IsRemote())
	assert.Equal(t, incomingTraceID, server.SpanContext().TraceID().String())
	assert.Equal(t, incomingSpanID, server.Parent().SpanID().String())
	assert.Contains(t, server.Attributes(), semconv.HTTPRoute("/api/coupons/:id<int>"))
	assert.Contains(t, server.Attributes(), semconv.HTTPResponseStatusCode(200))
	assert.Contains(t, server.Attributes(), semconv.HTTPRequestMethodKey.String("GET"))

	child := spanNamed(t, spans, "CouponService.GetByID")
	assert.Equal(t, server.SpanContext().SpanID(), child.Parent().SpanID())
	assert.Equal(t, incomingTraceID, child.SpanContext().TraceID().String())
}

func TestTracing_StartsRootWithoutTraceparent(t *testing.T) {
	tp, sr := newRecordingProvider(t)

	app := fiber.New()
	app.Use(Tracing(tp, propagation.TraceContext{}))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.False(t, spans[0].Parent().IsValid())
	assert.Equal(t, "GET /x", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracing_MarksServerErrors(t *testing.T) {
	tp, sr := newRecordingProvider(t)

	app := fiber.New()
	app.Use(Tracing(tp, propagation.TraceContext{}))
	app.Get("/down", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "down")
	})
	app.Get("/missing", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })

	for _, path := range []string{"/down", "/missing"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}

	spans := sr.Ended()
	require.Len(t, spans, 2)

	down := spanNamed(t, spans, "GET /down")
	assert.Equal(t, codes.Error, down.Status().Code)
	assert.Contains(t, down.Attributes(), semconv.HTTPResponseStatusCode(503))
	require.Len(t, down.Events(), 1)
	assert.Equal(t, "exception", down.Events()[0].Name)

	missing := spanNamed(t, spans, "GET /missing")
	assert.Equal(t, codes.Unset, missing.Status().Code)
}
