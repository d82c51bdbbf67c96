package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fairyhunter13/coupon-api/internal/middleware"

// fiberCarrier adapts the fiber request headers to propagation.TextMapCarrier.
// Values are copied since fiber hands out views into reusable buffers.
type fiberCarrier struct {
	c *fiber.Ctx
}

func (fc fiberCarrier) Get(key string) string {
	return utils.CopyString(fc.c.Get(key))
}

func (fc fiberCarrier) Set(key, value string) {
	fc.c.Request().Header.Set(key, value)
}

func (fc fiberCarrier) Keys() []string {
	keys := make([]string, 0, 8)
	fc.c.Request().Header.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

// Tracing starts a server span per request, continuing any trace carried by
// the incoming headers. Handlers reach the span through c.UserContext().
func Tracing(tp trace.TracerProvider, prop propagation.TextMapPropagator) fiber.Handler {
	tracer := tp.Tracer(tracerName)

	return func(c *fiber.Ctx) error {
		method := utils.CopyString(c.Method())
		ctx := prop.Extract(c.UserContext(), fiberCarrier{c: c})

		ctx, span := tracer.Start(ctx, method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(method),
				semconv.URLPath(utils.CopyString(c.Path())),
			),
		)
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()

		route := utils.CopyString(c.Route().Path)
		status := statusOf(c, err)
		span.SetName(method + " " + route)
		span.SetAttributes(
			semconv.HTTPRoute(route),
			semconv.HTTPResponseStatusCode(status),
			attribute.String("http.request_id", utils.CopyString(c.GetRespHeader(requestIDHeader))),
		)
		if status >= fiber.StatusInternalServerError {
			if err != nil {
				span.RecordError(err)
			}
			span.SetStatus(codes.Error, utils.StatusMessage(status))
		}
		return err
	}
}
