// Package middleware contains the fiber middleware shared by all routes.
//
// Logger() emits one structured zerolog access log per request and stores a
// request-scoped logger in the fiber locals so handlers can log with the same
// correlation fields. Place it after requestid.New() so the X-Request-ID
// response header is already set.
package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	loggerKey       = "logger"
	requestIDHeader = "X-Request-ID"
)

// Logger writes a structured access log for each request.
// Level follows the outcome: error for 5xx, warn for 4xx, info otherwise.
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		l := log.With().
			Str("request_id", c.GetRespHeader(requestIDHeader)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("remote_ip", c.IP()).
			Logger()
		c.Locals(loggerKey, &l)

		err := c.Next()
		status := statusOf(c, err)

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev.Str("route", c.Route().Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", len(c.Response().Body())).
			Msg("request completed")

		return err
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// Logger() did not run for this request.
func LoggerFrom(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(loggerKey).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &log.Logger
}

// statusOf resolves the final status, accounting for errors the app error handler has not yet written.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
