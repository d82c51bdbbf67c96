package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// RequestObserver receives request timings; implemented by metrics.Metrics.
type RequestObserver interface {
	RequestStarted()
	RequestFinished(method, path, status string, seconds float64)
}

// Metrics instruments every request with the given observer.
// The path label is the registered route, which keeps label cardinality bounded.
// Label values are copied out of the request buffers, which fasthttp reuses
// once the handler returns.
func Metrics(obs RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := utils.CopyString(c.Method())
		status := fiber.StatusInternalServerError

		obs.RequestStarted()
		// Deferred so a panic unwinding past this handler still settles the in-flight gauge.
		defer func() {
			obs.RequestFinished(
				method,
				utils.CopyString(c.Route().Path),
				strconv.Itoa(status),
				time.Since(start).Seconds(),
			)
		}()

		err := c.Next()
		status = statusOf(c, err)
		return err
	}
}
