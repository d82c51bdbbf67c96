package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/coupon-api/internal/model"
)

// ok writes a success envelope. Transport status is always 200; declared is what the envelope reports.
func ok(c *fiber.Ctx, declared int, result any) error {
	return c.Status(fiber.StatusOK).JSON(model.NewSuccessResponse(declared, result))
}

// fail writes an error envelope whose transport and declared status agree.
func fail(c *fiber.Ctx, status int, messages ...string) error {
	return c.Status(status).JSON(model.NewErrorResponse(status, messages...))
}

func internalError(c *fiber.Ctx) error {
	return fail(c, fiber.StatusInternalServerError, msgInternalServerErr)
}

// ErrorHandler is the fiber app error handler. It keeps errors escaping the
// handlers (unmatched routes, body limit, recovered panics) in the envelope shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := msgInternalServerErr
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return fail(c, code, msg)
}
