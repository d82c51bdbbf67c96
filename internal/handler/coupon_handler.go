package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/coupon-api/internal/middleware"
	"github.com/fairyhunter13/coupon-api/internal/model"
	"github.com/fairyhunter13/coupon-api/internal/service"
	validation "github.com/fairyhunter13/coupon-api/internal/validator"
)

// Fixed envelope messages.
const (
	msgCouponExists      = "Coupon name already exists"
	msgCouponConflict    = "Coupon name or coupon id already exists"
	msgCouponNotFound    = "Coupon not found"
	msgInvalidID         = "Invalid id"
	msgInvalidBody       = "Invalid request body"
	msgInternalServerErr = "Internal server error"
)

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	List(ctx context.Context) ([]model.Coupon, error)
	GetByID(ctx context.Context, id int) (*model.Coupon, error)
	Create(ctx context.Context, req *model.CouponCreateDto) (*model.CouponDto, error)
	Update(ctx context.Context, req *model.CouponUpdateDto) (*model.CouponDto, error)
	Delete(ctx context.Context, id int) error
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// GetCoupons handles GET /coupons. The result is the raw entity list.
func (h *CouponHandler) GetCoupons(c *fiber.Ctx) error {
	logger := middleware.LoggerFrom(c)
	logger.Info().Msg("Getting all coupons")

	coupons, err := h.service.List(c.UserContext())
	if err != nil {
		logger.Error().Err(err).Msg("failed to list coupons")
		return internalError(c)
	}
	return ok(c, fiber.StatusOK, coupons)
}

// GetCoupon handles GET /coupons/:id. A missing coupon is a success with a null result.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	logger := middleware.LoggerFrom(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, msgInvalidID)
	}
	logger.Info().Int("coupon_id", id).Msgf("Getting coupon %d", id)

	coupon, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		logger.Error().Err(err).Int("coupon_id", id).Msg("failed to get coupon")
		return internalError(c)
	}
	if coupon == nil {
		return ok(c, fiber.StatusOK, nil)
	}
	return ok(c, fiber.StatusOK, coupon)
}

// CreateCoupon handles POST /coupons.
// The envelope declares 201 while the transport status stays 200.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	logger := middleware.LoggerFrom(c)

	var req model.CouponCreateDto
	if err := c.BodyParser(&req); err != nil {
		logger.Warn().Err(err).Msg("invalid create coupon body")
		return fail(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := h.validator.Struct(req); err != nil {
		msg := validation.Message(err)
		logger.Error().Str("validation", msg).Msg("create coupon validation failed")
		return fail(c, fiber.StatusBadRequest, msg)
	}

	dto, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponExists):
			logger.Error().Str("coupon_name", req.Name).Msg(msgCouponExists)
			return fail(c, fiber.StatusBadRequest, msgCouponExists)
		case errors.Is(err, service.ErrInvalidRequest):
			return fail(c, fiber.StatusBadRequest, msgInvalidBody)
		}
		logger.Error().Err(err).Str("coupon_name", req.Name).Msg("failed to create coupon")
		return internalError(c)
	}

	logger.Info().Int("coupon_id", dto.ID).Str("coupon_name", dto.Name).Msg("Coupon added")
	return ok(c, fiber.StatusCreated, dto)
}

// UpdateCoupon handles PUT /coupons.
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	logger := middleware.LoggerFrom(c)

	var req model.CouponUpdateDto
	if err := c.BodyParser(&req); err != nil {
		logger.Warn().Err(err).Msg("invalid update coupon body")
		return fail(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := h.validator.Struct(req); err != nil {
		msg := validation.Message(err)
		logger.Error().Str("validation", msg).Msg("update coupon validation failed")
		return fail(c, fiber.StatusBadRequest, msg)
	}

	dto, err := h.service.Update(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponConflict):
			logger.Error().Int("coupon_id", req.ID).Str("coupon_name", req.Name).Msg(msgCouponConflict)
			return fail(c, fiber.StatusBadRequest, msgCouponConflict)
		case errors.Is(err, service.ErrCouponNotFound):
			logger.Warn().Int("coupon_id", req.ID).Msg(msgCouponNotFound)
			return fail(c, fiber.StatusNotFound, msgCouponNotFound)
		case errors.Is(err, service.ErrInvalidRequest):
			return fail(c, fiber.StatusBadRequest, msgInvalidBody)
		}
		logger.Error().Err(err).Int("coupon_id", req.ID).Msg("failed to update coupon")
		return internalError(c)
	}

	logger.Info().Int("coupon_id", dto.ID).Msg("Coupon updated")
	return ok(c, fiber.StatusOK, dto)
}

// DeleteCoupon handles DELETE /coupons/:id.
// The envelope declares 204 while the transport status stays 200.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	logger := middleware.LoggerFrom(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, msgInvalidID)
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			logger.Warn().Int("coupon_id", id).Msg("delete of unknown coupon")
			return fail(c, fiber.StatusBadRequest, msgInvalidID)
		}
		logger.Error().Err(err).Int("coupon_id", id).Msg("failed to delete coupon")
		return internalError(c)
	}

	logger.Info().Int("coupon_id", id).Msgf("Coupon deleted %d", id)
	return ok(c, fiber.StatusNoContent, nil)
}
