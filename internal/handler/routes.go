package handler

import "github.com/gofiber/fiber/v2"

// RegisterCouponRoutes mounts the coupon endpoints on r.
func RegisterCouponRoutes(r fiber.Router, h *CouponHandler) {
	coupons := r.Group("/coupons")
	coupons.Get("", h.GetCoupons)
	coupons.Get("/:id<int>", h.GetCoupon)
	coupons.Post("", h.CreateCoupon)
	coupons.Put("", h.UpdateCoupon)
	coupons.Delete("/:id<int>", h.DeleteCoupon)
}
