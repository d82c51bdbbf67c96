// Package mapper copies fields between the Coupon entity and its wire DTOs.
package mapper

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/fairyhunter13/coupon-api/internal/model"
)

// ToCoupon builds a new, unsaved coupon from a create request.
// Id and timestamps are left zero for the service and store to assign.
func ToCoupon(dto *model.CouponCreateDto) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := copier.Copy(&coupon, dto); err != nil {
		return nil, fmt.Errorf("map create dto: %w", err)
	}
	return &coupon, nil
}

// ToCouponDto projects a stored coupon onto the read DTO.
func ToCouponDto(coupon *model.Coupon) (*model.CouponDto, error) {
	var dto model.CouponDto
	if err := copier.Copy(&dto, coupon); err != nil {
		return nil, fmt.Errorf("map coupon dto: %w", err)
	}
	return &dto, nil
}

// ApplyUpdate copies the mutable fields of an update request onto coupon.
// Id and Created are never touched.
func ApplyUpdate(coupon *model.Coupon, dto *model.CouponUpdateDto) {
	coupon.Name = dto.Name
	coupon.Percent = dto.Percent
	coupon.IsActive = dto.IsActive
}
