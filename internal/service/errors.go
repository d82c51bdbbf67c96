package service

import "errors"

var (
	// ErrCouponExists is returned when attempting to create a coupon whose name is already taken
	ErrCouponExists = errors.New("coupon name already exists")

	// ErrCouponConflict is returned when an update would give a coupon the name of another coupon
	ErrCouponConflict = errors.New("coupon name or coupon id already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrInvalidRequest is returned when request data is nil or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)
