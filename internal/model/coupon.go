package model

import "time"

// Coupon represents a coupon in the system
type Coupon struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Percent     int       `json:"percent"`
	IsActive    bool      `json:"isActive"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// CouponDto is the read projection returned after create and update
type CouponDto struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Percent     int       `json:"percent"`
	IsActive    bool      `json:"isActive"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// CouponCreateDto is the DTO for creating a coupon. The Id is assigned by the store.
type CouponCreateDto struct {
	Name     string `json:"name" validate:"required,notblank"`
	Percent  int    `json:"percent" validate:"gte=1,lte=100"`
	IsActive bool   `json:"isActive"`
}

// CouponUpdateDto is the DTO for updating an existing coupon
type CouponUpdateDto struct {
	ID       int    `json:"id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,notblank"`
	Percent  int    `json:"percent" validate:"gte=1,lte=100"`
	IsActive bool   `json:"isActive"`
}
