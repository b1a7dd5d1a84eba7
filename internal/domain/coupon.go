package domain

import "time"

type Coupon struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Discount  float64   `json:"discount_percentage"`
	ExpiresAt time.Time `json:"expires_at"`
	Desc      string    `json:"description"`
	CreatedAt time.Time `json:"created_at"`
}

// CouponValidation is the result of checking a code at call time.
type CouponValidation struct {
	Valid    bool     `json:"valid"`
	Discount *float64 `json:"discount_percentage,omitempty"`
	Message  string   `json:"message"`
}
