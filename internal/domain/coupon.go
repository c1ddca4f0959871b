package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Discount types for coupons.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Coupon-related domain errors.
var (
	ErrCouponNotFound      = &Error{Code: ENOTFOUND, Message: "Coupon not found"}
	ErrDuplicateCouponCode = &Error{Code: ECONFLICT, Message: "Coupon code already exists"}
)

// Coupon is a discount code with eligibility rules. Created and edited by
// admins; usage_count is incremented atomically when applied to an order.
// Coupons referenced by historical orders are deactivated, never deleted.
type Coupon struct {
	ID                pgtype.UUID
	Code              string
	DiscountType      string // "percentage" or "fixed"
	DiscountValue     int64  // percent (0-100] for percentage, cents for fixed
	MinimumOrderCents int64
	IsActive          bool
	StartsAt          pgtype.Timestamptz // optional validity window start
	EndsAt            pgtype.Timestamptz // optional validity window end
	UsageLimit        pgtype.Int4        // optional redemption cap
	UsageCount        int32
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

// DiscountCents computes the discount this coupon grants against the given
// subtotal, clamped so the discount never exceeds the subtotal. The clamp
// guarantees total >= tax + shipping for any order the coupon is applied to.
func (c Coupon) DiscountCents(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}

	var discount int64
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = subtotalCents * c.DiscountValue / 100
	case DiscountTypeFixed:
		discount = c.DiscountValue
	default:
		return 0
	}

	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
