package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Order status lifecycle: pending -> processing -> shipped -> delivered,
// or cancelled from any non-terminal state.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status lifecycle: pending -> paid | failed.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Order-related domain errors.
var (
	ErrOrderNotFound         = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrPaymentNotSucceeded   = &Error{Code: EPAYMENT, Message: "Payment has not succeeded"}
	ErrCartAlreadyConverted  = &Error{Code: ECONFLICT, Message: "Cart already converted to order"}
	ErrInsufficientStock     = &Error{Code: ECONFLICT, Message: "Insufficient stock for one or more items"}
	ErrEmptyCart             = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrMissingIdempotencyKey = &Error{Code: EINVALID, Message: "Idempotency key required for order submission"}
)

// Address holds denormalized shipping or billing address fields.
// Orders copy these at submission time; they are not foreign keys.
type Address struct {
	FullName   string `json:"full_name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
	Phone      string `json:"phone,omitempty"`
}

// Order is a persisted order header. Financial fields are frozen at
// submission time; later rate-table or coupon changes do not rewrite them.
type Order struct {
	ID             pgtype.UUID
	OrderNumber    string
	UserID         pgtype.UUID // may be null for guest checkout
	CartID         pgtype.UUID
	Status         string
	PaymentStatus  string
	SubtotalCents  int64
	DiscountCents  int64
	TaxCents       int64
	ShippingCents  int64
	TotalCents     int64
	Currency       string
	CouponCode     pgtype.Text
	CouponID       pgtype.UUID
	PaymentMethod  string
	PaymentIntent  pgtype.Text
	IdempotencyKey pgtype.Text
	ShippingAddr   Address
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

// OrderItem is a persisted order line. Unit price is captured at purchase
// time and decoupled from the live product price. Never mutated.
type OrderItem struct {
	ID             pgtype.UUID
	OrderID        pgtype.UUID
	ProductSKUID   pgtype.UUID
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	TotalCents     int64
}

// OrderTotals is the derived financial breakdown of an in-progress or
// submitted order. The invariant Total = Subtotal - Discount + Tax + Shipping
// holds for every value of this type produced by the checkout service.
type OrderTotals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TaxCents      int64 `json:"tax_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// Consistent returns true when the stored total matches the component sum.
func (t OrderTotals) Consistent() bool {
	return t.TotalCents == t.SubtotalCents-t.DiscountCents+t.TaxCents+t.ShippingCents
}
