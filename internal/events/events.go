// Package events publishes order lifecycle events to NATS so downstream
// consumers (fulfillment, email, analytics) can react without coupling to
// the checkout path. Publishing is best effort: a broker outage is logged
// and never fails the order.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// SubjectOrderCreated is the subject OrderCreated events publish under,
// after any configured prefix.
const SubjectOrderCreated = "orders.created"

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close()
}

// OrderCreated is emitted once per successfully placed order.
type OrderCreated struct {
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Currency      string    `json:"currency"`
	SubtotalCents int64     `json:"subtotal_cents"`
	DiscountCents int64     `json:"discount_cents"`
	TaxCents      int64     `json:"tax_cents"`
	ShippingCents int64     `json:"shipping_cents"`
	TotalCents    int64     `json:"total_cents"`
	CouponCode    string    `json:"coupon_code,omitempty"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func marshal(event any) ([]byte, error) {
	return json.Marshal(event)
}
