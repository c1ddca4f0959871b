package billing

import (
	"context"
	"time"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, PayPal, Square, etc.
type Provider interface {
	// CreatePaymentIntent creates a payment intent for one-time charges.
	// Returns payment intent with client_secret for frontend confirmation.
	CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error)

	// GetPaymentIntent retrieves an existing payment intent, used to verify
	// payment before creating an order.
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// CreatePaymentIntentParams contains parameters for creating a payment intent.
type CreatePaymentIntentParams struct {
	// AmountCents is the amount in smallest currency unit (cents for USD).
	AmountCents int64

	// Currency code (ISO 4217) - e.g., "usd", "inr".
	Currency string

	// CustomerEmail is used to prefill customer email in the payment sheet.
	CustomerEmail string

	// IdempotencyKey makes retried creates safe.
	IdempotencyKey string

	// Metadata is attached to the intent for reconciliation.
	Metadata map[string]string
}

// PaymentIntent represents an in-flight or settled payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string // "requires_payment_method", "succeeded", ...
	Metadata     map[string]string
	CreatedAt    time.Time
}

// Succeeded reports whether the payment has settled.
func (p *PaymentIntent) Succeeded() bool {
	return p.Status == "succeeded"
}
