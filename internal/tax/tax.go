package tax

import (
	"context"
)

// Calculator defines the interface for tax calculation.
// Implementations: TableCalculator (US), GSTCalculator (India),
// FallbackCalculator (wraps another calculator), MockCalculator (tests).
type Calculator interface {
	// CalculateTax computes tax for an order subtotal shipped to a location.
	// Returns tax amount in cents.
	CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error)
}

// TaxParams contains all information needed for tax calculation.
type TaxParams struct {
	ShippingAddress Address
	SubtotalCents   int64
	LineItems       []LineItem // optional; used for category-based rates
}

// Address represents a physical address for tax purposes.
type Address struct {
	City       string
	State      string
	PostalCode string
	Country    string
}

// LineItem represents a single item being taxed.
type LineItem struct {
	Description string
	Quantity    int32
	UnitCents   int64
	TotalCents  int64
	TaxCategory string // e.g. "essential", "standard", "luxury"
}

// TaxResult contains the calculated tax amount and breakdown.
type TaxResult struct {
	// Rate is the effective combined rate applied to the taxable amount.
	Rate float64

	// AmountCents is the total tax in cents.
	AmountCents int64

	// TaxableCents is the amount the rate was applied to.
	TaxableCents int64

	// Breakdown lists per-jurisdiction components (state/local for US,
	// CGST/SGST/IGST for India).
	Breakdown []Breakdown

	// IsEstimate is true when any component rate is approximated rather
	// than looked up exactly.
	IsEstimate bool
}

// Breakdown represents tax for a single jurisdiction or component.
type Breakdown struct {
	Jurisdiction string  // "state", "local", "cgst", "sgst", "igst", "category"
	Name         string  // e.g. "California", "CGST"
	Rate         float64 // e.g. 0.0725 for 7.25%
	AmountCents  int64
}

// round applies half-up rounding to a rate * cents product.
func round(cents int64, rate float64) int64 {
	return int64(float64(cents)*rate + 0.5)
}
