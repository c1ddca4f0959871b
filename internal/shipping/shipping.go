package shipping

import (
	"context"
	"time"
)

// Provider defines the interface for shipping rate quoting.
// Implementations can integrate with carriers like FedEx, UPS, USPS, etc.
type Provider interface {
	// GetRates returns available shipping options for a destination.
	GetRates(ctx context.Context, params RateParams) ([]Rate, error)
}

// RateParams contains parameters for calculating shipping rates.
type RateParams struct {
	DestinationAddress ShippingAddress
	ItemCount          int32
	SubtotalCents      int64
}

// ShippingAddress represents a complete shipping address.
type ShippingAddress struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

// Rate represents a shipping rate option.
type Rate struct {
	RateID                string
	Carrier               string
	ServiceName           string
	ServiceCode           string
	CostCents             int64
	EstimatedDaysMin      int
	EstimatedDaysMax      int
	EstimatedDeliveryDate time.Time
}
