package tax

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultFlatRate is applied when the wrapped calculator fails.
// Tax calculation failure must never block checkout.
const DefaultFlatRate = 0.08

// FallbackCalculator routes by destination country and degrades to a flat
// default rate on any internal failure.
type FallbackCalculator struct {
	us     Calculator
	india  Calculator
	logger *slog.Logger
}

// NewFallbackCalculator creates the production calculator: US table rates,
// India GST, and a flat 8% estimate whenever either fails or the country is
// unsupported.
func NewFallbackCalculator(us, india Calculator, logger *slog.Logger) Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackCalculator{us: us, india: india, logger: logger}
}

// CalculateTax never returns an error. Lookup failures fall back to
// DefaultFlatRate with the result flagged as an estimate.
func (c *FallbackCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	inner := c.calculatorFor(params.ShippingAddress.Country)

	if inner != nil {
		result, err := inner.CalculateTax(ctx, params)
		if err == nil {
			return result, nil
		}
		c.logger.Warn("tax calculation failed, using default rate",
			slog.String("country", params.ShippingAddress.Country),
			slog.String("error", err.Error()),
		)
	}

	amount := round(params.SubtotalCents, DefaultFlatRate)
	return &TaxResult{
		Rate:         DefaultFlatRate,
		AmountCents:  amount,
		TaxableCents: params.SubtotalCents,
		Breakdown: []Breakdown{
			{Jurisdiction: "default", Name: "Default rate", Rate: DefaultFlatRate, AmountCents: amount},
		},
		IsEstimate: true,
	}, nil
}

func (c *FallbackCalculator) calculatorFor(country string) Calculator {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "US", "USA", "UNITED STATES":
		return c.us
	case "IN", "IND", "INDIA":
		return c.india
	default:
		return nil
	}
}
