package tax_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/avsoarsa/global-gourmet/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallbackCalculator_RoutesByCountry(t *testing.T) {
	us := &tax.MockCalculator{Result: &tax.TaxResult{AmountCents: 111}}
	india := &tax.MockCalculator{Result: &tax.TaxResult{AmountCents: 222}}
	calc := tax.NewFallbackCalculator(us, india, discardLogger())

	result, err := calc.CalculateTax(context.Background(), tax.TaxParams{
		ShippingAddress: tax.Address{Country: "US", State: "CA"},
		SubtotalCents:   1000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(111), result.AmountCents)

	result, err = calc.CalculateTax(context.Background(), tax.TaxParams{
		ShippingAddress: tax.Address{Country: "IN", State: "Goa"},
		SubtotalCents:   1000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(222), result.AmountCents)

	assert.Len(t, us.Calls, 1)
	assert.Len(t, india.Calls, 1)
}

func TestFallbackCalculator_DefaultRateOnFailure(t *testing.T) {
	us := &tax.MockCalculator{Err: errors.New("rate table unavailable")}
	calc := tax.NewFallbackCalculator(us, &tax.MockCalculator{}, discardLogger())

	result, err := calc.CalculateTax(context.Background(), tax.TaxParams{
		ShippingAddress: tax.Address{Country: "US", State: "CA"},
		SubtotalCents:   10000,
	})

	// Failure degrades to the flat 8% default; it never blocks checkout.
	require.NoError(t, err)
	assert.Equal(t, tax.DefaultFlatRate, result.Rate)
	assert.Equal(t, int64(800), result.AmountCents)
	assert.True(t, result.IsEstimate)
}

func TestFallbackCalculator_UnsupportedCountry(t *testing.T) {
	calc := tax.NewFallbackCalculator(&tax.MockCalculator{}, &tax.MockCalculator{}, discardLogger())

	result, err := calc.CalculateTax(context.Background(), tax.TaxParams{
		ShippingAddress: tax.Address{Country: "FR"},
		SubtotalCents:   10000,
	})

	require.NoError(t, err)
	assert.Equal(t, tax.DefaultFlatRate, result.Rate)
	assert.Equal(t, int64(800), result.AmountCents)
}
