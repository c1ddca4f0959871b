package tax

import (
	"context"
)

// MockCalculator implements Calculator for testing.
type MockCalculator struct {
	Result *TaxResult
	Err    error

	// Calls records the params of every invocation.
	Calls []TaxParams
}

// CalculateTax returns the configured result or error.
func (m *MockCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	m.Calls = append(m.Calls, params)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &TaxResult{TaxableCents: params.SubtotalCents}, nil
}
