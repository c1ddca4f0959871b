package shipping

import (
	"context"
)

// MockProvider is a test implementation of Provider.
type MockProvider struct {
	Rates []Rate
	Err   error
}

// GetRates returns the configured rates or error.
func (m *MockProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rates, nil
}
