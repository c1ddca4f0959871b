package address

import (
	"context"

	"github.com/avsoarsa/global-gourmet/internal/domain"
)

// MockValidator implements Validator for testing. The zero value accepts
// every address unchanged.
type MockValidator struct {
	Result *ValidationResult
	Err    error
}

func (m *MockValidator) Validate(_ context.Context, addr domain.Address) (*ValidationResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	a := addr
	return &ValidationResult{IsValid: true, Normalized: &a}, nil
}
