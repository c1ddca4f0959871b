// Package address validates and normalizes shipping addresses before they
// reach the tax engine, which depends on clean state and postal codes.
package address

import (
	"context"

	"github.com/avsoarsa/global-gourmet/internal/domain"
)

// Validator defines the interface for address validation.
// Implementations can use external APIs like USPS, Lob, SmartyStreets, etc.
type Validator interface {
	// Validate checks whether an address is well formed. Normalized carries
	// cleaned-up values (trimmed, uppercased region codes) when valid.
	Validate(ctx context.Context, addr domain.Address) (*ValidationResult, error)
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	IsValid    bool
	Normalized *domain.Address
	Errors     []FieldError
}

// FieldError names one invalid field.
type FieldError struct {
	Field   string
	Message string
}

// AsValidationError converts the result's field errors into a domain
// validation error. Returns nil for a valid result.
func (r *ValidationResult) AsValidationError(op string) error {
	if r.IsValid {
		return nil
	}
	fields := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		fields[e.Field] = e.Message
	}
	return &domain.ValidationError{Op: op, Fields: fields}
}
