package address

import (
	"context"
	"regexp"
	"strings"

	"github.com/avsoarsa/global-gourmet/internal/domain"
)

var (
	usZipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	usStatePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	inPinPattern   = regexp.MustCompile(`^\d{6}$`)
)

// BasicValidator performs format validation without external API calls:
// required fields plus country-specific postal and region formats.
type BasicValidator struct{}

// NewBasicValidator creates a new basic address validator.
func NewBasicValidator() Validator {
	return &BasicValidator{}
}

// Validate checks required fields and postal formats for the countries the
// store ships to. Unknown countries only get the required-field checks.
func (v *BasicValidator) Validate(_ context.Context, addr domain.Address) (*ValidationResult, error) {
	normalized := domain.Address{
		FullName:   strings.TrimSpace(addr.FullName),
		Line1:      strings.TrimSpace(addr.Line1),
		Line2:      strings.TrimSpace(addr.Line2),
		City:       strings.TrimSpace(addr.City),
		State:      strings.ToUpper(strings.TrimSpace(addr.State)),
		PostalCode: strings.TrimSpace(addr.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(addr.Country)),
		Phone:      strings.TrimSpace(addr.Phone),
	}

	var errs []FieldError
	if normalized.FullName == "" {
		errs = append(errs, FieldError{Field: "full_name", Message: "Full name is required"})
	}
	if normalized.Line1 == "" {
		errs = append(errs, FieldError{Field: "line1", Message: "Address line is required"})
	}
	if normalized.City == "" {
		errs = append(errs, FieldError{Field: "city", Message: "City is required"})
	}
	if normalized.Country == "" {
		errs = append(errs, FieldError{Field: "country", Message: "Country is required"})
	}

	switch normalized.Country {
	case "US", "USA":
		if !usStatePattern.MatchString(normalized.State) {
			errs = append(errs, FieldError{Field: "state", Message: "US state must be a two-letter code"})
		}
		if !usZipPattern.MatchString(normalized.PostalCode) {
			errs = append(errs, FieldError{Field: "postal_code", Message: "ZIP code must be 5 digits (optionally ZIP+4)"})
		} else if i := strings.IndexByte(normalized.PostalCode, '-'); i > 0 {
			// Rate tables key on the 5-digit prefix.
			normalized.PostalCode = normalized.PostalCode[:i]
		}
	case "IN", "IND":
		if normalized.PostalCode != "" && !inPinPattern.MatchString(normalized.PostalCode) {
			errs = append(errs, FieldError{Field: "postal_code", Message: "PIN code must be 6 digits"})
		}
	}

	if len(errs) > 0 {
		return &ValidationResult{IsValid: false, Errors: errs}, nil
	}
	return &ValidationResult{IsValid: true, Normalized: &normalized}, nil
}
