package tax

import (
	"github.com/avsoarsa/global-gourmet/internal/domain"
)

// Tax domain errors. Callers in the checkout flow should wrap a Calculator
// with FallbackCalculator so none of these ever block checkout.
var (
	ErrUnknownState     = domain.Errorf(domain.EINVALID, "tax.calculate", "unknown state code")
	ErrUnknownCountry   = domain.Errorf(domain.EINVALID, "tax.calculate", "no tax calculator for country")
	ErrNegativeSubtotal = domain.Errorf(domain.EINVALID, "tax.calculate", "subtotal must not be negative")
)
