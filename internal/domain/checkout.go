package domain

// Checkout wizard steps, in order. Each step requires the previous step's
// required fields to be populated before the transition is allowed.
type CheckoutStep string

const (
	StepShipping     CheckoutStep = "shipping"
	StepPayment      CheckoutStep = "payment"
	StepReview       CheckoutStep = "review"
	StepConfirmation CheckoutStep = "confirmation"
)

// checkoutOrder defines wizard ordering for comparisons.
var checkoutOrder = map[CheckoutStep]int{
	StepShipping:     0,
	StepPayment:      1,
	StepReview:       2,
	StepConfirmation: 3,
}

// Before reports whether s comes before other in the wizard.
func (s CheckoutStep) Before(other CheckoutStep) bool {
	return checkoutOrder[s] < checkoutOrder[other]
}

// Valid reports whether s names a known wizard step.
func (s CheckoutStep) Valid() bool {
	_, ok := checkoutOrder[s]
	return ok
}

// StepError is returned when a checkout transition is attempted before the
// prerequisite step is complete. Handlers redirect the user back to Missing
// rather than surfacing a hard error.
type StepError struct {
	// Missing is the earliest incomplete step the caller must return to.
	Missing CheckoutStep

	// Reason describes the missing data, safe to show to users.
	Reason string
}

func (e *StepError) Error() string {
	return e.Reason
}

// Checkout session errors.
var (
	ErrCheckoutNotFound  = &Error{Code: ENOTFOUND, Message: "Checkout session not found or expired"}
	ErrCheckoutComplete  = &Error{Code: ECONFLICT, Message: "Checkout session already completed"}
	ErrCartNotFound      = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrProductNotFound   = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrInvalidQuantity   = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrNoShippingRates   = &Error{Code: EINVALID, Message: "No shipping rates available for destination"}
	ErrUnknownRateCode   = &Error{Code: EINVALID, Message: "Unknown shipping rate code"}
)
