// Package discount validates coupon codes against eligibility rules and
// computes the discount they grant. Rejections are results, not errors:
// an invalid code never blocks checkout, it just yields zero discount.
package discount

import (
	"context"
	"errors"
	"log/slog"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/repository"
	"github.com/jackc/pgx/v5"

	"time"
)

// Result is the outcome of validating a coupon against a subtotal.
type Result struct {
	Valid         bool
	Reason        string // human-readable rejection reason, empty when valid
	Coupon        *domain.Coupon
	DiscountCents int64
}

// Validator checks coupon eligibility.
type Validator interface {
	// ValidateCoupon resolves a code against a subtotal. A nil error with
	// Valid=false means the coupon was rejected for a user-facing reason.
	ValidateCoupon(ctx context.Context, code string, subtotalCents int64) (*Result, error)
}

type validator struct {
	repo   repository.Querier
	logger *slog.Logger
	now    func() time.Time
}

// NewValidator creates a repository-backed coupon validator.
func NewValidator(repo repository.Querier, logger *slog.Logger) Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &validator{repo: repo, logger: logger, now: time.Now}
}

// NewValidatorAt is NewValidator with an injected clock, for tests.
func NewValidatorAt(repo repository.Querier, logger *slog.Logger, now func() time.Time) Validator {
	v := NewValidator(repo, logger).(*validator)
	v.now = now
	return v
}

func rejected(reason string) *Result {
	return &Result{Valid: false, Reason: reason}
}

// ValidateCoupon applies the eligibility checks in order: existence, active
// flag, validity window, minimum order amount, usage cap. Repository failures
// degrade to a rejection so a storage hiccup never blocks checkout.
func (v *validator) ValidateCoupon(ctx context.Context, code string, subtotalCents int64) (*Result, error) {
	if code == "" {
		return rejected("No coupon code provided"), nil
	}

	coupon, err := v.repo.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rejected("Invalid coupon code"), nil
		}
		v.logger.Warn("coupon lookup failed, treating as invalid",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return rejected("Coupon could not be verified"), nil
	}

	if !coupon.IsActive {
		return rejected("This coupon is no longer active"), nil
	}

	now := v.now()
	if coupon.StartsAt.Valid && now.Before(coupon.StartsAt.Time) {
		return rejected("This coupon is not yet valid"), nil
	}
	if coupon.EndsAt.Valid && now.After(coupon.EndsAt.Time) {
		return rejected("This coupon has expired"), nil
	}

	if subtotalCents < coupon.MinimumOrderCents {
		return rejected("Order does not meet the coupon minimum"), nil
	}

	if coupon.UsageLimit.Valid && coupon.UsageCount >= coupon.UsageLimit.Int32 {
		return rejected("This coupon has reached its usage limit"), nil
	}

	return &Result{
		Valid:         true,
		Coupon:        &coupon,
		DiscountCents: coupon.DiscountCents(subtotalCents),
	}, nil
}

// ValidateCouponInput is the admin-entry shape for creating or updating a
// coupon. Percentage values above 100 are rejected here so a coupon can never
// promise more than the order subtotal.
type ValidateCouponInput struct {
	Code              string `json:"code" validate:"required,alphanum,min=3,max=32"`
	DiscountType      string `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue     int64  `json:"discount_value" validate:"required,gt=0"`
	MinimumOrderCents int64  `json:"minimum_order_cents" validate:"gte=0"`
	UsageLimit        int32  `json:"usage_limit,omitempty" validate:"gte=0"`
}

// CheckAdminInput enforces rules the struct tags cannot express.
func CheckAdminInput(in ValidateCouponInput) error {
	if in.DiscountType == domain.DiscountTypePercentage && in.DiscountValue > 100 {
		return domain.NewValidationError("coupon.create", "discount_value",
			"Percentage discount cannot exceed 100")
	}
	return nil
}
