package discount_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/avsoarsa/global-gourmet/internal/discount"
	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo stubs the single repository method the validator touches.
// Unimplemented Querier methods panic via the embedded interface.
type fakeRepo struct {
	repository.Querier
	coupon domain.Coupon
	err    error
}

func (f *fakeRepo) GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error) {
	if f.err != nil {
		return domain.Coupon{}, f.err
	}
	return f.coupon, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newValidator(repo repository.Querier) discount.Validator {
	return discount.NewValidatorAt(repo, testLogger(), fixedNow)
}

func activeCoupon() domain.Coupon {
	return domain.Coupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: 10,
		IsActive:      true,
	}
}

func TestValidateCoupon_Percentage(t *testing.T) {
	c := activeCoupon()
	c.MinimumOrderCents = 2000

	// Scenario: subtotal $50.00, SAVE10 10%, minimum $20.00 -> discount $5.00.
	result, err := newValidator(&fakeRepo{coupon: c}).ValidateCoupon(context.Background(), "SAVE10", 5000)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, int64(500), result.DiscountCents)
}

func TestValidateCoupon_FixedClampedToSubtotal(t *testing.T) {
	c := activeCoupon()
	c.DiscountType = domain.DiscountTypeFixed
	c.DiscountValue = 2000 // $20 off

	v := newValidator(&fakeRepo{coupon: c})

	result, err := v.ValidateCoupon(context.Background(), "SAVE10", 1500)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	// discount = min(value, subtotal); total never goes below tax + shipping.
	assert.Equal(t, int64(1500), result.DiscountCents)

	result, err = v.ValidateCoupon(context.Background(), "SAVE10", 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), result.DiscountCents)
}

func TestValidateCoupon_UnknownCode(t *testing.T) {
	result, err := newValidator(&fakeRepo{err: pgx.ErrNoRows}).ValidateCoupon(context.Background(), "NOPE", 5000)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Invalid coupon code", result.Reason)
	assert.Zero(t, result.DiscountCents)
}

func TestValidateCoupon_Inactive(t *testing.T) {
	c := activeCoupon()
	c.IsActive = false

	result, err := newValidator(&fakeRepo{coupon: c}).ValidateCoupon(context.Background(), "SAVE10", 5000)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "This coupon is no longer active", result.Reason)
}

func TestValidateCoupon_ValidityWindow(t *testing.T) {
	notYet := activeCoupon()
	notYet.StartsAt = pgtype.Timestamptz{Time: fixedNow().Add(24 * time.Hour), Valid: true}

	result, err := newValidator(&fakeRepo{coupon: notYet}).ValidateCoupon(context.Background(), "SAVE10", 5000)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "This coupon is not yet valid", result.Reason)

	expired := activeCoupon()
	expired.EndsAt = pgtype.Timestamptz{Time: fixedNow().Add(-24 * time.Hour), Valid: true}

	result, err = newValidator(&fakeRepo{coupon: expired}).ValidateCoupon(context.Background(), "SAVE10", 5000)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "This coupon has expired", result.Reason)
}

func TestValidateCoupon_MinimumOrder(t *testing.T) {
	c := activeCoupon()
	c.MinimumOrderCents = 2000

	result, err := newValidator(&fakeRepo{coupon: c}).ValidateCoupon(context.Background(), "SAVE10", 1999)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Order does not meet the coupon minimum", result.Reason)
}

func TestValidateCoupon_UsageLimit(t *testing.T) {
	c := activeCoupon()
	c.UsageLimit = pgtype.Int4{Int32: 5, Valid: true}
	c.UsageCount = 5

	result, err := newValidator(&fakeRepo{coupon: c}).ValidateCoupon(context.Background(), "SAVE10", 5000)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "This coupon has reached its usage limit", result.Reason)
}

func TestValidateCoupon_RepositoryFailureDegrades(t *testing.T) {
	result, err := newValidator(&fakeRepo{err: errors.New("connection refused")}).
		ValidateCoupon(context.Background(), "SAVE10", 5000)

	// Storage hiccups must not block checkout; the coupon is just rejected.
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Zero(t, result.DiscountCents)
}

func TestValidateCoupon_EmptyCode(t *testing.T) {
	result, err := newValidator(&fakeRepo{}).ValidateCoupon(context.Background(), "", 5000)

	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestCheckAdminInput_PercentageOver100(t *testing.T) {
	err := discount.CheckAdminInput(discount.ValidateCouponInput{
		Code:          "MEGA",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: 150,
	})

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	fields := domain.GetValidationFields(err)
	assert.Contains(t, fields, "discount_value")
}

func TestCheckAdminInput_FixedOver100Allowed(t *testing.T) {
	// Fixed discounts are cents, not percent; large values are legal and
	// clamped at application time instead.
	err := discount.CheckAdminInput(discount.ValidateCouponInput{
		Code:          "BIGFLAT",
		DiscountType:  domain.DiscountTypeFixed,
		DiscountValue: 10000,
	})

	assert.NoError(t, err)
}
