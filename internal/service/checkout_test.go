package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/avsoarsa/global-gourmet/internal/address"
	"github.com/avsoarsa/global-gourmet/internal/billing"
	"github.com/avsoarsa/global-gourmet/internal/discount"
	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/repository"
	"github.com/avsoarsa/global-gourmet/internal/service"
	"github.com/avsoarsa/global-gourmet/internal/shipping"
	"github.com/avsoarsa/global-gourmet/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type checkoutEnv struct {
	store    *fakeStore
	sessions *service.SessionManager
	billing  *billing.MockProvider
	checkout service.CheckoutService
}

// newCheckoutEnv wires a checkout service over the in-memory store with a
// fixed 10% tax calculator and standard/express flat rates.
func newCheckoutEnv(t *testing.T) *checkoutEnv {
	t.Helper()

	store := newFakeStore()
	sessions := service.NewSessionManager(30 * time.Minute)
	billingMock := &billing.MockProvider{}

	taxCalc := &tax.MockCalculator{Result: &tax.TaxResult{
		Rate:        0.10,
		AmountCents: 1000,
	}}

	checkout := service.NewCheckoutService(
		sessions,
		service.NewCartService(store),
		taxCalc,
		discount.NewValidator(store, discardLogger()),
		&shipping.MockProvider{Rates: []shipping.Rate{
			{ServiceCode: "STD", ServiceName: "Standard Shipping", CostCents: 500},
			{ServiceCode: "EXP", ServiceName: "Express Shipping", CostCents: 1500},
		}},
		billingMock,
		address.NewBasicValidator(),
		discardLogger(),
	)

	return &checkoutEnv{store: store, sessions: sessions, billing: billingMock, checkout: checkout}
}

func seedCart(env *checkoutEnv, token string, subtotalCents int64) repository.Cart {
	sku := repository.ProductSKU{ID: newUUID(), Name: "Saffron Threads", SKU: "SAF-01", PriceCents: subtotalCents, Stock: 10, IsActive: true}
	env.store.mu.Lock()
	env.store.skus[uuidKey(sku.ID)] = sku
	env.store.mu.Unlock()

	return env.store.addCartWithItems(token, repository.CartItemRow{
		ProductSKUID:   sku.ID,
		ProductName:    sku.Name,
		SKU:            sku.SKU,
		Quantity:       1,
		UnitPriceCents: subtotalCents,
	})
}

func usAddress() domain.Address {
	return domain.Address{
		FullName:   "Pat Doe",
		Line1:      "1 Market St",
		City:       "San Francisco",
		State:      "CA",
		PostalCode: "94105",
		Country:    "US",
	}
}

func TestStartCheckout(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, domain.StepShipping, session.Step)
	assert.Equal(t, int64(10000), session.Totals.SubtotalCents)
	// No address yet, so no tax and no shipping.
	assert.Equal(t, int64(0), session.Totals.TaxCents)
	assert.Equal(t, int64(10000), session.Totals.TotalCents)
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	env := newCheckoutEnv(t)
	env.store.addCartWithItems("tok-empty")

	_, err := env.checkout.StartCheckout(context.Background(), "tok-empty")

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestSetShippingDetails_AdvancesToPayment(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	session, err = env.checkout.SetShippingDetails(context.Background(), session.ID, service.ShippingDetailsInput{
		Email:    "pat@example.com",
		Address:  usAddress(),
		RateCode: "STD",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StepPayment, session.Step)
	assert.Equal(t, int64(500), session.ShippingCents)
	assert.Equal(t, int64(1000), session.Totals.TaxCents)
	// total = subtotal - discount + tax + shipping
	assert.Equal(t, int64(11500), session.Totals.TotalCents)
	assert.True(t, session.Totals.Consistent())
}

func TestSetShippingDetails_UnknownRate(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	_, err = env.checkout.SetShippingDetails(context.Background(), session.ID, service.ShippingDetailsInput{
		Email:    "pat@example.com",
		Address:  usAddress(),
		RateCode: "OVERNIGHT",
	})

	assert.ErrorIs(t, err, domain.ErrUnknownRateCode)
}

func TestSetShippingDetails_InvalidEmail(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	_, err = env.checkout.SetShippingDetails(context.Background(), session.ID, service.ShippingDetailsInput{
		Email:    "not-an-email",
		Address:  usAddress(),
		RateCode: "STD",
	})

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestApplyCoupon(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)
	env.store.mu.Lock()
	env.store.coupons["SAVE10"] = domain.Coupon{
		ID: newUUID(), Code: "SAVE10",
		DiscountType: domain.DiscountTypePercentage, DiscountValue: 10,
		IsActive: true,
	}
	env.store.mu.Unlock()

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	session, err = env.checkout.ApplyCoupon(context.Background(), session.ID, "SAVE10")

	require.NoError(t, err)
	assert.Equal(t, "SAVE10", session.CouponCode)
	assert.Equal(t, int64(1000), session.DiscountCents)
	assert.Equal(t, int64(9000), session.Totals.TotalCents)
	assert.True(t, session.Totals.Consistent())
}

func TestApplyCoupon_InvalidCodeRecordsReason(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	session, err = env.checkout.ApplyCoupon(context.Background(), session.ID, "BOGUS")

	require.NoError(t, err)
	assert.Empty(t, session.CouponCode)
	assert.Equal(t, "Invalid coupon code", session.CouponReason)
	assert.Zero(t, session.DiscountCents)
	assert.Equal(t, int64(10000), session.Totals.TotalCents)
}

func TestPreparePayment(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	session, err = env.checkout.SetShippingDetails(context.Background(), session.ID, service.ShippingDetailsInput{
		Email:    "pat@example.com",
		Address:  usAddress(),
		RateCode: "STD",
	})
	require.NoError(t, err)

	session, err = env.checkout.PreparePayment(context.Background(), session.ID, service.PaymentDetailsInput{})

	require.NoError(t, err)
	assert.Equal(t, domain.StepReview, session.Step)
	assert.NotEmpty(t, session.PaymentIntentID)
	assert.NotEmpty(t, session.ClientSecret)
	// Method defaults to card; billing address defaults to shipping.
	assert.Equal(t, "card", session.PaymentMethod)
	assert.Nil(t, session.BillingAddress)
	require.NotNil(t, env.billing.LastCreate)
	assert.Equal(t, session.Totals.TotalCents, env.billing.LastCreate.AmountCents)
	assert.Equal(t, "usd", env.billing.LastCreate.Currency)
}

func TestPreparePayment_StoresPaymentDetails(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	session, err = env.checkout.SetShippingDetails(context.Background(), session.ID, service.ShippingDetailsInput{
		Email:    "pat@example.com",
		Address:  usAddress(),
		RateCode: "STD",
	})
	require.NoError(t, err)

	billing := domain.Address{
		FullName:   "Pat Doe",
		Line1:      "9 Pine St",
		City:       "Portland",
		State:      "or",
		PostalCode: "97205",
		Country:    "US",
	}
	session, err = env.checkout.PreparePayment(context.Background(), session.ID, service.PaymentDetailsInput{
		PaymentMethod:  "upi",
		BillingAddress: &billing,
	})

	require.NoError(t, err)
	assert.Equal(t, "upi", session.PaymentMethod)
	require.NotNil(t, session.BillingAddress)
	assert.Equal(t, "OR", session.BillingAddress.State)
	assert.Equal(t, "9 Pine St", session.BillingAddress.Line1)

	// The stored details survive a later read of the session.
	again, err := env.checkout.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "upi", again.PaymentMethod)
	require.NotNil(t, again.BillingAddress)
	assert.Equal(t, "OR", again.BillingAddress.State)
}

func TestPreparePayment_InvalidBillingAddress(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	session, err = env.checkout.SetShippingDetails(context.Background(), session.ID, service.ShippingDetailsInput{
		Email:    "pat@example.com",
		Address:  usAddress(),
		RateCode: "STD",
	})
	require.NoError(t, err)

	billing := usAddress()
	billing.PostalCode = "ABCDE"
	_, err = env.checkout.PreparePayment(context.Background(), session.ID, service.PaymentDetailsInput{
		BillingAddress: &billing,
	})

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestPreparePayment_UnknownMethod(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	_, err = env.checkout.PreparePayment(context.Background(), session.ID, service.PaymentDetailsInput{
		PaymentMethod: "cheque",
	})

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestPreparePayment_RequiresShipping(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	session, err := env.checkout.StartCheckout(context.Background(), "tok-1")
	require.NoError(t, err)

	_, err = env.checkout.PreparePayment(context.Background(), session.ID, service.PaymentDetailsInput{})

	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, domain.StepShipping, stepErr.Missing)
}

func TestGetSession_Expired(t *testing.T) {
	env := newCheckoutEnv(t)
	seedCart(env, "tok-1", 10000)

	// A negative TTL expires the session the moment it is created.
	expired := service.NewSessionManager(-time.Second)
	session := expired.Create("cart-id", "tok-1")

	_, err := expired.Get(session.ID)

	assert.ErrorIs(t, err, domain.ErrCheckoutNotFound)
}

func TestGetSession_Unknown(t *testing.T) {
	env := newCheckoutEnv(t)

	_, err := env.checkout.GetSession(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrCheckoutNotFound)
}
