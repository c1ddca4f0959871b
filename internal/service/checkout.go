package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avsoarsa/global-gourmet/internal/address"
	"github.com/avsoarsa/global-gourmet/internal/billing"
	"github.com/avsoarsa/global-gourmet/internal/discount"
	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/shipping"
	"github.com/avsoarsa/global-gourmet/internal/tax"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CheckoutSession holds the state a shopper accumulates while moving through
// the checkout wizard. Sessions are server-side with a TTL; handlers carry
// only the opaque session ID. All money fields are cents.
type CheckoutSession struct {
	ID        string
	CartID    string
	CartToken string
	Step      domain.CheckoutStep

	Email            string
	ShippingAddress  *domain.Address
	ShippingRateCode string
	ShippingCents    int64

	CouponCode    string
	CouponReason  string // rejection reason when the last applied code was invalid
	DiscountCents int64

	Tax    *tax.TaxResult
	Totals domain.OrderTotals

	// PaymentMethod is the shopper's chosen method label, frozen onto the
	// order at submission. BillingAddress is nil when it matches shipping.
	PaymentMethod  string
	BillingAddress *domain.Address

	PaymentIntentID string
	ClientSecret    string

	// OrderID is set when the session reaches confirmation.
	OrderID     string
	OrderNumber string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Completed reports whether the session has already produced an order.
func (s *CheckoutSession) Completed() bool {
	return s.Step == domain.StepConfirmation
}

// SessionManager stores checkout sessions in memory with expiry. Sessions
// are transient wizard state; the durable artifacts are the cart and the
// order rows, so process restart loses nothing a shopper cannot redo.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a manager whose sessions expire after ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*CheckoutSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session at the shipping step.
func (m *SessionManager) Create(cartID, cartToken string) *CheckoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	session := &CheckoutSession{
		ID:        uuid.NewString(),
		CartID:    cartID,
		CartToken: cartToken,
		Step:      domain.StepShipping,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.sessions[session.ID] = session
	return snapshot(session)
}

// Get returns a copy of the session, or ErrCheckoutNotFound when the ID is
// unknown or the session has expired.
func (m *SessionManager) Get(id string) (*CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || m.now().After(session.ExpiresAt) {
		delete(m.sessions, id)
		return nil, domain.ErrCheckoutNotFound
	}
	return snapshot(session), nil
}

// Update applies fn to the session under the manager lock and returns the
// updated copy. Each mutation extends the TTL.
func (m *SessionManager) Update(id string, fn func(*CheckoutSession) error) (*CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || m.now().After(session.ExpiresAt) {
		delete(m.sessions, id)
		return nil, domain.ErrCheckoutNotFound
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.ExpiresAt = m.now().Add(m.ttl)
	return snapshot(session), nil
}

// Delete removes a session.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Sweep removes expired sessions every interval until ctx is cancelled.
func (m *SessionManager) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			now := m.now()
			for id, session := range m.sessions {
				if now.After(session.ExpiresAt) {
					delete(m.sessions, id)
				}
			}
			m.mu.Unlock()
		}
	}
}

func snapshot(s *CheckoutSession) *CheckoutSession {
	copied := *s
	if s.ShippingAddress != nil {
		addr := *s.ShippingAddress
		copied.ShippingAddress = &addr
	}
	if s.BillingAddress != nil {
		addr := *s.BillingAddress
		copied.BillingAddress = &addr
	}
	if s.Tax != nil {
		t := *s.Tax
		copied.Tax = &t
	}
	return &copied
}

// ShippingDetailsInput is the payload for the shipping step.
type ShippingDetailsInput struct {
	Email    string         `json:"email" validate:"required,email"`
	Address  domain.Address `json:"address" validate:"required"`
	RateCode string         `json:"rate_code" validate:"required"`
}

// PaymentDetailsInput is the payload for the payment step. PaymentMethod
// defaults to card; BillingAddress defaults to the shipping address when
// omitted.
type PaymentDetailsInput struct {
	PaymentMethod  string          `json:"payment_method" validate:"omitempty,oneof=card upi netbanking wallet"`
	BillingAddress *domain.Address `json:"billing_address,omitempty"`
}

// CheckoutService drives the checkout wizard: shipping, payment, review.
// Order submission lives on OrderService.
type CheckoutService interface {
	// StartCheckout opens a session for a non-empty cart.
	StartCheckout(ctx context.Context, cartSessionToken string) (*CheckoutSession, error)

	GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// SetShippingDetails records address, email, and chosen rate, then
	// advances the wizard to the payment step.
	SetShippingDetails(ctx context.Context, sessionID string, in ShippingDetailsInput) (*CheckoutSession, error)

	// ApplyCoupon validates a code against the cart subtotal. An invalid
	// code is recorded with its rejection reason, not returned as an error.
	// An empty code clears any applied coupon.
	ApplyCoupon(ctx context.Context, sessionID string, code string) (*CheckoutSession, error)

	// PreparePayment records the chosen payment method and optional
	// billing address, recomputes totals, creates the payment intent, and
	// advances the wizard to the review step.
	PreparePayment(ctx context.Context, sessionID string, in PaymentDetailsInput) (*CheckoutSession, error)

	// GetShippingRates quotes rates for a destination without a session.
	GetShippingRates(ctx context.Context, addr domain.Address, itemCount int32, subtotalCents int64) ([]shipping.Rate, error)

	// QuoteTax exposes the tax engine for ad-hoc quotes.
	QuoteTax(ctx context.Context, params tax.TaxParams) (*tax.TaxResult, error)
}

type checkoutService struct {
	sessions  *SessionManager
	carts     CartService
	tax       tax.Calculator
	coupons   discount.Validator
	shipping  shipping.Provider
	billing   PaymentProvider
	addresses address.Validator
	validate  *validator.Validate
	logger    *slog.Logger
}

// PaymentProvider is the slice of the billing provider checkout needs.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, params billing.CreatePaymentIntentParams) (*billing.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*billing.PaymentIntent, error)
}

// NewCheckoutService wires the wizard's collaborators.
func NewCheckoutService(
	sessions *SessionManager,
	carts CartService,
	taxCalc tax.Calculator,
	coupons discount.Validator,
	shippingProvider shipping.Provider,
	billingProvider PaymentProvider,
	addresses address.Validator,
	logger *slog.Logger,
) CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	if addresses == nil {
		addresses = address.NewBasicValidator()
	}
	return &checkoutService{
		sessions:  sessions,
		carts:     carts,
		tax:       taxCalc,
		coupons:   coupons,
		shipping:  shippingProvider,
		billing:   billingProvider,
		addresses: addresses,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

func (s *checkoutService) StartCheckout(ctx context.Context, cartSessionToken string) (*CheckoutSession, error) {
	summary, token, err := s.carts.GetOrCreateCart(ctx, cartSessionToken)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	session := s.sessions.Create(uuidString(summary.Cart.ID), token)
	return s.recalculate(ctx, session.ID, summary)
}

func (s *checkoutService) GetSession(_ context.Context, sessionID string) (*CheckoutSession, error) {
	return s.sessions.Get(sessionID)
}

func (s *checkoutService) SetShippingDetails(ctx context.Context, sessionID string, in ShippingDetailsInput) (*CheckoutSession, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError("checkout.shipping", err)
	}

	checked, err := s.addresses.Validate(ctx, in.Address)
	if err != nil {
		return nil, fmt.Errorf("address validation failed: %w", err)
	}
	if !checked.IsValid {
		return nil, checked.AsValidationError("checkout.shipping")
	}
	in.Address = *checked.Normalized

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, domain.ErrCheckoutComplete
	}

	summary, err := s.carts.GetCartSummary(ctx, session.CartID)
	if err != nil {
		return nil, err
	}

	rates, err := s.GetShippingRates(ctx, in.Address, int32(summary.ItemCount), summary.SubtotalCents)
	if err != nil {
		return nil, err
	}
	rate, err := findRate(rates, in.RateCode)
	if err != nil {
		return nil, err
	}

	updated, err := s.sessions.Update(sessionID, func(cs *CheckoutSession) error {
		addr := in.Address
		cs.Email = in.Email
		cs.ShippingAddress = &addr
		cs.ShippingRateCode = rate.ServiceCode
		cs.ShippingCents = rate.CostCents
		if cs.Step == domain.StepShipping {
			cs.Step = domain.StepPayment
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.recalculate(ctx, updated.ID, summary)
}

func (s *checkoutService) ApplyCoupon(ctx context.Context, sessionID string, code string) (*CheckoutSession, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, domain.ErrCheckoutComplete
	}

	summary, err := s.carts.GetCartSummary(ctx, session.CartID)
	if err != nil {
		return nil, err
	}

	var applied string
	var reason string
	if code != "" {
		result, err := s.coupons.ValidateCoupon(ctx, code, summary.SubtotalCents)
		if err != nil {
			return nil, err
		}
		if result.Valid {
			applied = result.Coupon.Code
		} else {
			reason = result.Reason
		}
	}

	_, err = s.sessions.Update(sessionID, func(cs *CheckoutSession) error {
		cs.CouponCode = applied
		cs.CouponReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.recalculate(ctx, sessionID, summary)
}

func (s *checkoutService) PreparePayment(ctx context.Context, sessionID string, in PaymentDetailsInput) (*CheckoutSession, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError("checkout.payment", err)
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "card"
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, domain.ErrCheckoutComplete
	}
	if session.ShippingAddress == nil {
		return nil, &domain.StepError{
			Missing: domain.StepShipping,
			Reason:  "Shipping details are required before payment",
		}
	}

	if in.BillingAddress != nil {
		checked, err := s.addresses.Validate(ctx, *in.BillingAddress)
		if err != nil {
			return nil, fmt.Errorf("address validation failed: %w", err)
		}
		if !checked.IsValid {
			return nil, checked.AsValidationError("checkout.payment")
		}
		in.BillingAddress = checked.Normalized
	}

	summary, err := s.carts.GetCartSummary(ctx, session.CartID)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	session, err = s.recalculate(ctx, sessionID, summary)
	if err != nil {
		return nil, err
	}

	intent, err := s.billing.CreatePaymentIntent(ctx, billing.CreatePaymentIntentParams{
		AmountCents:    session.Totals.TotalCents,
		Currency:       currencyFor(session.ShippingAddress.Country),
		CustomerEmail:  session.Email,
		IdempotencyKey: "checkout_" + session.ID,
		Metadata: map[string]string{
			"checkout_session_id": session.ID,
			"cart_id":             session.CartID,
		},
	})
	if err != nil {
		return nil, domain.Errorf(domain.EPAYMENT, "checkout.payment", "Failed to initialize payment")
	}

	return s.sessions.Update(sessionID, func(cs *CheckoutSession) error {
		cs.PaymentMethod = in.PaymentMethod
		cs.BillingAddress = in.BillingAddress
		cs.PaymentIntentID = intent.ID
		cs.ClientSecret = intent.ClientSecret
		if cs.Step.Before(domain.StepReview) {
			cs.Step = domain.StepReview
		}
		return nil
	})
}

func (s *checkoutService) GetShippingRates(ctx context.Context, addr domain.Address, itemCount int32, subtotalCents int64) ([]shipping.Rate, error) {
	rates, err := s.shipping.GetRates(ctx, shipping.RateParams{
		DestinationAddress: shipping.ShippingAddress{
			Name:       addr.FullName,
			Line1:      addr.Line1,
			Line2:      addr.Line2,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
			Phone:      addr.Phone,
		},
		ItemCount:     itemCount,
		SubtotalCents: subtotalCents,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get shipping rates: %w", err)
	}
	if len(rates) == 0 {
		return nil, domain.ErrNoShippingRates
	}
	return rates, nil
}

func (s *checkoutService) QuoteTax(ctx context.Context, params tax.TaxParams) (*tax.TaxResult, error) {
	return s.tax.CalculateTax(ctx, params)
}

// recalculate rebuilds the session totals from the live cart. Order of
// operations: discount applies to the subtotal, tax applies to the
// discounted base, shipping is added last.
func (s *checkoutService) recalculate(ctx context.Context, sessionID string, summary *CartSummary) (*CheckoutSession, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	subtotal := summary.SubtotalCents

	var discountCents int64
	couponCode := session.CouponCode
	couponReason := session.CouponReason
	if couponCode != "" {
		result, err := s.coupons.ValidateCoupon(ctx, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
		if result.Valid {
			discountCents = result.DiscountCents
		} else {
			// Cart changes can invalidate a previously applied coupon,
			// e.g. dropping below its minimum.
			couponCode = ""
			couponReason = result.Reason
		}
	}

	taxable := subtotal - discountCents

	var taxResult *tax.TaxResult
	var taxCents int64
	if session.ShippingAddress != nil {
		taxResult, err = s.tax.CalculateTax(ctx, tax.TaxParams{
			ShippingAddress: tax.Address{
				City:       session.ShippingAddress.City,
				State:      session.ShippingAddress.State,
				PostalCode: session.ShippingAddress.PostalCode,
				Country:    session.ShippingAddress.Country,
			},
			SubtotalCents: taxable,
			LineItems:     taxLineItems(summary.Items),
		})
		if err != nil {
			// The fallback calculator absorbs failures; reaching here means
			// even it errored, which we treat as zero tax rather than
			// blocking checkout.
			s.logger.Error("tax calculation failed", slog.String("error", err.Error()))
			taxResult = nil
		}
		if taxResult != nil {
			taxCents = taxResult.AmountCents
		}
	}

	totals := domain.OrderTotals{
		SubtotalCents: subtotal,
		DiscountCents: discountCents,
		TaxCents:      taxCents,
		ShippingCents: session.ShippingCents,
	}
	totals.TotalCents = totals.SubtotalCents - totals.DiscountCents + totals.TaxCents + totals.ShippingCents

	return s.sessions.Update(sessionID, func(cs *CheckoutSession) error {
		cs.CouponCode = couponCode
		cs.CouponReason = couponReason
		cs.DiscountCents = discountCents
		cs.Tax = taxResult
		cs.Totals = totals
		return nil
	})
}

func taxLineItems(items []CartItem) []tax.LineItem {
	out := make([]tax.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, tax.LineItem{
			Description: item.ProductName,
			Quantity:    item.Quantity,
			UnitCents:   item.UnitPriceCents,
			TotalCents:  item.LineSubtotal,
			TaxCategory: item.TaxCategory,
		})
	}
	return out
}

func findRate(rates []shipping.Rate, code string) (*shipping.Rate, error) {
	for i := range rates {
		if rates[i].ServiceCode == code {
			return &rates[i], nil
		}
	}
	return nil, domain.ErrUnknownRateCode
}

func currencyFor(country string) string {
	switch country {
	case "IN", "IND", "India":
		return "inr"
	default:
		return "usd"
	}
}

// validationError converts validator.v10 failures into field-level domain
// validation errors.
func validationError(op string, err error) error {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return domain.Invalid(op, err.Error())
	}

	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fe.Field()] = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &domain.ValidationError{Op: op, Fields: fields}
}
