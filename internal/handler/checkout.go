package handler

import (
	"net/http"
	"time"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/service"
	"github.com/avsoarsa/global-gourmet/internal/tax"
)

// CheckoutHandler exposes the checkout wizard over JSON.
type CheckoutHandler struct {
	checkout service.CheckoutService
	orders   service.OrderService
}

// NewCheckoutHandler creates the checkout API handler.
func NewCheckoutHandler(checkout service.CheckoutService, orders service.OrderService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, orders: orders}
}

type sessionResponse struct {
	ID               string             `json:"id"`
	Step             string             `json:"step"`
	CartID           string             `json:"cart_id"`
	Email            string             `json:"email,omitempty"`
	ShippingAddress  *domain.Address    `json:"shipping_address,omitempty"`
	ShippingRateCode string             `json:"shipping_rate_code,omitempty"`
	CouponCode       string             `json:"coupon_code,omitempty"`
	CouponReason     string             `json:"coupon_reason,omitempty"`
	PaymentMethod    string             `json:"payment_method,omitempty"`
	BillingAddress   *domain.Address    `json:"billing_address,omitempty"`
	ClientSecret     string             `json:"client_secret,omitempty"`
	Totals           domain.OrderTotals `json:"totals"`
	Tax              *taxResponse       `json:"tax,omitempty"`
	OrderID          string             `json:"order_id,omitempty"`
	OrderNumber      string             `json:"order_number,omitempty"`
	ExpiresAt        time.Time          `json:"expires_at"`
}

type taxResponse struct {
	Rate        float64         `json:"rate"`
	AmountCents int64           `json:"amount_cents"`
	IsEstimate  bool            `json:"is_estimate"`
	Breakdown   []tax.Breakdown `json:"breakdown,omitempty"`
}

func toSessionResponse(s *service.CheckoutSession) sessionResponse {
	resp := sessionResponse{
		ID:               s.ID,
		Step:             string(s.Step),
		CartID:           s.CartID,
		Email:            s.Email,
		ShippingAddress:  s.ShippingAddress,
		ShippingRateCode: s.ShippingRateCode,
		CouponCode:       s.CouponCode,
		CouponReason:     s.CouponReason,
		PaymentMethod:    s.PaymentMethod,
		BillingAddress:   s.BillingAddress,
		ClientSecret:     s.ClientSecret,
		Totals:           s.Totals,
		OrderID:          s.OrderID,
		OrderNumber:      s.OrderNumber,
		ExpiresAt:        s.ExpiresAt,
	}
	if s.Tax != nil {
		resp.Tax = &taxResponse{
			Rate:        s.Tax.Rate,
			AmountCents: s.Tax.AmountCents,
			IsEstimate:  s.Tax.IsEstimate,
			Breakdown:   s.Tax.Breakdown,
		}
	}
	return resp
}

type startCheckoutRequest struct {
	CartToken string `json:"cart_token"`
}

// Start opens a checkout session for the caller's cart.
// POST /api/checkout/start
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.checkout.StartCheckout(r.Context(), req.CartToken)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSessionResponse(session))
}

// Get returns the current session state and derived totals.
// GET /api/checkout/{id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

// SetShipping records the shipping step.
// POST /api/checkout/{id}/shipping
func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req service.ShippingDetailsInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.checkout.SetShippingDetails(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

type paymentRequest struct {
	PaymentMethod  string          `json:"payment_method,omitempty"`
	BillingAddress *domain.Address `json:"billing_address,omitempty"`
	CouponCode     *string         `json:"coupon_code,omitempty"`
}

// PreparePayment records the payment method and billing address, applies
// an optional coupon, then creates the payment intent and advances the
// wizard to review.
// POST /api/checkout/{id}/payment
func (h *CheckoutHandler) PreparePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	id := r.PathValue("id")

	if req.CouponCode != nil {
		if _, err := h.checkout.ApplyCoupon(r.Context(), id, *req.CouponCode); err != nil {
			respondError(w, r, err)
			return
		}
	}

	session, err := h.checkout.PreparePayment(r.Context(), id, service.PaymentDetailsInput{
		PaymentMethod:  req.PaymentMethod,
		BillingAddress: req.BillingAddress,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon validates and applies a coupon to the session.
// POST /api/checkout/{id}/coupon
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.checkout.ApplyCoupon(r.Context(), r.PathValue("id"), req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

type submitRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// Submit places the order. The idempotency key may come from the body or
// the Idempotency-Key header; retries with the same key return the
// original order.
// POST /api/checkout/{id}/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	detail, err := h.orders.PlaceOrder(r.Context(), r.PathValue("id"), req.IdempotencyKey)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(detail))
}
