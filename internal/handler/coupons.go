package handler

import (
	"net/http"
	"time"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/service"
)

// CouponHandler exposes admin coupon management.
type CouponHandler struct {
	coupons service.CouponService
}

// NewCouponHandler creates the admin coupon handler.
func NewCouponHandler(coupons service.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

type couponResponse struct {
	Code              string     `json:"code"`
	DiscountType      string     `json:"discount_type"`
	DiscountValue     int64      `json:"discount_value"`
	MinimumOrderCents int64      `json:"minimum_order_cents"`
	IsActive          bool       `json:"is_active"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	UsageLimit        *int32     `json:"usage_limit,omitempty"`
	UsageCount        int32      `json:"usage_count"`
}

func toCouponResponse(c *domain.Coupon) couponResponse {
	resp := couponResponse{
		Code:              c.Code,
		DiscountType:      c.DiscountType,
		DiscountValue:     c.DiscountValue,
		MinimumOrderCents: c.MinimumOrderCents,
		IsActive:          c.IsActive,
		UsageCount:        c.UsageCount,
	}
	if c.StartsAt.Valid {
		t := c.StartsAt.Time
		resp.StartsAt = &t
	}
	if c.EndsAt.Valid {
		t := c.EndsAt.Time
		resp.EndsAt = &t
	}
	if c.UsageLimit.Valid {
		n := c.UsageLimit.Int32
		resp.UsageLimit = &n
	}
	return resp
}

// List returns all coupons.
// GET /api/admin/coupons
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ListCoupons(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]couponResponse, 0, len(coupons))
	for i := range coupons {
		out = append(out, toCouponResponse(&coupons[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// Get returns one coupon by code.
// GET /api/admin/coupons/{code}
func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.coupons.GetCoupon(r.Context(), r.PathValue("code"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCouponResponse(coupon))
}

// Create adds a coupon.
// POST /api/admin/coupons
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CouponInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	coupon, err := h.coupons.CreateCoupon(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCouponResponse(coupon))
}

// Update edits a coupon identified by the code in the path.
// PUT /api/admin/coupons/{code}
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.CouponInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	req.Code = r.PathValue("code")

	coupon, err := h.coupons.UpdateCoupon(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCouponResponse(coupon))
}

// Deactivate disables a coupon. Coupons are never hard-deleted because
// historical orders reference them.
// DELETE /api/admin/coupons/{code}
func (h *CouponHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.coupons.DeactivateCoupon(r.Context(), r.PathValue("code"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCouponResponse(coupon))
}
