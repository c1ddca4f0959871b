package handler

import (
	"net/http"
	"strconv"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/service"
	"github.com/avsoarsa/global-gourmet/internal/tax"
)

// QuoteHandler exposes ad-hoc tax and shipping quotes for the cart page,
// before any checkout session exists.
type QuoteHandler struct {
	checkout service.CheckoutService
}

// NewQuoteHandler creates the quote handler.
func NewQuoteHandler(checkout service.CheckoutService) *QuoteHandler {
	return &QuoteHandler{checkout: checkout}
}

type taxQuoteRequest struct {
	Address       tax.Address    `json:"address"`
	SubtotalCents int64          `json:"subtotal_cents"`
	LineItems     []tax.LineItem `json:"line_items,omitempty"`
}

// QuoteTax previews tax for a destination and subtotal.
// POST /api/tax/quote
func (h *QuoteHandler) QuoteTax(w http.ResponseWriter, r *http.Request) {
	var req taxQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.SubtotalCents < 0 {
		respondError(w, r, domain.Invalid("tax.quote", "Subtotal cannot be negative"))
		return
	}

	result, err := h.checkout.QuoteTax(r.Context(), tax.TaxParams{
		ShippingAddress: req.Address,
		SubtotalCents:   req.SubtotalCents,
		LineItems:       req.LineItems,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, taxResponse{
		Rate:        result.Rate,
		AmountCents: result.AmountCents,
		IsEstimate:  result.IsEstimate,
		Breakdown:   result.Breakdown,
	})
}

type shippingRateResponse struct {
	ServiceName      string `json:"service_name"`
	ServiceCode      string `json:"service_code"`
	CostCents        int64  `json:"cost_cents"`
	EstimatedDaysMin int    `json:"estimated_days_min"`
	EstimatedDaysMax int    `json:"estimated_days_max"`
}

// ShippingRates quotes available shipping options for a destination.
// GET /api/shipping/rates?country=US&state=CA&postal_code=94105&subtotal_cents=5000&item_count=2
func (h *QuoteHandler) ShippingRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	addr := domain.Address{
		City:       q.Get("city"),
		State:      q.Get("state"),
		PostalCode: q.Get("postal_code"),
		Country:    q.Get("country"),
	}
	if addr.Country == "" {
		respondError(w, r, domain.Invalid("shipping.rates", "Destination country is required"))
		return
	}

	subtotal, _ := strconv.ParseInt(q.Get("subtotal_cents"), 10, 64)
	itemCount, _ := strconv.ParseInt(q.Get("item_count"), 10, 32)

	rates, err := h.checkout.GetShippingRates(r.Context(), addr, int32(itemCount), subtotal)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]shippingRateResponse, 0, len(rates))
	for _, rate := range rates {
		out = append(out, shippingRateResponse{
			ServiceName:      rate.ServiceName,
			ServiceCode:      rate.ServiceCode,
			CostCents:        rate.CostCents,
			EstimatedDaysMin: rate.EstimatedDaysMin,
			EstimatedDaysMax: rate.EstimatedDaysMax,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
