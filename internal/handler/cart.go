package handler

import (
	"net/http"

	"github.com/avsoarsa/global-gourmet/internal/service"
	"github.com/google/uuid"
)

// CartTokenHeader carries the opaque cart session token. New tokens are
// returned in the same header.
const CartTokenHeader = "X-Cart-Token"

// CartHandler exposes cart operations.
type CartHandler struct {
	carts service.CartService
}

// NewCartHandler creates the cart API handler.
func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartResponse struct {
	CartID        string             `json:"cart_id"`
	Items         []cartItemResponse `json:"items"`
	SubtotalCents int64              `json:"subtotal_cents"`
	ItemCount     int                `json:"item_count"`
}

type cartItemResponse struct {
	SKUID          string `json:"sku_id"`
	ProductName    string `json:"product_name"`
	SKU            string `json:"sku"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineSubtotal   int64  `json:"line_subtotal_cents"`
}

func toCartResponse(summary *service.CartSummary) cartResponse {
	resp := cartResponse{
		SubtotalCents: summary.SubtotalCents,
		ItemCount:     summary.ItemCount,
		Items:         make([]cartItemResponse, 0, len(summary.Items)),
	}
	if summary.Cart.ID.Valid {
		if u, err := uuid.FromBytes(summary.Cart.ID.Bytes[:]); err == nil {
			resp.CartID = u.String()
		}
	}
	for _, item := range summary.Items {
		line := cartItemResponse{
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineSubtotal:   item.LineSubtotal,
		}
		if item.SKUID.Valid {
			if u, err := uuid.FromBytes(item.SKUID.Bytes[:]); err == nil {
				line.SKUID = u.String()
			}
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// Get returns the caller's cart, creating one when the token is missing.
// GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, token, err := h.carts.GetOrCreateCart(r.Context(), r.Header.Get(CartTokenHeader))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set(CartTokenHeader, token)
	respondJSON(w, http.StatusOK, toCartResponse(summary))
}

type addItemRequest struct {
	SKUID    string `json:"sku_id"`
	Quantity int    `json:"quantity"`
}

// AddItem adds a product to the cart.
// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	summary, token, err := h.carts.GetOrCreateCart(r.Context(), r.Header.Get(CartTokenHeader))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set(CartTokenHeader, token)

	updated, err := h.carts.AddItem(r.Context(), toCartResponse(summary).CartID, req.SKUID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(updated))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem changes a line's quantity; zero removes it.
// PUT /api/cart/items/{sku_id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	summary, token, err := h.carts.GetOrCreateCart(r.Context(), r.Header.Get(CartTokenHeader))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set(CartTokenHeader, token)

	updated, err := h.carts.UpdateItemQuantity(r.Context(), toCartResponse(summary).CartID, r.PathValue("sku_id"), req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(updated))
}

// RemoveItem deletes a line from the cart.
// DELETE /api/cart/items/{sku_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	summary, token, err := h.carts.GetOrCreateCart(r.Context(), r.Header.Get(CartTokenHeader))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set(CartTokenHeader, token)

	updated, err := h.carts.RemoveItem(r.Context(), toCartResponse(summary).CartID, r.PathValue("sku_id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(updated))
}
