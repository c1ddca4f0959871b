package handler

import (
	"net/http"
	"time"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/service"
	"github.com/google/uuid"
)

// OrderHandler exposes order lookups.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates the order API handler.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderResponse struct {
	ID            string              `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Currency      string              `json:"currency"`
	SubtotalCents int64               `json:"subtotal_cents"`
	DiscountCents int64               `json:"discount_cents"`
	TaxCents      int64               `json:"tax_cents"`
	ShippingCents int64               `json:"shipping_cents"`
	TotalCents    int64               `json:"total_cents"`
	CouponCode    string              `json:"coupon_code,omitempty"`
	ShippingAddr  domain.Address      `json:"shipping_address"`
	Items         []orderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at,omitempty"`
}

type orderItemResponse struct {
	ProductName    string `json:"product_name"`
	SKU            string `json:"sku"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

func toOrderResponse(detail *service.OrderDetail) orderResponse {
	order := detail.Order
	resp := orderResponse{
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Currency:      order.Currency,
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		TaxCents:      order.TaxCents,
		ShippingCents: order.ShippingCents,
		TotalCents:    order.TotalCents,
		ShippingAddr:  order.ShippingAddr,
	}
	if order.ID.Valid {
		if u, err := uuid.FromBytes(order.ID.Bytes[:]); err == nil {
			resp.ID = u.String()
		}
	}
	if order.CouponCode.Valid {
		resp.CouponCode = order.CouponCode.String
	}
	if order.CreatedAt.Valid {
		resp.CreatedAt = order.CreatedAt.Time
	}
	for _, item := range detail.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}
	return resp
}

// Get returns an order by ID.
// GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(detail))
}

// GetByNumber returns an order by its human-readable number.
// GET /api/orders/number/{number}
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orders.GetOrderByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(detail))
}
