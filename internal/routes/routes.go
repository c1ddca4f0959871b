// Package routes wires handlers onto the router.
package routes

import (
	"log/slog"

	"github.com/avsoarsa/global-gourmet/internal/handler"
	"github.com/avsoarsa/global-gourmet/internal/middleware"
	"github.com/avsoarsa/global-gourmet/internal/router"
	"github.com/avsoarsa/global-gourmet/internal/service"
)

// Deps carries everything route registration needs.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *middleware.Metrics
	DB       handler.Pinger
	Carts    service.CartService
	Checkout service.CheckoutService
	Orders   service.OrderService
	Coupons  service.CouponService
}

// Register mounts all routes on r.
func Register(r *router.Router, deps Deps) {
	health := handler.NewHealthHandler(deps.DB)
	carts := handler.NewCartHandler(deps.Carts)
	checkout := handler.NewCheckoutHandler(deps.Checkout, deps.Orders)
	orders := handler.NewOrderHandler(deps.Orders)
	coupons := handler.NewCouponHandler(deps.Coupons)
	quotes := handler.NewQuoteHandler(deps.Checkout)

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if deps.Metrics != nil {
		r.Handle("GET", "/metrics", deps.Metrics.Handler())
	}

	api := r.Group()

	api.Get("/api/cart", carts.Get)
	api.Post("/api/cart/items", carts.AddItem)
	api.Put("/api/cart/items/{sku_id}", carts.UpdateItem)
	api.Delete("/api/cart/items/{sku_id}", carts.RemoveItem)

	api.Post("/api/checkout/start", checkout.Start)
	api.Get("/api/checkout/{id}", checkout.Get)
	api.Post("/api/checkout/{id}/shipping", checkout.SetShipping)
	api.Post("/api/checkout/{id}/coupon", checkout.ApplyCoupon)
	api.Post("/api/checkout/{id}/payment", checkout.PreparePayment)
	api.Post("/api/checkout/{id}/submit", checkout.Submit)

	api.Get("/api/orders/{id}", orders.Get)
	api.Get("/api/orders/number/{number}", orders.GetByNumber)

	api.Post("/api/tax/quote", quotes.QuoteTax)
	api.Get("/api/shipping/rates", quotes.ShippingRates)

	admin := r.Group()
	admin.Get("/api/admin/coupons", coupons.List)
	admin.Post("/api/admin/coupons", coupons.Create)
	admin.Get("/api/admin/coupons/{code}", coupons.Get)
	admin.Put("/api/admin/coupons/{code}", coupons.Update)
	admin.Delete("/api/admin/coupons/{code}", coupons.Deactivate)
}
