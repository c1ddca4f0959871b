package repository

import (
	"context"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the data-access contract consumed by the service layer.
// Store implements it against PostgreSQL; tests substitute fakes.
type Querier interface {
	// Products
	GetSKUByID(ctx context.Context, id pgtype.UUID) (ProductSKU, error)
	DecrementSKUStock(ctx context.Context, arg DecrementSKUStockParams) (int64, error)

	// Carts
	CreateCart(ctx context.Context, sessionToken string) (Cart, error)
	GetCartByID(ctx context.Context, id pgtype.UUID) (Cart, error)
	GetCartBySessionToken(ctx context.Context, token string) (Cart, error)
	GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]CartItemRow, error)
	AddCartItem(ctx context.Context, arg AddCartItemParams) error
	UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) error
	RemoveCartItem(ctx context.Context, arg RemoveCartItemParams) error
	ClearCart(ctx context.Context, cartID pgtype.UUID) error
	UpdateCartStatus(ctx context.Context, arg UpdateCartStatusParams) error

	// Coupons
	GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error)
	CreateCoupon(ctx context.Context, arg CreateCouponParams) (domain.Coupon, error)
	UpdateCoupon(ctx context.Context, arg UpdateCouponParams) (domain.Coupon, error)
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
	RedeemCoupon(ctx context.Context, arg RedeemCouponParams) (bool, error)

	// Orders
	CreateOrder(ctx context.Context, arg CreateOrderParams) (domain.Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (domain.OrderItem, error)
	GetOrderByID(ctx context.Context, id pgtype.UUID) (domain.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (domain.Order, error)
	GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error)

	// Tax audit trail
	SaveTaxCalculation(ctx context.Context, arg SaveTaxCalculationParams) error
}

// ProductSKU is a sellable item with live price and stock.
type ProductSKU struct {
	ID          pgtype.UUID
	Name        string
	SKU         string
	PriceCents  int64
	Stock       int32
	TaxCategory pgtype.Text
	IsActive    bool
}

// Cart statuses.
const (
	CartStatusActive    = "active"
	CartStatusConverted = "converted"
)

// Cart is a shopping cart header keyed by an opaque session token.
type Cart struct {
	ID           pgtype.UUID
	SessionToken string
	Status       string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

// CartItemRow is a cart line joined with its product.
type CartItemRow struct {
	ID             pgtype.UUID
	CartID         pgtype.UUID
	ProductSKUID   pgtype.UUID
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	TaxCategory    pgtype.Text
}

type DecrementSKUStockParams struct {
	ID       pgtype.UUID
	Quantity int32
}

type AddCartItemParams struct {
	CartID         pgtype.UUID
	ProductSKUID   pgtype.UUID
	Quantity       int32
	UnitPriceCents int64
}

type UpdateCartItemQuantityParams struct {
	CartID       pgtype.UUID
	ProductSKUID pgtype.UUID
	Quantity     int32
}

type RemoveCartItemParams struct {
	CartID       pgtype.UUID
	ProductSKUID pgtype.UUID
}

type UpdateCartStatusParams struct {
	ID     pgtype.UUID
	Status string
}

type CreateCouponParams struct {
	Code              string
	DiscountType      string
	DiscountValue     int64
	MinimumOrderCents int64
	IsActive          bool
	StartsAt          pgtype.Timestamptz
	EndsAt            pgtype.Timestamptz
	UsageLimit        pgtype.Int4
}

type UpdateCouponParams struct {
	Code              string
	DiscountType      string
	DiscountValue     int64
	MinimumOrderCents int64
	IsActive          bool
	StartsAt          pgtype.Timestamptz
	EndsAt            pgtype.Timestamptz
	UsageLimit        pgtype.Int4
}

// RedeemCouponParams records one redemption of a coupon by an order.
type RedeemCouponParams struct {
	CouponID pgtype.UUID
	OrderID  pgtype.UUID
}

type CreateOrderParams struct {
	OrderNumber    string
	UserID         pgtype.UUID
	CartID         pgtype.UUID
	SubtotalCents  int64
	DiscountCents  int64
	TaxCents       int64
	ShippingCents  int64
	TotalCents     int64
	Currency       string
	CouponCode     pgtype.Text
	CouponID       pgtype.UUID
	PaymentMethod  string
	PaymentIntent  pgtype.Text
	IdempotencyKey pgtype.Text
	ShippingAddr   domain.Address
}

type CreateOrderItemParams struct {
	OrderID        pgtype.UUID
	ProductSKUID   pgtype.UUID
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
}

type SaveTaxCalculationParams struct {
	OrderID      pgtype.UUID
	Rate         float64
	AmountCents  int64
	TaxableCents int64
	Breakdown    []byte // JSON-encoded jurisdiction breakdown
	IsEstimate   bool
}
