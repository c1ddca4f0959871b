package service_test

import (
	"context"
	"sync"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// fakeStore is an in-memory stand-in for the PostgreSQL store. Methods the
// tests never reach panic via the embedded interface.
type fakeStore struct {
	repository.Querier
	mu sync.Mutex

	skus       map[string]repository.ProductSKU
	carts      map[string]repository.Cart
	cartItems  map[string][]repository.CartItemRow
	coupons    map[string]domain.Coupon
	orders     map[string]domain.Order
	orderItems map[string][]domain.OrderItem
	taxCalcs   []repository.SaveTaxCalculationParams

	failDecrement bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		skus:       make(map[string]repository.ProductSKU),
		carts:      make(map[string]repository.Cart),
		cartItems:  make(map[string][]repository.CartItemRow),
		coupons:    make(map[string]domain.Coupon),
		orders:     make(map[string]domain.Order),
		orderItems: make(map[string][]domain.OrderItem),
	}
}

func newUUID() pgtype.UUID {
	u := uuid.New()
	var id pgtype.UUID
	copy(id.Bytes[:], u[:])
	id.Valid = true
	return id
}

func uuidKey(id pgtype.UUID) string {
	u, _ := uuid.FromBytes(id.Bytes[:])
	return u.String()
}

// addCartWithItems seeds a cart holding one line per SKU.
func (f *fakeStore) addCartWithItems(token string, lines ...repository.CartItemRow) repository.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart := repository.Cart{ID: newUUID(), SessionToken: token, Status: repository.CartStatusActive}
	key := uuidKey(cart.ID)
	f.carts[key] = cart
	for i := range lines {
		lines[i].CartID = cart.ID
		if !lines[i].ID.Valid {
			lines[i].ID = newUUID()
		}
	}
	f.cartItems[key] = lines
	return cart
}

func (f *fakeStore) ExecTx(_ context.Context, fn func(repository.Querier) error) error {
	return fn(f)
}

func (f *fakeStore) GetSKUByID(_ context.Context, id pgtype.UUID) (repository.ProductSKU, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sku, ok := f.skus[uuidKey(id)]
	if !ok {
		return repository.ProductSKU{}, pgx.ErrNoRows
	}
	return sku, nil
}

func (f *fakeStore) DecrementSKUStock(_ context.Context, arg repository.DecrementSKUStockParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDecrement {
		return 0, nil
	}
	sku, ok := f.skus[uuidKey(arg.ID)]
	if !ok || sku.Stock < arg.Quantity {
		return 0, nil
	}
	sku.Stock -= arg.Quantity
	f.skus[uuidKey(arg.ID)] = sku
	return 1, nil
}

func (f *fakeStore) GetCartByID(_ context.Context, id pgtype.UUID) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[uuidKey(id)]
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	return cart, nil
}

func (f *fakeStore) GetCartBySessionToken(_ context.Context, token string) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cart := range f.carts {
		if cart.SessionToken == token {
			return cart, nil
		}
	}
	return repository.Cart{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateCart(_ context.Context, token string) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart := repository.Cart{ID: newUUID(), SessionToken: token, Status: repository.CartStatusActive}
	f.carts[uuidKey(cart.ID)] = cart
	return cart, nil
}

func (f *fakeStore) GetCartItems(_ context.Context, cartID pgtype.UUID) ([]repository.CartItemRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cartItems[uuidKey(cartID)], nil
}

func (f *fakeStore) UpdateCartStatus(_ context.Context, arg repository.UpdateCartStatusParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[uuidKey(arg.ID)]
	if !ok {
		return pgx.ErrNoRows
	}
	cart.Status = arg.Status
	f.carts[uuidKey(arg.ID)] = cart
	return nil
}

func (f *fakeStore) GetCouponByCode(_ context.Context, code string) (domain.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	coupon, ok := f.coupons[code]
	if !ok {
		return domain.Coupon{}, pgx.ErrNoRows
	}
	return coupon, nil
}

func (f *fakeStore) RedeemCoupon(_ context.Context, arg repository.RedeemCouponParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, coupon := range f.coupons {
		if coupon.ID == arg.CouponID {
			coupon.UsageCount++
			f.coupons[code] = coupon
			return true, nil
		}
	}
	return false, pgx.ErrNoRows
}

func (f *fakeStore) CreateOrder(_ context.Context, arg repository.CreateOrderParams) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.orders {
		if existing.IdempotencyKey.Valid && arg.IdempotencyKey.Valid &&
			existing.IdempotencyKey.String == arg.IdempotencyKey.String {
			return domain.Order{}, &duplicateKeyError{}
		}
	}
	order := domain.Order{
		ID:             newUUID(),
		OrderNumber:    arg.OrderNumber,
		CartID:         arg.CartID,
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusPaid,
		SubtotalCents:  arg.SubtotalCents,
		DiscountCents:  arg.DiscountCents,
		TaxCents:       arg.TaxCents,
		ShippingCents:  arg.ShippingCents,
		TotalCents:     arg.TotalCents,
		Currency:       arg.Currency,
		CouponCode:     arg.CouponCode,
		CouponID:       arg.CouponID,
		PaymentMethod:  arg.PaymentMethod,
		PaymentIntent:  arg.PaymentIntent,
		IdempotencyKey: arg.IdempotencyKey,
		ShippingAddr:   arg.ShippingAddr,
	}
	f.orders[uuidKey(order.ID)] = order
	return order, nil
}

func (f *fakeStore) CreateOrderItem(_ context.Context, arg repository.CreateOrderItemParams) (domain.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := domain.OrderItem{
		ID:             newUUID(),
		OrderID:        arg.OrderID,
		ProductSKUID:   arg.ProductSKUID,
		ProductName:    arg.ProductName,
		SKU:            arg.SKU,
		Quantity:       arg.Quantity,
		UnitPriceCents: arg.UnitPriceCents,
		TotalCents:     int64(arg.Quantity) * arg.UnitPriceCents,
	}
	key := uuidKey(arg.OrderID)
	f.orderItems[key] = append(f.orderItems[key], item)
	return item, nil
}

func (f *fakeStore) GetOrderByID(_ context.Context, id pgtype.UUID) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[uuidKey(id)]
	if !ok {
		return domain.Order{}, pgx.ErrNoRows
	}
	return order, nil
}

func (f *fakeStore) GetOrderByNumber(_ context.Context, number string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.OrderNumber == number {
			return order, nil
		}
	}
	return domain.Order{}, pgx.ErrNoRows
}

func (f *fakeStore) GetOrderByIdempotencyKey(_ context.Context, key string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.IdempotencyKey.Valid && order.IdempotencyKey.String == key {
			return order, nil
		}
	}
	return domain.Order{}, pgx.ErrNoRows
}

func (f *fakeStore) GetOrderItems(_ context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderItems[uuidKey(orderID)], nil
}

func (f *fakeStore) SaveTaxCalculation(_ context.Context, arg repository.SaveTaxCalculationParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taxCalcs = append(f.taxCalcs, arg)
	return nil
}

func (f *fakeStore) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type duplicateKeyError struct{}

func (*duplicateKeyError) Error() string { return "duplicate key value violates unique constraint" }
