package repository

import (
	"context"
	"fmt"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX abstracts a pgx pool or transaction so every query method works in
// both contexts.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements Querier against PostgreSQL.
type Store struct {
	db DBTX
}

// Compile-time check that Store implements Querier.
var _ Querier = (*Store)(nil)

// New creates a Store backed by a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// Tx is a Store bound to an open transaction.
type Tx struct {
	*Store
	tx pgx.Tx
}

// BeginTx starts a transaction. Rollback after Commit is a no-op, so callers
// can always defer Rollback.
func (s *Store) BeginTx(ctx context.Context) (*Tx, error) {
	pool, ok := s.db.(*pgxpool.Pool)
	if !ok {
		return nil, fmt.Errorf("begin tx: store is already transactional")
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{Store: &Store{db: tx}, tx: tx}, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return nil
	}
	return err
}

// ExecTx runs fn inside a single transaction. Any error from fn rolls the
// transaction back; otherwise it commits.
func (s *Store) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// =============================================================================
// Products
// =============================================================================

const getSKUByID = `
SELECT id, name, sku, price_cents, stock, tax_category, is_active
FROM product_skus
WHERE id = $1
`

func (s *Store) GetSKUByID(ctx context.Context, id pgtype.UUID) (ProductSKU, error) {
	var p ProductSKU
	err := s.db.QueryRow(ctx, getSKUByID, id).Scan(
		&p.ID, &p.Name, &p.SKU, &p.PriceCents, &p.Stock, &p.TaxCategory, &p.IsActive,
	)
	return p, err
}

// DecrementSKUStock is the atomic conditional decrement that closes the
// check-then-act race between inventory verification and order commit. The
// WHERE clause refuses the update when stock would go negative; the caller
// checks the affected row count.
const decrementSKUStock = `
UPDATE product_skus
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2
`

func (s *Store) DecrementSKUStock(ctx context.Context, arg DecrementSKUStockParams) (int64, error) {
	tag, err := s.db.Exec(ctx, decrementSKUStock, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// =============================================================================
// Carts
// =============================================================================

const createCart = `
INSERT INTO carts (session_token)
VALUES ($1)
RETURNING id, session_token, status, created_at, updated_at
`

func (s *Store) CreateCart(ctx context.Context, sessionToken string) (Cart, error) {
	var c Cart
	err := s.db.QueryRow(ctx, createCart, sessionToken).Scan(
		&c.ID, &c.SessionToken, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

const getCartByID = `
SELECT id, session_token, status, created_at, updated_at
FROM carts
WHERE id = $1
`

func (s *Store) GetCartByID(ctx context.Context, id pgtype.UUID) (Cart, error) {
	var c Cart
	err := s.db.QueryRow(ctx, getCartByID, id).Scan(
		&c.ID, &c.SessionToken, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

const getCartBySessionToken = `
SELECT id, session_token, status, created_at, updated_at
FROM carts
WHERE session_token = $1 AND status = 'active'
ORDER BY created_at DESC
LIMIT 1
`

func (s *Store) GetCartBySessionToken(ctx context.Context, token string) (Cart, error) {
	var c Cart
	err := s.db.QueryRow(ctx, getCartBySessionToken, token).Scan(
		&c.ID, &c.SessionToken, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

const getCartItems = `
SELECT ci.id, ci.cart_id, ci.product_sku_id, p.name, p.sku,
       ci.quantity, ci.unit_price_cents, p.tax_category
FROM cart_items ci
JOIN product_skus p ON p.id = ci.product_sku_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at
`

func (s *Store) GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]CartItemRow, error) {
	rows, err := s.db.Query(ctx, getCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItemRow
	for rows.Next() {
		var it CartItemRow
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductSKUID, &it.ProductName, &it.SKU,
			&it.Quantity, &it.UnitPriceCents, &it.TaxCategory,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const addCartItem = `
INSERT INTO cart_items (cart_id, product_sku_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_sku_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`

func (s *Store) AddCartItem(ctx context.Context, arg AddCartItemParams) error {
	_, err := s.db.Exec(ctx, addCartItem, arg.CartID, arg.ProductSKUID, arg.Quantity, arg.UnitPriceCents)
	return err
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity = $3
WHERE cart_id = $1 AND product_sku_id = $2
`

func (s *Store) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) error {
	_, err := s.db.Exec(ctx, updateCartItemQuantity, arg.CartID, arg.ProductSKUID, arg.Quantity)
	return err
}

const removeCartItem = `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_sku_id = $2
`

func (s *Store) RemoveCartItem(ctx context.Context, arg RemoveCartItemParams) error {
	_, err := s.db.Exec(ctx, removeCartItem, arg.CartID, arg.ProductSKUID)
	return err
}

const clearCart = `
DELETE FROM cart_items
WHERE cart_id = $1
`

func (s *Store) ClearCart(ctx context.Context, cartID pgtype.UUID) error {
	_, err := s.db.Exec(ctx, clearCart, cartID)
	return err
}

const updateCartStatus = `
UPDATE carts
SET status = $2, updated_at = now()
WHERE id = $1
`

func (s *Store) UpdateCartStatus(ctx context.Context, arg UpdateCartStatusParams) error {
	_, err := s.db.Exec(ctx, updateCartStatus, arg.ID, arg.Status)
	return err
}

// =============================================================================
// Coupons
// =============================================================================

const couponColumns = `id, code, discount_type, discount_value, minimum_order_cents,
	is_active, starts_at, ends_at, usage_limit, usage_count, created_at, updated_at`

func scanCoupon(row pgx.Row) (domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinimumOrderCents,
		&c.IsActive, &c.StartsAt, &c.EndsAt, &c.UsageLimit, &c.UsageCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

var getCouponByCode = `
SELECT ` + couponColumns + `
FROM coupons
WHERE lower(code) = lower($1)
`

func (s *Store) GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error) {
	return scanCoupon(s.db.QueryRow(ctx, getCouponByCode, code))
}

var createCoupon = `
INSERT INTO coupons (code, discount_type, discount_value, minimum_order_cents,
	is_active, starts_at, ends_at, usage_limit)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + couponColumns

func (s *Store) CreateCoupon(ctx context.Context, arg CreateCouponParams) (domain.Coupon, error) {
	return scanCoupon(s.db.QueryRow(ctx, createCoupon,
		arg.Code, arg.DiscountType, arg.DiscountValue, arg.MinimumOrderCents,
		arg.IsActive, arg.StartsAt, arg.EndsAt, arg.UsageLimit,
	))
}

var updateCoupon = `
UPDATE coupons
SET discount_type = $2, discount_value = $3, minimum_order_cents = $4,
	is_active = $5, starts_at = $6, ends_at = $7, usage_limit = $8,
	updated_at = now()
WHERE lower(code) = lower($1)
RETURNING ` + couponColumns

func (s *Store) UpdateCoupon(ctx context.Context, arg UpdateCouponParams) (domain.Coupon, error) {
	return scanCoupon(s.db.QueryRow(ctx, updateCoupon,
		arg.Code, arg.DiscountType, arg.DiscountValue, arg.MinimumOrderCents,
		arg.IsActive, arg.StartsAt, arg.EndsAt, arg.UsageLimit,
	))
}

var listCoupons = `
SELECT ` + couponColumns + `
FROM coupons
ORDER BY created_at DESC
`

func (s *Store) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := s.db.Query(ctx, listCoupons)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

const insertRedemption = `
INSERT INTO coupon_redemptions (coupon_id, order_id)
VALUES ($1, $2)
ON CONFLICT (order_id) DO NOTHING
`

const incrementCouponUsage = `
UPDATE coupons
SET usage_count = usage_count + 1, updated_at = now()
WHERE id = $1
  AND is_active
  AND (usage_limit IS NULL OR usage_count < usage_limit)
`

// RedeemCoupon records one redemption for an order and increments usage_count
// exactly once per order. Returns true when a new redemption was recorded,
// false when this order already redeemed the coupon (retry), and an error when
// the usage limit is exhausted, in which case the caller's transaction must
// roll back.
func (s *Store) RedeemCoupon(ctx context.Context, arg RedeemCouponParams) (bool, error) {
	tag, err := s.db.Exec(ctx, insertRedemption, arg.CouponID, arg.OrderID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		// Already redeemed by this order; do not double-count.
		return false, nil
	}

	tag, err = s.db.Exec(ctx, incrementCouponUsage, arg.CouponID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, domain.Conflict("coupon.redeem", "coupon usage limit reached")
	}
	return true, nil
}

// =============================================================================
// Orders
// =============================================================================

const orderColumns = `id, order_number, user_id, cart_id, status, payment_status,
	subtotal_cents, discount_cents, tax_cents, shipping_cents, total_cents, currency,
	coupon_code, coupon_id, payment_method, payment_intent_id, idempotency_key,
	ship_full_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code,
	ship_country, ship_phone, created_at, updated_at`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var line2, phone pgtype.Text
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CartID, &o.Status, &o.PaymentStatus,
		&o.SubtotalCents, &o.DiscountCents, &o.TaxCents, &o.ShippingCents,
		&o.TotalCents, &o.Currency, &o.CouponCode, &o.CouponID, &o.PaymentMethod,
		&o.PaymentIntent, &o.IdempotencyKey,
		&o.ShippingAddr.FullName, &o.ShippingAddr.Line1, &line2,
		&o.ShippingAddr.City, &o.ShippingAddr.State, &o.ShippingAddr.PostalCode,
		&o.ShippingAddr.Country, &phone,
		&o.CreatedAt, &o.UpdatedAt,
	)
	o.ShippingAddr.Line2 = line2.String
	o.ShippingAddr.Phone = phone.String
	return o, err
}

var createOrder = `
INSERT INTO orders (order_number, user_id, cart_id, status, payment_status,
	subtotal_cents, discount_cents, tax_cents, shipping_cents, total_cents, currency,
	coupon_code, coupon_id, payment_method, payment_intent_id, idempotency_key,
	ship_full_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code,
	ship_country, ship_phone)
VALUES ($1, $2, $3, 'pending', 'pending',
	$4, $5, $6, $7, $8, $9,
	$10, $11, $12, $13, $14,
	$15, $16, $17, $18, $19, $20, $21, $22)
RETURNING ` + orderColumns

func (s *Store) CreateOrder(ctx context.Context, arg CreateOrderParams) (domain.Order, error) {
	return scanOrder(s.db.QueryRow(ctx, createOrder,
		arg.OrderNumber, arg.UserID, arg.CartID,
		arg.SubtotalCents, arg.DiscountCents, arg.TaxCents, arg.ShippingCents,
		arg.TotalCents, arg.Currency,
		arg.CouponCode, arg.CouponID, arg.PaymentMethod, arg.PaymentIntent, arg.IdempotencyKey,
		arg.ShippingAddr.FullName, arg.ShippingAddr.Line1, textOrNull(arg.ShippingAddr.Line2),
		arg.ShippingAddr.City, arg.ShippingAddr.State, arg.ShippingAddr.PostalCode,
		arg.ShippingAddr.Country, textOrNull(arg.ShippingAddr.Phone),
	))
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_sku_id, product_name, sku, quantity,
	unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, product_sku_id, product_name, sku, quantity,
	unit_price_cents, total_cents
`

func (s *Store) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (domain.OrderItem, error) {
	var it domain.OrderItem
	total := int64(arg.Quantity) * arg.UnitPriceCents
	err := s.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.ProductSKUID, arg.ProductName, arg.SKU,
		arg.Quantity, arg.UnitPriceCents, total,
	).Scan(
		&it.ID, &it.OrderID, &it.ProductSKUID, &it.ProductName, &it.SKU,
		&it.Quantity, &it.UnitPriceCents, &it.TotalCents,
	)
	return it, err
}

var getOrderByID = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (s *Store) GetOrderByID(ctx context.Context, id pgtype.UUID) (domain.Order, error) {
	return scanOrder(s.db.QueryRow(ctx, getOrderByID, id))
}

var getOrderByNumber = `
SELECT ` + orderColumns + `
FROM orders
WHERE order_number = $1
`

func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	return scanOrder(s.db.QueryRow(ctx, getOrderByNumber, orderNumber))
}

var getOrderByIdempotencyKey = `
SELECT ` + orderColumns + `
FROM orders
WHERE idempotency_key = $1
`

func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (domain.Order, error) {
	return scanOrder(s.db.QueryRow(ctx, getOrderByIdempotencyKey, key))
}

const getOrderItems = `
SELECT id, order_id, product_sku_id, product_name, sku, quantity,
	unit_price_cents, total_cents
FROM order_items
WHERE order_id = $1
ORDER BY product_name
`

func (s *Store) GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error) {
	rows, err := s.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductSKUID, &it.ProductName, &it.SKU,
			&it.Quantity, &it.UnitPriceCents, &it.TotalCents,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// =============================================================================
// Tax audit trail
// =============================================================================

const saveTaxCalculation = `
INSERT INTO tax_calculations (order_id, rate, amount_cents, taxable_cents, breakdown, is_estimate)
VALUES ($1, $2, $3, $4, $5, $6)
`

func (s *Store) SaveTaxCalculation(ctx context.Context, arg SaveTaxCalculationParams) error {
	_, err := s.db.Exec(ctx, saveTaxCalculation,
		arg.OrderID, arg.Rate, arg.AmountCents, arg.TaxableCents, arg.Breakdown, arg.IsEstimate,
	)
	return err
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
