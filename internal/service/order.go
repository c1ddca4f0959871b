package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/events"
	"github.com/avsoarsa/global-gourmet/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderStore is the repository surface the order service needs: plain
// queries plus the ability to run a closure in one transaction.
type OrderStore interface {
	repository.Querier
	ExecTx(ctx context.Context, fn func(repository.Querier) error) error
}

// OrderDetail is an order header with its lines.
type OrderDetail struct {
	Order domain.Order
	Items []domain.OrderItem
}

// OrderService submits checkout sessions as orders and reads them back.
type OrderService interface {
	// PlaceOrder converts a completed checkout session into a persisted
	// order. The whole write path runs in one transaction: header, lines,
	// stock decrements, coupon redemption, and cart conversion commit or
	// roll back together. Resubmitting with the same idempotency key
	// returns the original order.
	PlaceOrder(ctx context.Context, sessionID string, idempotencyKey string) (*OrderDetail, error)

	GetOrder(ctx context.Context, orderID string) (*OrderDetail, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderDetail, error)
}

type orderService struct {
	store     OrderStore
	sessions  *SessionManager
	billing   PaymentProvider
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderService creates the order submission and lookup service.
func NewOrderService(
	store OrderStore,
	sessions *SessionManager,
	billingProvider PaymentProvider,
	publisher events.Publisher,
	logger *slog.Logger,
) OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &orderService{
		store:     store,
		sessions:  sessions,
		billing:   billingProvider,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, sessionID string, idempotencyKey string) (*OrderDetail, error) {
	if idempotencyKey == "" {
		return nil, domain.ErrMissingIdempotencyKey
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	// A session that already produced an order returns it instead of
	// submitting twice.
	if session.Completed() {
		return s.GetOrder(ctx, session.OrderID)
	}

	if session.ShippingAddress == nil {
		return nil, &domain.StepError{
			Missing: domain.StepShipping,
			Reason:  "Shipping details are required before submitting",
		}
	}
	if session.PaymentIntentID == "" {
		return nil, &domain.StepError{
			Missing: domain.StepPayment,
			Reason:  "Payment must be set up before submitting",
		}
	}
	if !session.Totals.Consistent() {
		return nil, domain.Internal(nil, "order.place", "order totals are inconsistent")
	}

	// A retried submit that lost its response finds the first attempt here.
	existing, err := s.store.GetOrderByIdempotencyKey(ctx, idempotencyKey)
	if err == nil {
		return s.detail(ctx, existing)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	intent, err := s.billing.GetPaymentIntent(ctx, session.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment intent: %w", err)
	}
	if !intent.Succeeded() {
		return nil, domain.ErrPaymentNotSucceeded
	}

	cartID, err := parseUUID(session.CartID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart ID in session: %w", err)
	}

	cart, err := s.store.GetCartByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Status == repository.CartStatusConverted {
		return nil, domain.ErrCartAlreadyConverted
	}

	items, err := s.store.GetCartItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	orderNumber, err := generateOrderNumber(s.now())
	if err != nil {
		return nil, err
	}

	var couponID pgtype.UUID
	var couponCode pgtype.Text
	if session.CouponCode != "" {
		coupon, err := s.store.GetCouponByCode(ctx, session.CouponCode)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve coupon: %w", err)
		}
		couponID = coupon.ID
		couponCode = pgtype.Text{String: coupon.Code, Valid: true}
	}

	paymentMethod := session.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "card"
	}

	var order domain.Order
	var orderItems []domain.OrderItem

	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		var txErr error
		order, txErr = q.CreateOrder(ctx, repository.CreateOrderParams{
			OrderNumber:    orderNumber,
			CartID:         cartID,
			SubtotalCents:  session.Totals.SubtotalCents,
			DiscountCents:  session.Totals.DiscountCents,
			TaxCents:       session.Totals.TaxCents,
			ShippingCents:  session.Totals.ShippingCents,
			TotalCents:     session.Totals.TotalCents,
			Currency:       currencyFor(session.ShippingAddress.Country),
			CouponCode:     couponCode,
			CouponID:       couponID,
			PaymentMethod:  paymentMethod,
			PaymentIntent:  pgtype.Text{String: session.PaymentIntentID, Valid: true},
			IdempotencyKey: pgtype.Text{String: idempotencyKey, Valid: true},
			ShippingAddr:   *session.ShippingAddress,
		})
		if txErr != nil {
			return fmt.Errorf("failed to create order: %w", txErr)
		}

		orderItems = orderItems[:0]
		for _, item := range items {
			line, txErr := q.CreateOrderItem(ctx, repository.CreateOrderItemParams{
				OrderID:        order.ID,
				ProductSKUID:   item.ProductSKUID,
				ProductName:    item.ProductName,
				SKU:            item.SKU,
				Quantity:       item.Quantity,
				UnitPriceCents: item.UnitPriceCents,
			})
			if txErr != nil {
				return fmt.Errorf("failed to create order item: %w", txErr)
			}
			orderItems = append(orderItems, line)

			affected, txErr := q.DecrementSKUStock(ctx, repository.DecrementSKUStockParams{
				ID:       item.ProductSKUID,
				Quantity: item.Quantity,
			})
			if txErr != nil {
				return fmt.Errorf("failed to decrement stock: %w", txErr)
			}
			if affected == 0 {
				return domain.ErrInsufficientStock
			}
		}

		if couponID.Valid {
			if _, txErr := q.RedeemCoupon(ctx, repository.RedeemCouponParams{
				CouponID: couponID,
				OrderID:  order.ID,
			}); txErr != nil {
				return txErr
			}
		}

		if txErr := q.UpdateCartStatus(ctx, repository.UpdateCartStatusParams{
			ID:     cartID,
			Status: repository.CartStatusConverted,
		}); txErr != nil {
			return fmt.Errorf("failed to convert cart: %w", txErr)
		}

		if session.Tax != nil {
			breakdown, txErr := json.Marshal(session.Tax.Breakdown)
			if txErr != nil {
				return fmt.Errorf("failed to marshal tax breakdown: %w", txErr)
			}
			if txErr := q.SaveTaxCalculation(ctx, repository.SaveTaxCalculationParams{
				OrderID:      order.ID,
				Rate:         session.Tax.Rate,
				AmountCents:  session.Tax.AmountCents,
				TaxableCents: session.Tax.TaxableCents,
				Breakdown:    breakdown,
				IsEstimate:   session.Tax.IsEstimate,
			}); txErr != nil {
				return fmt.Errorf("failed to save tax calculation: %w", txErr)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Update(sessionID, func(cs *CheckoutSession) error {
		cs.Step = domain.StepConfirmation
		cs.OrderID = uuidString(order.ID)
		cs.OrderNumber = order.OrderNumber
		return nil
	}); err != nil {
		// The order is committed; a vanished session only loses the
		// confirmation page shortcut.
		s.logger.Warn("failed to mark checkout session complete",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.publishCreated(ctx, order, len(orderItems))

	return &OrderDetail{Order: order, Items: orderItems}, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*OrderDetail, error) {
	id, err := parseUUID(orderID)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return s.detail(ctx, order)
}

func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderDetail, error) {
	order, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return s.detail(ctx, order)
}

func (s *orderService) detail(ctx context.Context, order domain.Order) (*OrderDetail, error) {
	items, err := s.store.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	return &OrderDetail{Order: order, Items: items}, nil
}

func (s *orderService) publishCreated(ctx context.Context, order domain.Order, itemCount int) {
	event := events.OrderCreated{
		OrderID:       uuidString(order.ID),
		OrderNumber:   order.OrderNumber,
		Currency:      order.Currency,
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		TaxCents:      order.TaxCents,
		ShippingCents: order.ShippingCents,
		TotalCents:    order.TotalCents,
		ItemCount:     itemCount,
		CreatedAt:     s.now(),
	}
	if order.CouponCode.Valid {
		event.CouponCode = order.CouponCode.String
	}

	if err := s.publisher.Publish(ctx, events.SubjectOrderCreated, event); err != nil {
		s.logger.Warn("failed to publish order created event",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()),
		)
	}
}

const orderNumberAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

// generateOrderNumber returns a human-readable number like ORD-20250615-K3QD.
func generateOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	suffix := make([]byte, 4)
	for i, b := range buf {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix), nil
}
