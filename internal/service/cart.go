package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CartService provides business logic for shopping cart operations.
type CartService interface {
	// GetOrCreateCart resolves the cart for a session token, creating both
	// when the token is empty or unknown. Returns the summary and the token
	// the caller should persist in its cookie.
	GetOrCreateCart(ctx context.Context, sessionToken string) (*CartSummary, string, error)
	AddItem(ctx context.Context, cartID string, skuID string, quantity int) (*CartSummary, error)
	UpdateItemQuantity(ctx context.Context, cartID string, skuID string, quantity int) (*CartSummary, error)
	RemoveItem(ctx context.Context, cartID string, skuID string) (*CartSummary, error)
	GetCartSummary(ctx context.Context, cartID string) (*CartSummary, error)
	ClearCart(ctx context.Context, cartID string) error
}

// CartSummary aggregates cart information with items and calculated totals.
type CartSummary struct {
	Cart          repository.Cart
	Items         []CartItem
	SubtotalCents int64
	ItemCount     int
}

// CartItem is a cart line with product details and its line subtotal.
type CartItem struct {
	ID             pgtype.UUID
	SKUID          pgtype.UUID
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	LineSubtotal   int64
	TaxCategory    string
}

type cartService struct {
	repo repository.Querier
}

// NewCartService creates a new CartService instance.
func NewCartService(repo repository.Querier) CartService {
	return &cartService{repo: repo}
}

// GenerateSessionToken returns an opaque 128-bit hex token for cart cookies.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *cartService) GetOrCreateCart(ctx context.Context, sessionToken string) (*CartSummary, string, error) {
	if sessionToken != "" {
		cart, err := s.repo.GetCartBySessionToken(ctx, sessionToken)
		if err == nil {
			summary, err := s.summarize(ctx, cart)
			if err != nil {
				return nil, "", err
			}
			return summary, sessionToken, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, "", fmt.Errorf("failed to get cart by session token: %w", err)
		}
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, "", err
	}

	cart, err := s.repo.CreateCart(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create cart: %w", err)
	}

	return &CartSummary{Cart: cart, Items: []CartItem{}}, token, nil
}

func (s *cartService) AddItem(ctx context.Context, cartID string, skuID string, quantity int) (*CartSummary, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var cartUUID pgtype.UUID
	if err := cartUUID.Scan(cartID); err != nil {
		return nil, fmt.Errorf("invalid cart ID: %w", err)
	}

	var skuUUID pgtype.UUID
	if err := skuUUID.Scan(skuID); err != nil {
		return nil, fmt.Errorf("invalid SKU ID: %w", err)
	}

	sku, err := s.repo.GetSKUByID(ctx, skuUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get SKU: %w", err)
	}
	if !sku.IsActive {
		return nil, domain.ErrProductNotFound
	}

	// Unit price is captured here; later price changes do not move the line.
	err = s.repo.AddCartItem(ctx, repository.AddCartItemParams{
		CartID:         cartUUID,
		ProductSKUID:   skuUUID,
		Quantity:       int32(quantity),
		UnitPriceCents: sku.PriceCents,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return s.GetCartSummary(ctx, cartID)
}

// UpdateItemQuantity updates the quantity of a cart item.
// A quantity of 0 removes the item.
func (s *cartService) UpdateItemQuantity(ctx context.Context, cartID string, skuID string, quantity int) (*CartSummary, error) {
	if quantity == 0 {
		return s.RemoveItem(ctx, cartID, skuID)
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var cartUUID pgtype.UUID
	if err := cartUUID.Scan(cartID); err != nil {
		return nil, fmt.Errorf("invalid cart ID: %w", err)
	}

	var skuUUID pgtype.UUID
	if err := skuUUID.Scan(skuID); err != nil {
		return nil, fmt.Errorf("invalid SKU ID: %w", err)
	}

	err := s.repo.UpdateCartItemQuantity(ctx, repository.UpdateCartItemQuantityParams{
		CartID:       cartUUID,
		ProductSKUID: skuUUID,
		Quantity:     int32(quantity),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	return s.GetCartSummary(ctx, cartID)
}

func (s *cartService) RemoveItem(ctx context.Context, cartID string, skuID string) (*CartSummary, error) {
	var cartUUID pgtype.UUID
	if err := cartUUID.Scan(cartID); err != nil {
		return nil, fmt.Errorf("invalid cart ID: %w", err)
	}

	var skuUUID pgtype.UUID
	if err := skuUUID.Scan(skuID); err != nil {
		return nil, fmt.Errorf("invalid SKU ID: %w", err)
	}

	err := s.repo.RemoveCartItem(ctx, repository.RemoveCartItemParams{
		CartID:       cartUUID,
		ProductSKUID: skuUUID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.GetCartSummary(ctx, cartID)
}

func (s *cartService) GetCartSummary(ctx context.Context, cartID string) (*CartSummary, error) {
	var cartUUID pgtype.UUID
	if err := cartUUID.Scan(cartID); err != nil {
		return nil, fmt.Errorf("invalid cart ID: %w", err)
	}

	cart, err := s.repo.GetCartByID(ctx, cartUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return s.summarize(ctx, cart)
}

func (s *cartService) summarize(ctx context.Context, cart repository.Cart) (*CartSummary, error) {
	items, err := s.repo.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	cartItems := make([]CartItem, 0, len(items))
	var subtotal int64
	var itemCount int

	for _, item := range items {
		lineSubtotal := int64(item.Quantity) * item.UnitPriceCents
		subtotal += lineSubtotal
		itemCount += int(item.Quantity)

		taxCategory := ""
		if item.TaxCategory.Valid {
			taxCategory = item.TaxCategory.String
		}

		cartItems = append(cartItems, CartItem{
			ID:             item.ID,
			SKUID:          item.ProductSKUID,
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineSubtotal:   lineSubtotal,
			TaxCategory:    taxCategory,
		})
	}

	return &CartSummary{
		Cart:          cart,
		Items:         cartItems,
		SubtotalCents: subtotal,
		ItemCount:     itemCount,
	}, nil
}

func (s *cartService) ClearCart(ctx context.Context, cartID string) error {
	var cartUUID pgtype.UUID
	if err := cartUUID.Scan(cartID); err != nil {
		return fmt.Errorf("invalid cart ID: %w", err)
	}

	if err := s.repo.ClearCart(ctx, cartUUID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
