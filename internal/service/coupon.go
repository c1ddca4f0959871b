package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avsoarsa/global-gourmet/internal/discount"
	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// CouponInput is the admin payload for creating or updating a coupon.
type CouponInput struct {
	Code              string     `json:"code" validate:"required,alphanum,min=3,max=32"`
	DiscountType      string     `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue     int64      `json:"discount_value" validate:"required,gt=0"`
	MinimumOrderCents int64      `json:"minimum_order_cents" validate:"gte=0"`
	IsActive          bool       `json:"is_active"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	UsageLimit        *int32     `json:"usage_limit,omitempty" validate:"omitempty,gt=0"`
}

// CouponService is the admin-facing coupon management surface.
type CouponService interface {
	CreateCoupon(ctx context.Context, in CouponInput) (*domain.Coupon, error)
	UpdateCoupon(ctx context.Context, in CouponInput) (*domain.Coupon, error)
	GetCoupon(ctx context.Context, code string) (*domain.Coupon, error)
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)

	// DeactivateCoupon disables a coupon. Coupons referenced by historical
	// orders are never deleted.
	DeactivateCoupon(ctx context.Context, code string) (*domain.Coupon, error)
}

type couponService struct {
	repo     repository.Querier
	validate *validator.Validate
}

// NewCouponService creates the admin coupon service.
func NewCouponService(repo repository.Querier) CouponService {
	return &couponService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *couponService) checkInput(in CouponInput) error {
	if err := s.validate.Struct(in); err != nil {
		return validationError("coupon.input", err)
	}
	if err := discount.CheckAdminInput(discount.ValidateCouponInput{
		Code:              in.Code,
		DiscountType:      in.DiscountType,
		DiscountValue:     in.DiscountValue,
		MinimumOrderCents: in.MinimumOrderCents,
	}); err != nil {
		return err
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return domain.NewValidationError("coupon.input", "ends_at",
			"Validity window end must be after start")
	}
	return nil
}

func toParams(in CouponInput) repository.CreateCouponParams {
	p := repository.CreateCouponParams{
		Code:              strings.ToUpper(in.Code),
		DiscountType:      in.DiscountType,
		DiscountValue:     in.DiscountValue,
		MinimumOrderCents: in.MinimumOrderCents,
		IsActive:          in.IsActive,
	}
	if in.StartsAt != nil {
		p.StartsAt = pgtype.Timestamptz{Time: *in.StartsAt, Valid: true}
	}
	if in.EndsAt != nil {
		p.EndsAt = pgtype.Timestamptz{Time: *in.EndsAt, Valid: true}
	}
	if in.UsageLimit != nil {
		p.UsageLimit = pgtype.Int4{Int32: *in.UsageLimit, Valid: true}
	}
	return p
}

func (s *couponService) CreateCoupon(ctx context.Context, in CouponInput) (*domain.Coupon, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	coupon, err := s.repo.CreateCoupon(ctx, toParams(in))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateCouponCode
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &coupon, nil
}

func (s *couponService) UpdateCoupon(ctx context.Context, in CouponInput) (*domain.Coupon, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	p := toParams(in)
	coupon, err := s.repo.UpdateCoupon(ctx, repository.UpdateCouponParams(p))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}
	return &coupon, nil
}

func (s *couponService) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, err := s.repo.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &coupon, nil
}

func (s *couponService) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	coupons, err := s.repo.ListCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

func (s *couponService) DeactivateCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, err := s.GetCoupon(ctx, code)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateCoupon(ctx, repository.UpdateCouponParams{
		Code:              coupon.Code,
		DiscountType:      coupon.DiscountType,
		DiscountValue:     coupon.DiscountValue,
		MinimumOrderCents: coupon.MinimumOrderCents,
		IsActive:          false,
		StartsAt:          coupon.StartsAt,
		EndsAt:            coupon.EndsAt,
		UsageLimit:        coupon.UsageLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate coupon: %w", err)
	}
	return &updated, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
