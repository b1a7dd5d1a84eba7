package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/repository"
)

type CouponService interface {
	Validate(ctx context.Context, code string) (*domain.CouponValidation, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	Create(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error)
}

type couponService struct {
	couponRepo repository.CouponRepository
	now        func() time.Time
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo, now: time.Now}
}

// Validate re-evaluates expiry against the wall clock on every call.
func (s *couponService) Validate(ctx context.Context, code string) (*domain.CouponValidation, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrValidation)
	}

	coupon, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if coupon == nil {
		return &domain.CouponValidation{Valid: false, Message: "coupon not found"}, nil
	}
	if coupon.ExpiresAt.Before(s.now()) {
		return &domain.CouponValidation{Valid: false, Message: "coupon expired"}, nil
	}

	discount := coupon.Discount
	return &domain.CouponValidation{Valid: true, Discount: &discount, Message: "coupon is valid"}, nil
}

func (s *couponService) List(ctx context.Context) ([]domain.Coupon, error) {
	return s.couponRepo.List(ctx)
}

func (s *couponService) Create(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error) {
	if c.Code == "" || c.Discount <= 0 || c.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: code, discount_percentage and expires_at are required", domain.ErrValidation)
	}
	return s.couponRepo.Create(ctx, c)
}
