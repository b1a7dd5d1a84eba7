package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestview/residency-api/internal/domain"
)

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	Create(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error)
}

type couponRepository struct {
	pool *pgxpool.Pool
}

func NewCouponRepository(pool *pgxpool.Pool) CouponRepository {
	return &couponRepository{pool: pool}
}

const couponCols = `id, code, discount_percentage, expires_at, description, created_at`

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	const q = `SELECT ` + couponCols + ` FROM coupons WHERE code=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Coupon
	err := r.pool.QueryRow(ctx, q, code).Scan(&c.ID, &c.Code, &c.Discount, &c.ExpiresAt, &c.Desc, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	const q = `SELECT ` + couponCols + ` FROM coupons ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.Discount, &c.ExpiresAt, &c.Desc, &c.CreatedAt); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (r *couponRepository) Create(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error) {
	const q = `INSERT INTO coupons (code, discount_percentage, expires_at, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + couponCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.Coupon
	err := r.pool.QueryRow(ctx, q, c.Code, c.Discount, c.ExpiresAt, c.Desc).Scan(
		&out.ID, &out.Code, &out.Discount, &out.ExpiresAt, &out.Desc, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
