package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestview/residency-api/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, req *domain.RecordPaymentReq) (*domain.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

const paymentCols = `id, email, amount, month, apartment_no, created_at`

func (r *paymentRepository) Create(ctx context.Context, req *domain.RecordPaymentReq) (*domain.Payment, error) {
	const q = `INSERT INTO payments (email, amount, month, apartment_no)
		VALUES (lower($1), $2, $3, $4)
		RETURNING ` + paymentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Payment
	err := r.pool.QueryRow(ctx, q, req.Email, req.Amount, req.Month, req.ApartmentNo).Scan(
		&p.ID, &p.Email, &p.Amount, &p.Month, &p.ApartmentNo, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) ListByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE lower(email)=lower($1) ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.Email, &p.Amount, &p.Month, &p.ApartmentNo, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
