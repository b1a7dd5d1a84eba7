package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestview/residency-api/internal/domain"
)

// ErrDuplicateAgreement surfaces the partial unique index on
// agreements(user_email) WHERE status='pending'. The index, not a
// check-then-insert, is what holds the one-pending-agreement-per-user
// invariant under concurrent submits.
var ErrDuplicateAgreement = errors.New("agreement already exists for user")

type AgreementRepository interface {
	Create(ctx context.Context, req *domain.SubmitAgreementReq) (*domain.Agreement, error)
	GetByID(ctx context.Context, id int64) (*domain.Agreement, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Agreement, error)
	FindByEmail(ctx context.Context, email string) (*domain.Agreement, error)
	// Decide applies both halves of an acceptance in one transaction:
	// agreement -> checked, user -> member. Zero-affected updates are
	// reported, not treated as errors.
	Decide(ctx context.Context, id int64, email string) (*domain.DecisionResult, error)
	MarkChecked(ctx context.Context, id int64) (int64, error)
}

type agreementRepository struct {
	pool *pgxpool.Pool
}

func NewAgreementRepository(pool *pgxpool.Pool) AgreementRepository {
	return &agreementRepository{pool: pool}
}

const agreementCols = `id, user_email, block, floor, apartment_no, rent, status, created_at`

func (r *agreementRepository) Create(ctx context.Context, req *domain.SubmitAgreementReq) (*domain.Agreement, error) {
	const q = `INSERT INTO agreements (user_email, block, floor, apartment_no, rent, status)
		VALUES (lower($1), $2, $3, $4, $5, 'pending')
		RETURNING ` + agreementCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Agreement
	err := r.pool.QueryRow(ctx, q, req.UserEmail, req.Block, req.Floor, req.ApartmentNo, req.Rent).Scan(
		&a.ID, &a.UserEmail, &a.Block, &a.Floor, &a.ApartmentNo, &a.Rent, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateAgreement
		}
		return nil, err
	}
	return &a, nil
}

func (r *agreementRepository) GetByID(ctx context.Context, id int64) (*domain.Agreement, error) {
	const q = `SELECT ` + agreementCols + ` FROM agreements WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Agreement
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.UserEmail, &a.Block, &a.Floor, &a.ApartmentNo, &a.Rent, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *agreementRepository) ListByEmail(ctx context.Context, email string) ([]domain.Agreement, error) {
	const q = `SELECT ` + agreementCols + ` FROM agreements WHERE lower(user_email)=lower($1) ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreements []domain.Agreement
	for rows.Next() {
		var a domain.Agreement
		if err := rows.Scan(
			&a.ID, &a.UserEmail, &a.Block, &a.Floor, &a.ApartmentNo, &a.Rent, &a.Status, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		agreements = append(agreements, a)
	}
	return agreements, rows.Err()
}

func (r *agreementRepository) FindByEmail(ctx context.Context, email string) (*domain.Agreement, error) {
	const q = `SELECT ` + agreementCols + ` FROM agreements WHERE lower(user_email)=lower($1) ORDER BY created_at DESC LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Agreement
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&a.ID, &a.UserEmail, &a.Block, &a.Floor, &a.ApartmentNo, &a.Rent, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *agreementRepository) Decide(ctx context.Context, id int64, email string) (*domain.DecisionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	agreementRes, err := tx.Exec(ctx, `UPDATE agreements SET status='checked' WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}

	userRes, err := tx.Exec(ctx, `UPDATE users SET role='member' WHERE lower(email)=lower($1)`, email)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.DecisionResult{
		AgreementUpdated: agreementRes.RowsAffected(),
		UserUpdated:      userRes.RowsAffected(),
	}, nil
}

func (r *agreementRepository) MarkChecked(ctx context.Context, id int64) (int64, error) {
	const q = `UPDATE agreements SET status='checked' WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
