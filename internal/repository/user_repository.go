package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestview/residency-api/internal/domain"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, role *domain.Role) ([]domain.User, error)
	// CreateIfAbsent inserts the user or returns the existing record for the
	// email. The bool reports whether an insert happened.
	CreateIfAbsent(ctx context.Context, email, name string) (*domain.User, bool, error)
	UpdateRole(ctx context.Context, email string, role domain.Role) (int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, email, name, role, created_at`

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE lower(email)=lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	q := `SELECT ` + userCols + ` FROM users`
	args := []any{}
	if role != nil {
		q += ` WHERE role=$1`
		args = append(args, *role)
	}
	q += ` ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) CreateIfAbsent(ctx context.Context, email, name string) (*domain.User, bool, error) {
	const q = `INSERT INTO users (email, name, role)
		VALUES (lower($1), $2, 'guest')
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, email, name).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		existing, ferr := r.FindByEmail(ctx, email)
		return existing, false, ferr
	}
	if err != nil {
		return nil, false, err
	}
	return &u, true, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, email string, role domain.Role) (int64, error) {
	const q = `UPDATE users SET role=$2 WHERE lower(email)=lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, email, role)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
