package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestview/residency-api/internal/domain"
)

type ApartmentRepository interface {
	List(ctx context.Context, minRent, maxRent int64, limit, offset int) ([]domain.Apartment, error)
	// Count counts the filtered set, not the whole table; page math depends
	// on it.
	Count(ctx context.Context, minRent, maxRent int64) (int64, error)
}

type apartmentRepository struct {
	pool *pgxpool.Pool
}

func NewApartmentRepository(pool *pgxpool.Pool) ApartmentRepository {
	return &apartmentRepository{pool: pool}
}

const apartmentCols = `id, block, floor, apartment_no, rent, image_url`

func (r *apartmentRepository) List(ctx context.Context, minRent, maxRent int64, limit, offset int) ([]domain.Apartment, error) {
	const q = `SELECT ` + apartmentCols + ` FROM apartments
		WHERE rent >= $1 AND rent <= $2
		ORDER BY id
		LIMIT $3 OFFSET $4`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, minRent, maxRent, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apartments := []domain.Apartment{}
	for rows.Next() {
		var a domain.Apartment
		if err := rows.Scan(&a.ID, &a.Block, &a.Floor, &a.ApartmentNo, &a.Rent, &a.ImageURL); err != nil {
			return nil, err
		}
		apartments = append(apartments, a)
	}
	return apartments, rows.Err()
}

func (r *apartmentRepository) Count(ctx context.Context, minRent, maxRent int64) (int64, error) {
	const q = `SELECT count(*) FROM apartments WHERE rent >= $1 AND rent <= $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total int64
	err := r.pool.QueryRow(ctx, q, minRent, maxRent).Scan(&total)
	return total, err
}
