package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestview/residency-api/internal/domain"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, req *domain.CreateAnnouncementReq) (*domain.Announcement, error)
	List(ctx context.Context) ([]domain.Announcement, error)
}

type announcementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) AnnouncementRepository {
	return &announcementRepository{pool: pool}
}

const announcementCols = `id, title, description, importance, type, created_at`

func (r *announcementRepository) Create(ctx context.Context, req *domain.CreateAnnouncementReq) (*domain.Announcement, error) {
	const q = `INSERT INTO announcements (title, description, importance, type)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + announcementCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Announcement
	err := r.pool.QueryRow(ctx, q, req.Title, req.Description, req.Importance, req.Type).Scan(
		&a.ID, &a.Title, &a.Description, &a.Importance, &a.Type, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepository) List(ctx context.Context) ([]domain.Announcement, error) {
	const q = `SELECT ` + announcementCols + ` FROM announcements ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var announcements []domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Importance, &a.Type, &a.CreatedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}
