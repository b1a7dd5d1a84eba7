package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestview/residency-api/pkg/config"
)

// Connect builds the process-wide pgx pool. The pool is the only storage
// handle in the system; it is constructed here and injected into every
// repository, and closed by the caller at shutdown.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	pc.MinConns = int32(cfg.MinConns)
	pc.MaxConns = int32(cfg.MaxConns)
	pc.MaxConnLifetime = cfg.MaxLifetime
	pc.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
