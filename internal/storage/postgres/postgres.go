// Package postgres stores save slots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/aviary/internal/config"
)

// ErrSchemaMissing is returned by SchemaReady when the save_slots table has
// not been created. Run cmd/migrate first.
var ErrSchemaMissing = errors.New("save_slots table missing; run migrations")

// Pool owns the pgx connection pool shared by the save repository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a pinged Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	// One engine writes one slot at a time; a small pool is enough.
	poolCfg.MaxConns = max(cfg.MaxConns, 1)
	poolCfg.MinConns = min(cfg.MinConns, poolCfg.MaxConns)
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Health pings the database within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// SchemaReady reports ErrSchemaMissing until the save_slots migration has
// been applied.
func (p *Pool) SchemaReady(ctx context.Context) error {
	var exists bool
	if err := p.pool.QueryRow(ctx, `SELECT to_regclass('save_slots') IS NOT NULL`).Scan(&exists); err != nil {
		return fmt.Errorf("checking save schema: %w", err)
	}
	if !exists {
		return ErrSchemaMissing
	}
	return nil
}

// Saves returns a save.Backend over this pool.
func (p *Pool) Saves() *SaveRepository { return NewSaveRepository(p.pool) }

// Close releases all pool resources.
func (p *Pool) Close() { p.pool.Close() }

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }
