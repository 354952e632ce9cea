// Package db provides PostgreSQL persistence for resource plans, topics and their outputs.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	MaxConns       int
	MaxOverflow    int
	AcquireTimeout time.Duration
}

// DefaultPoolConfig returns the pool sizing used when nothing is configured.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:       10,
		MaxOverflow:    20,
		AcquireTimeout: 30 * time.Second,
	}
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	logger         *slog.Logger
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string, poolCfg PoolConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultPoolConfig()
	if poolCfg.MaxConns <= 0 {
		poolCfg.MaxConns = defaults.MaxConns
	}
	if poolCfg.MaxOverflow < 0 {
		poolCfg.MaxOverflow = 0
	}
	if poolCfg.AcquireTimeout <= 0 {
		poolCfg.AcquireTimeout = defaults.AcquireTimeout
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.MaxConns = int32(poolCfg.MaxConns + poolCfg.MaxOverflow)
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("database pool ready", "max_conns", cfg.MaxConns, "acquire_timeout", poolCfg.AcquireTimeout)

	return &DB{pool: pool, acquireTimeout: poolCfg.AcquireTimeout, logger: logger}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()
	return nil
}

// Stats reports pool usage.
func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}

// WithTx runs fn inside a single transaction on its own pooled connection.
// The transaction commits when fn returns nil and rolls back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(Tx) error) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// acquire takes a connection from the pool, waiting at most acquireTimeout,
// and verifies it with a ping before handing it out.
func (db *DB) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	for attempt := 0; ; attempt++ {
		acqCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
		conn, err := db.pool.Acquire(acqCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				stat := db.pool.Stat()
				db.logger.Warn("connection pool exhausted",
					"acquired", stat.AcquiredConns(), "max", stat.MaxConns())
				return nil, fmt.Errorf("%w: waited %s", ErrResourceExhausted, db.acquireTimeout)
			}
			return nil, storageErr("acquire connection", err)
		}

		if err := conn.Ping(ctx); err != nil {
			// Broken connection: close it so Release destroys it, then retry once.
			_ = conn.Conn().Close(context.WithoutCancel(ctx))
			conn.Release()
			if attempt == 0 && ctx.Err() == nil {
				db.logger.Debug("discarding unhealthy connection", "error", err)
				continue
			}
			return nil, storageErr("ping connection", err)
		}
		return conn, nil
	}
}
