package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fliptrack/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a project or media record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery wraps rejected filter or search input.
	ErrInvalidQuery = errors.New("invalid query")
)

type DB struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")
	return &DB{Pool: pool, logger: logger}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *DB) Close() {
	db.Pool.Close()
	db.logger.Info("Database connection closed")
}

// track records the duration of a store operation. Use as
// defer db.track("operation", "table", time.Now(), fields...).
func (db *DB) track(operation, table string, start time.Time, fields ...zap.Field) {
	d := time.Since(start)
	metrics.RecordDBQueryDuration(operation, table, d)
	db.logger.Debug(operation, append(fields, zap.Duration("duration", d))...)
}

// Helper functions

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}
