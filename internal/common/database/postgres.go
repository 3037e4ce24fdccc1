// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agri-marketplace/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a lib/pq pool. It does not dial; call Ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureSchema creates the marketplace tables when they are missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, rolling back on error.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_records (
		id                 UUID PRIMARY KEY,
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		category           TEXT NOT NULL DEFAULT '',
		focus_areas        TEXT[] NOT NULL DEFAULT '{}',
		primary_focus_area TEXT NOT NULL,
		startup_name       TEXT NOT NULL DEFAULT '',
		quantity           INTEGER NOT NULL DEFAULT 0,
		price              NUMERIC(14,2) NOT NULL DEFAULT 0,
		contact            JSONB NOT NULL DEFAULT '{}',
		images             TEXT[] NOT NULL DEFAULT '{}',
		reviews            JSONB NOT NULL DEFAULT '[]',
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_records_name ON catalog_records (name)`,
	`CREATE TABLE IF NOT EXISTS startups (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		contact    JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_number       TEXT PRIMARY KEY,
		product_name       TEXT NOT NULL,
		quantity           INTEGER NOT NULL,
		total              NUMERIC(14,2) NOT NULL,
		shipping_address   TEXT NOT NULL DEFAULT '',
		buyer              JSONB NOT NULL DEFAULT '{}',
		status             TEXT NOT NULL,
		estimated_delivery TIMESTAMPTZ NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         UUID PRIMARY KEY,
		message    TEXT NOT NULL,
		type       TEXT NOT NULL,
		read       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at DESC)`,
}
