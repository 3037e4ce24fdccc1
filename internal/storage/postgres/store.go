// Package postgres implements the marketplace repositories on lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"agri-marketplace/internal/common/clock"
	"agri-marketplace/internal/storage"
)

// ErrNotFound aliases storage.ErrNotFound for callers of this package.
var ErrNotFound = storage.ErrNotFound

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Store groups the repositories over one connection pool.
type Store struct {
	Catalog       *CatalogRepository
	Startups      *StartupRepository
	Orders        *OrderRepository
	Notifications *NotificationRepository
}

func NewStore(db *sql.DB, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Store{
		Catalog:       NewCatalogRepository(db, nil, clk),
		Startups:      NewStartupRepository(db),
		Orders:        NewOrderRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

func marshalJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return b, nil
}

func unmarshalJSON(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
