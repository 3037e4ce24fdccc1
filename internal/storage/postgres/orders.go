package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agri-marketplace/internal/models"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Insert(ctx context.Context, o *models.Order) error {
	buyer, err := marshalJSON(o.Buyer)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO orders (order_number, product_name, quantity, total, shipping_address, buyer,
			status, estimated_delivery, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.OrderNumber, o.ProductNameSnapshot, o.Quantity, o.Total, o.ShippingAddress, buyer,
		string(o.Status), o.EstimatedDelivery, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var (
		o         models.Order
		buyerJSON []byte
		status    string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT order_number, product_name, quantity, total, shipping_address, buyer,
			status, estimated_delivery, created_at, updated_at
		FROM orders WHERE order_number = $1`, orderNumber,
	).Scan(&o.OrderNumber, &o.ProductNameSnapshot, &o.Quantity, &o.Total, &o.ShippingAddress,
		&buyerJSON, &status, &o.EstimatedDelivery, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	o.Status = models.OrderStatus(status)
	if err := unmarshalJSON(buyerJSON, &o.Buyer); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus sets the status of an existing order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderNumber string, status models.OrderStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE order_number = $3`,
		string(status), at, orderNumber,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
