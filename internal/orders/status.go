package orders

import (
	"context"
	"errors"
	"time"

	"agri-marketplace/internal/common/clock"
	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/storage"
)

type StatusStore interface {
	UpdateStatus(ctx context.Context, orderNumber string, status models.OrderStatus, at time.Time) error
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

// StatusUpdater moves an existing order to another enumerated status.
type StatusUpdater struct {
	store StatusStore
	clock clock.Clock
}

func NewStatusUpdater(store StatusStore, clk clock.Clock) *StatusUpdater {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &StatusUpdater{store: store, clock: clk}
}

func (u *StatusUpdater) UpdateOrderStatus(ctx context.Context, orderNumber, status string) (*models.Order, error) {
	if orderNumber == "" {
		return nil, apperrors.NewValidationError("orderNumber is required")
	}
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, apperrors.NewValidationError("unknown order status: " + status)
	}

	err := u.store.UpdateStatus(ctx, orderNumber, next, u.clock.Now())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("order", orderNumber)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("order", err)
	}

	order, err := u.store.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("find order", err)
	}
	return order, nil
}
