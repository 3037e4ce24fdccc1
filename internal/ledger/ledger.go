// Package ledger is the administrator-facing notification feed.
package ledger

import (
	"context"
	"errors"

	"agri-marketplace/internal/common/clock"
	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/storage"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// EventStore persists notification events.
type EventStore interface {
	Insert(ctx context.Context, e *models.NotificationEvent) error
	ListRecent(ctx context.Context, limit int) ([]models.NotificationEvent, error)
	MarkRead(ctx context.Context, id string) error
}

// Ledger appends events and lists them newest first. Events are never edited
// apart from the read flag.
type Ledger struct {
	store EventStore
	clock clock.Clock
	newID func() string
}

func New(store EventStore, clk clock.Clock) *Ledger {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Ledger{store: store, clock: clk, newID: uuid.NewString}
}

// Append records event as unread, stamping id and creation time when unset.
func (l *Ledger) Append(ctx context.Context, event models.NotificationEvent) (*models.NotificationEvent, error) {
	if event.Message == "" {
		return nil, apperrors.NewValidationError("notification message is required")
	}
	if event.Type == "" {
		return nil, apperrors.NewValidationError("notification type is required")
	}
	if event.ID == "" {
		event.ID = l.newID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = l.clock.Now()
	}
	event.Read = false

	if err := l.store.Insert(ctx, &event); err != nil {
		return nil, apperrors.NewPersistenceError("notification", err)
	}
	return &event, nil
}

// ListRecent returns at most limit events ordered by creation time, newest
// first. Non-positive limits use DefaultListLimit.
func (l *Ledger) ListRecent(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	events, err := l.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list notifications", err)
	}
	return events, nil
}

func (l *Ledger) MarkRead(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFoundError("notification", id)
	}
	if err := l.store.MarkRead(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewNotFoundError("notification", id)
		}
		return apperrors.NewPersistenceError("notification", err)
	}
	return nil
}
