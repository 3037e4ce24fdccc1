package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"agri-marketplace/internal/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Insert(ctx context.Context, e *models.NotificationEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, message, type, read, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Message, e.Type, e.Read, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, message, type, read, created_at FROM notifications
		ORDER BY created_at DESC, id DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	events := []models.NotificationEvent{}
	for rows.Next() {
		var e models.NotificationEvent
		if err := rows.Scan(&e.ID, &e.Message, &e.Type, &e.Read, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
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
