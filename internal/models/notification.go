// internal/models/notification.go
package models

import "time"

const (
	NotificationTypeOrder = "order"
)

// NotificationEvent is an administrator-facing ledger entry.
type NotificationEvent struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
