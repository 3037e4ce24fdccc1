package listnotifications

import "agri-marketplace/internal/models"

type Input struct {
	Limit int `json:"limit,omitempty"`
}

type Output struct {
	Notifications []models.NotificationEvent `json:"notifications"`
	Count         int                        `json:"count"`
	Unread        int                        `json:"unread"`
}
