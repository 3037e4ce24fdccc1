package updateorderstatus

import "time"

type Input struct {
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
}

type Output struct {
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
