package placeorder

import (
	"time"

	"agri-marketplace/internal/models"
	"agri-marketplace/internal/orders"

	"github.com/shopspring/decimal"
)

type Input struct {
	CatalogRecordID string          `json:"catalogRecordId,omitempty"`
	ProductName     string          `json:"productName"`
	Quantity        int             `json:"quantity"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shippingAddress"`
	Buyer           models.Buyer    `json:"buyer"`
}

type Output struct {
	OrderNumber       string                `json:"orderNumber"`
	EstimatedDelivery time.Time             `json:"estimatedDelivery"`
	Status            string                `json:"status"`
	Notifications     []orders.StageOutcome `json:"notifications"`
	FailedStages      []string              `json:"failedStages"`
}
