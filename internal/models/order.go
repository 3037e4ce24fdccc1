// internal/models/order.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "placed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the enumerated order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Buyer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Order keeps a snapshot of the product name taken at checkout; it holds no
// live reference to the catalog record.
type Order struct {
	OrderNumber         string          `json:"orderNumber"`
	ProductNameSnapshot string          `json:"productName"`
	Quantity            int             `json:"quantity"`
	Total               decimal.Decimal `json:"total"`
	ShippingAddress     string          `json:"shippingAddress"`
	Buyer               Buyer           `json:"buyer"`
	Status              OrderStatus     `json:"status"`
	EstimatedDelivery   time.Time       `json:"estimatedDelivery"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}
