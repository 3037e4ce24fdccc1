// Package orders places orders and fans out best-effort notifications.
package orders

import (
	"context"
	"time"

	"agri-marketplace/internal/models"

	"github.com/shopspring/decimal"
)

// Request is a buyer checkout.
type Request struct {
	CatalogRecordID string          `json:"catalogRecordId,omitempty"`
	ProductName     string          `json:"productName"`
	Quantity        int             `json:"quantity"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shippingAddress"`
	Buyer           models.Buyer    `json:"buyer"`
}

// Confirmation is all the caller learns about a placed order.
type Confirmation struct {
	OrderNumber       string             `json:"orderNumber"`
	EstimatedDelivery time.Time          `json:"estimatedDelivery"`
	Status            models.OrderStatus `json:"status"`
}

type Stage string

const (
	StagePersistOrder       Stage = "persist-order"
	StageNotifyBuyer        Stage = "notify-buyer"
	StageResolveStartup     Stage = "resolve-startup"
	StageNotifyStartupEmail Stage = "notify-startup-email"
	StageNotifyStartupSMS   Stage = "notify-startup-sms"
	StageLedgerEntry        Stage = "ledger-entry"
)

type StageStatus string

const (
	StatusSucceeded StageStatus = "succeeded"
	StatusSkipped   StageStatus = "skipped"
	StatusFailed    StageStatus = "failed"
)

type StageOutcome struct {
	Stage    Stage         `json:"stage"`
	Status   StageStatus   `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"durationNs"`
}

// Report lists every stage outcome of one placement, in execution order.
type Report struct {
	OrderNumber string         `json:"orderNumber,omitempty"`
	Outcomes    []StageOutcome `json:"outcomes"`
}

func (r *Report) add(o StageOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Outcome returns the recorded outcome for stage.
func (r *Report) Outcome(stage Stage) (StageOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Stage == stage {
			return o, true
		}
	}
	return StageOutcome{}, false
}

// Failed lists the stages that ended in failure.
func (r *Report) Failed() []Stage {
	var out []Stage
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o.Stage)
		}
	}
	return out
}

// OrderWriter persists a new order.
type OrderWriter interface {
	Insert(ctx context.Context, o *models.Order) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type TextMessenger interface {
	Send(ctx context.Context, to, body string) error
}

// LedgerWriter appends administrative notification events.
type LedgerWriter interface {
	Append(ctx context.Context, event models.NotificationEvent) (*models.NotificationEvent, error)
}

// Resolution is the catalog record and startup an order routes to.
type Resolution struct {
	Record  *models.CatalogRecord
	Startup *models.Startup
}

// StartupResolver finds who sells the ordered product. It returns
// ErrUnresolved when either lookup matches nothing.
type StartupResolver interface {
	Resolve(ctx context.Context, catalogRecordID, productName string) (*Resolution, error)
}
