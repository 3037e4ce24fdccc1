package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"agri-marketplace/internal/common/clock"
	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/common/metrics"
	"agri-marketplace/internal/models"
)

const (
	DefaultNumberPrefix   = "ORD"
	DefaultDeliveryDays   = 5
	DefaultChannelTimeout = 10 * time.Second
)

type Config struct {
	NumberPrefix   string
	DeliveryDays   int
	ChannelTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.NumberPrefix == "" {
		c.NumberPrefix = DefaultNumberPrefix
	}
	if c.DeliveryDays <= 0 {
		c.DeliveryDays = DefaultDeliveryDays
	}
	if c.ChannelTimeout <= 0 {
		c.ChannelTimeout = DefaultChannelTimeout
	}
	return c
}

// Dependencies are the collaborators of the pipeline. Mailer and Messenger may
// be nil, in which case their stages are skipped.
type Dependencies struct {
	Orders    OrderWriter
	Resolver  StartupResolver
	Ledger    LedgerWriter
	Mailer    Mailer
	Messenger TextMessenger
}

type Option func(*Pipeline)

func WithClock(c clock.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithRandIntN replaces the source of the order number suffix.
func WithRandIntN(fn func(n int) int) Option {
	return func(p *Pipeline) { p.randIntN = fn }
}

func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Pipeline persists an order and then runs the notification stages in order.
// Only persistence can fail a placement.
type Pipeline struct {
	deps     Dependencies
	cfg      Config
	clock    clock.Clock
	randIntN func(n int) int
	logger   logger.Logger
}

func NewPipeline(deps Dependencies, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		deps:     deps,
		cfg:      cfg.withDefaults(),
		clock:    clock.NewSystem(),
		randIntN: rand.IntN,
		logger:   logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// errSkip marks a stage that had nothing to do.
type errSkip struct{ reason string }

func (e errSkip) Error() string { return e.reason }

func skip(format string, args ...interface{}) error {
	return errSkip{reason: fmt.Sprintf(format, args...)}
}

func (p *Pipeline) PlaceOrder(ctx context.Context, req Request) (*Confirmation, *Report, error) {
	report := &Report{}

	if err := validateRequest(req); err != nil {
		return nil, report, err
	}

	now := p.clock.Now()
	order := &models.Order{
		OrderNumber:         p.orderNumber(now),
		ProductNameSnapshot: strings.TrimSpace(req.ProductName),
		Quantity:            req.Quantity,
		Total:               req.Total,
		ShippingAddress:     req.ShippingAddress,
		Buyer:               req.Buyer,
		Status:              models.OrderStatusPlaced,
		EstimatedDelivery:   now.AddDate(0, 0, p.cfg.DeliveryDays),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	report.OrderNumber = order.OrderNumber
	log := p.logger.WithFields(map[string]interface{}{"orderNumber": order.OrderNumber})

	var persistErr error
	persisted := p.runStage(ctx, report, log, StagePersistOrder, 0, func(ctx context.Context) error {
		persistErr = p.deps.Orders.Insert(ctx, order)
		return persistErr
	})
	if persisted.Status != StatusSucceeded {
		if persistErr == nil {
			persistErr = errors.New(persisted.Error)
		}
		return nil, report, apperrors.NewPersistenceError("order", persistErr)
	}
	metrics.OrdersPlaced.Inc()

	data := templateData(order)

	p.runStage(ctx, report, log, StageNotifyBuyer, p.cfg.ChannelTimeout, func(ctx context.Context) error {
		if order.Buyer.Email == "" {
			return skip("buyer has no email")
		}
		if p.deps.Mailer == nil {
			return skip("mailer not configured")
		}
		return p.deps.Mailer.Send(ctx, order.Buyer.Email, render(buyerSubject, data), render(buyerBody, data))
	})

	var resolution *Resolution
	resolved := p.runStage(ctx, report, log, StageResolveStartup, 0, func(ctx context.Context) error {
		if p.deps.Resolver == nil {
			return skip("resolver not configured")
		}
		r, err := p.deps.Resolver.Resolve(ctx, req.CatalogRecordID, order.ProductNameSnapshot)
		if errors.Is(err, ErrUnresolved) {
			return skip("%s", err.Error())
		}
		if err != nil {
			return err
		}
		resolution = r
		return nil
	})

	if resolution == nil {
		reason := "startup unresolved"
		if resolved.Detail != "" {
			reason = resolved.Detail
		}
		log.Warn("Skipping startup notifications", map[string]interface{}{"reason": reason})
		for _, stage := range []Stage{StageNotifyStartupEmail, StageNotifyStartupSMS, StageLedgerEntry} {
			p.record(report, StageOutcome{Stage: stage, Status: StatusSkipped, Detail: reason})
		}
		return p.confirmation(order), report, nil
	}

	data["startupName"] = resolution.Startup.Name
	contact := startupContact(resolution)

	p.runStage(ctx, report, log, StageNotifyStartupEmail, p.cfg.ChannelTimeout, func(ctx context.Context) error {
		if contact.Email == "" {
			return skip("startup has no email")
		}
		if p.deps.Mailer == nil {
			return skip("mailer not configured")
		}
		return p.deps.Mailer.Send(ctx, contact.Email, render(startupSubject, data), render(startupBody, data))
	})

	p.runStage(ctx, report, log, StageNotifyStartupSMS, p.cfg.ChannelTimeout, func(ctx context.Context) error {
		if contact.Phone == "" {
			return skip("startup has no phone")
		}
		if p.deps.Messenger == nil {
			return skip("text messenger not configured")
		}
		return p.deps.Messenger.Send(ctx, contact.Phone, render(startupSMS, data))
	})

	p.runStage(ctx, report, log, StageLedgerEntry, 0, func(ctx context.Context) error {
		if p.deps.Ledger == nil {
			return skip("ledger not configured")
		}
		_, err := p.deps.Ledger.Append(ctx, models.NotificationEvent{
			Message: render(ledgerMessage, data),
			Type:    models.NotificationTypeOrder,
		})
		return err
	})

	return p.confirmation(order), report, nil
}

// runStage executes fn, converting errors and panics into a recorded outcome.
// A positive timeout bounds fn's context.
func (p *Pipeline) runStage(ctx context.Context, report *Report, log logger.Logger, stage Stage, timeout time.Duration, fn func(ctx context.Context) error) (outcome StageOutcome) {
	outcome.Stage = stage
	start := time.Now()

	stageCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = StatusFailed
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
		outcome.Duration = time.Since(start)
		if outcome.Status == StatusFailed {
			log.Error("Order stage failed", map[string]interface{}{
				"stage": string(stage),
				"error": outcome.Error,
			})
		}
		p.record(report, outcome)
	}()

	err := fn(stageCtx)
	var skipped errSkip
	switch {
	case err == nil:
		outcome.Status = StatusSucceeded
	case errors.As(err, &skipped):
		outcome.Status = StatusSkipped
		outcome.Detail = skipped.reason
	default:
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
	}
	return outcome
}

func (p *Pipeline) record(report *Report, o StageOutcome) {
	report.add(o)
	metrics.FanoutStageOutcomes.WithLabelValues(string(o.Stage), string(o.Status)).Inc()
}

func (p *Pipeline) orderNumber(now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", p.cfg.NumberPrefix, now.UnixMilli(), p.randIntN(1000))
}

func (p *Pipeline) confirmation(o *models.Order) *Confirmation {
	return &Confirmation{
		OrderNumber:       o.OrderNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		Status:            o.Status,
	}
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.ProductName) == "" {
		return apperrors.NewValidationError("productName is required")
	}
	if req.Quantity < 1 {
		return apperrors.NewValidationError("quantity must be at least 1")
	}
	if req.Total.IsNegative() {
		return apperrors.NewValidationError("total must not be negative")
	}
	return nil
}

// startupContact prefers the startup's own contact and falls back to the
// contact stored on the catalog record, field by field.
func startupContact(r *Resolution) models.Contact {
	c := r.Startup.Contact
	if r.Record == nil {
		return c
	}
	if c.Email == "" {
		c.Email = r.Record.Contact.Email
	}
	if c.Phone == "" {
		c.Phone = r.Record.Contact.Phone
	}
	return c
}

func templateData(o *models.Order) map[string]interface{} {
	return map[string]interface{}{
		"orderNumber":       o.OrderNumber,
		"productName":       o.ProductNameSnapshot,
		"quantity":          o.Quantity,
		"total":             o.Total.StringFixed(2),
		"shippingAddress":   o.ShippingAddress,
		"buyerName":         o.Buyer.Name,
		"buyerPhone":        o.Buyer.Phone,
		"estimatedDelivery": o.EstimatedDelivery.Format("2006-01-02"),
	}
}
