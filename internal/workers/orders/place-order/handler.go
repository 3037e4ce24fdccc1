package placeorder

import (
	"context"
	"fmt"

	"agri-marketplace/internal/common/camunda"
	"agri-marketplace/internal/common/config"
	"agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/common/validation"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/orders"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/shopspring/decimal"
)

const TaskType = "place-order"

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req orders.Request) (*orders.Confirmation, *orders.Report, error)
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Placer       OrderPlacer
	Logger       logger.Logger
}

type Handler struct {
	config *Config
	placer OrderPlacer
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Placer == nil {
		return nil, fmt.Errorf("%s: order placer is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config: cfg,
		placer: opts.Placer,
		errors: errors.NewErrorHandler(log),
		logger: log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing order", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{"jobKey": job.GetKey(), "error": err})
		return err
	}
	return nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewValidationError(fmt.Sprintf("input validation failed: %v", result.GetErrorMessages()))
	}

	total, err := parseTotal(variables["total"])
	if err != nil {
		return nil, err
	}

	input := &Input{
		ProductName: variables["productName"].(string),
		Quantity:    int(variables["quantity"].(float64)),
		Total:       total,
	}
	if id, ok := variables["catalogRecordId"].(string); ok {
		input.CatalogRecordID = id
	}
	if addr, ok := variables["shippingAddress"].(string); ok {
		input.ShippingAddress = addr
	}

	buyer := variables["buyer"].(map[string]interface{})
	input.Buyer = models.Buyer{Name: buyer["name"].(string)}
	if phone, ok := buyer["phone"].(string); ok {
		input.Buyer.Phone = phone
	}
	if email, ok := buyer["email"].(string); ok {
		input.Buyer.Email = email
	}
	if input.Buyer.Email != "" && !validation.ValidateEmail(input.Buyer.Email) {
		return nil, errors.NewValidationError("buyer email is invalid")
	}

	return input, nil
}

// parseTotal accepts JSON numbers and decimal strings.
func parseTotal(v interface{}) (decimal.Decimal, error) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero, errors.NewValidationError(fmt.Sprintf("total %q is not a number", t))
		}
		return d, nil
	default:
		return decimal.Zero, errors.NewValidationError("total must be a number")
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	confirmation, report, err := h.placer.PlaceOrder(ctx, orders.Request{
		CatalogRecordID: input.CatalogRecordID,
		ProductName:     input.ProductName,
		Quantity:        input.Quantity,
		Total:           input.Total,
		ShippingAddress: input.ShippingAddress,
		Buyer:           input.Buyer,
	})
	if err != nil {
		return nil, err
	}

	failed := []string{}
	for _, stage := range report.Failed() {
		failed = append(failed, string(stage))
	}
	if len(failed) > 0 {
		h.logger.Warn("Order placed with notification failures", map[string]interface{}{
			"orderNumber":  confirmation.OrderNumber,
			"failedStages": failed,
		})
	}

	return &Output{
		OrderNumber:       confirmation.OrderNumber,
		EstimatedDelivery: confirmation.EstimatedDelivery,
		Status:            string(confirmation.Status),
		Notifications:     report.Outcomes,
		FailedStages:      failed,
	}, nil
}
