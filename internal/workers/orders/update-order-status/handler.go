package updateorderstatus

import (
	"context"
	"fmt"

	"agri-marketplace/internal/common/camunda"
	"agri-marketplace/internal/common/config"
	"agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/common/validation"
	"agri-marketplace/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "update-order-status"

type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderNumber, status string) (*models.Order, error)
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Updater      StatusUpdater
	Logger       logger.Logger
}

type Handler struct {
	config  *Config
	updater StatusUpdater
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Updater == nil {
		return nil, fmt.Errorf("%s: status updater is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:  cfg,
		updater: opts.Updater,
		errors:  errors.NewErrorHandler(log),
		logger:  log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

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

	return &Input{
		OrderNumber: variables["orderNumber"].(string),
		Status:      variables["status"].(string),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	order, err := h.updater.UpdateOrderStatus(ctx, input.OrderNumber, input.Status)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Order status updated", map[string]interface{}{
		"orderNumber": order.OrderNumber,
		"status":      string(order.Status),
	})

	return &Output{
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		UpdatedAt:   order.UpdatedAt,
	}, nil
}
