package listcatalogfilters

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

const TaskType = "list-catalog-filters"

type DistinctSource interface {
	Distinct(ctx context.Context, field string) ([]string, error)
}

// FacetSource counts records per focus area. Optional.
type FacetSource interface {
	FocusAreaCounts(ctx context.Context) (map[string]int, error)
}

type Taxonomy interface {
	FocusAreas() []models.FocusArea
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Store        DistinctSource
	Facets       FacetSource
	Taxonomy     Taxonomy
	Logger       logger.Logger
}

type Handler struct {
	config   *Config
	store    DistinctSource
	facets   FacetSource
	taxonomy Taxonomy
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Store == nil || opts.Taxonomy == nil {
		return nil, fmt.Errorf("%s: store and taxonomy are required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:   cfg,
		store:    opts.Store,
		facets:   opts.Facets,
		taxonomy: opts.Taxonomy,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
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

	input := &Input{IncludeCounts: true}
	if include, ok := variables["includeCounts"].(bool); ok {
		input.IncludeCounts = include
	}
	return input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	areaIDs, err := h.store.Distinct(ctx, "focusAreas")
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("distinct focus areas", err)
	}
	categories, err := h.store.Distinct(ctx, "category")
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("distinct categories", err)
	}
	startups, err := h.store.Distinct(ctx, "startup")
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("distinct startups", err)
	}

	var counts map[string]int
	if input.IncludeCounts && h.facets != nil {
		counts, err = h.facets.FocusAreaCounts(ctx)
		if err != nil {
			h.logger.Warn("Focus area counts unavailable", map[string]interface{}{"error": err})
			counts = nil
		}
	}

	present := make(map[string]bool, len(areaIDs))
	for _, id := range areaIDs {
		present[id] = true
	}

	filters := []FocusAreaFilter{}
	for _, area := range h.taxonomy.FocusAreas() {
		if !present[area.ID] {
			continue
		}
		f := FocusAreaFilter{FocusArea: area}
		if counts != nil {
			n := counts[area.ID]
			f.Count = &n
		}
		filters = append(filters, f)
	}

	return &Output{
		FocusAreas:      filters,
		Categories:      categories,
		Startups:        startups,
		CountsAvailable: counts != nil,
	}, nil
}
