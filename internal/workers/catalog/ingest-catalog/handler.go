package ingestcatalog

import (
	"context"
	"encoding/base64"
	"fmt"

	"agri-marketplace/internal/common/camunda"
	"agri-marketplace/internal/common/config"
	"agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/common/metrics"
	"agri-marketplace/internal/common/validation"
	"agri-marketplace/internal/ingest"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "ingest-catalog"

// Importer parses, stores and indexes one uploaded file.
type Importer interface {
	Import(ctx context.Context, data []byte, kind ingest.Kind) (*ingest.Result, error)
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Importer     Importer
	Logger       logger.Logger
}

type Handler struct {
	config   *Config
	importer Importer
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Importer == nil {
		return nil, fmt.Errorf("%s: importer is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:   cfg,
		importer: opts.Importer,
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

	input := &Input{
		FileContent: variables["fileContent"].(string),
		Kind:        variables["kind"].(string),
	}
	if name, ok := variables["fileName"].(string); ok {
		input.FileName = name
	}
	return input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	data, err := base64.StdEncoding.DecodeString(input.FileContent)
	if err != nil {
		metrics.IngestBatches.WithLabelValues(input.Kind, "rejected").Inc()
		return nil, errors.NewValidationError("fileContent is not valid base64")
	}

	h.logger.Info("Importing catalog file", map[string]interface{}{
		"kind":     input.Kind,
		"fileName": input.FileName,
		"bytes":    len(data),
	})

	result, err := h.importer.Import(ctx, data, ingest.Kind(input.Kind))
	if err != nil {
		outcome := "rejected"
		if errors.Normalize(err).Retryable {
			outcome = "failed"
		}
		metrics.IngestBatches.WithLabelValues(input.Kind, outcome).Inc()
		return nil, err
	}

	metrics.IngestBatches.WithLabelValues(input.Kind, "imported").Inc()
	metrics.IngestedRecords.Add(float64(len(result.Records)))

	ids := make([]string, 0, len(result.Records))
	for _, r := range result.Records {
		ids = append(ids, r.ID)
	}

	h.logger.Info("Catalog file imported", map[string]interface{}{
		"records": len(ids),
		"indexed": result.Indexed,
	})

	return &Output{
		RecordsImported: len(ids),
		RecordIDs:       ids,
		Indexed:         result.Indexed,
	}, nil
}
