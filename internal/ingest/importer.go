package ingest

import (
	"context"

	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/models"
)

// RecordWriter persists a batch of catalog records in one operation.
type RecordWriter interface {
	InsertMany(ctx context.Context, records []models.CatalogRecord) error
}

// Indexer makes records searchable. Failures never fail an import.
type Indexer interface {
	IndexRecords(ctx context.Context, records []models.CatalogRecord) error
}

// Result summarises a completed import.
type Result struct {
	Records []models.CatalogRecord
	Indexed bool
}

// Importer runs parse, bulk insert and search indexing for one upload.
type Importer struct {
	parser  *Parser
	writer  RecordWriter
	indexer Indexer
	logger  logger.Logger
}

// NewImporter wires an importer. indexer may be nil.
func NewImporter(parser *Parser, writer RecordWriter, indexer Indexer, log logger.Logger) *Importer {
	return &Importer{parser: parser, writer: writer, indexer: indexer, logger: log}
}

func (i *Importer) Import(ctx context.Context, data []byte, kind Kind) (*Result, error) {
	records, err := i.parser.Parse(data, kind)
	if err != nil {
		return nil, err
	}

	if err := i.writer.InsertMany(ctx, records); err != nil {
		return nil, apperrors.NewPersistenceError("catalog records", err)
	}

	result := &Result{Records: records}
	if i.indexer == nil {
		return result, nil
	}

	if err := i.indexer.IndexRecords(ctx, records); err != nil {
		i.logger.Warn("catalog indexing failed, records stored without search entries", map[string]interface{}{
			"error":   err.Error(),
			"records": len(records),
		})
		return result, nil
	}
	result.Indexed = true
	return result, nil
}
