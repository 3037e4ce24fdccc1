package main

import (
	"context"
	"errors"
	"fmt"

	"agri-marketplace/internal/common/clock"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/ingest"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/storage"
)

type catalogStore interface {
	FindOneByExactField(ctx context.Context, field, value string) (*models.CatalogRecord, error)
	Save(ctx context.Context, record *models.CatalogRecord) error
}

type startupStore interface {
	Upsert(ctx context.Context, s *models.Startup) error
}

type upsertStats struct {
	Inserted int
	Updated  int
	Startups int
}

// upserter saves parsed records one by one, reusing the id of an existing
// record with the same name, and registers each startup it sees.
type upserter struct {
	catalog  catalogStore
	startups startupStore
	indexer  ingest.Indexer
	clock    clock.Clock
	logger   logger.Logger
}

func (u *upserter) Upsert(ctx context.Context, records []models.CatalogRecord) (upsertStats, error) {
	var stats upsertStats
	seen := make(map[string]bool)

	for i := range records {
		rec := &records[i]

		existing, err := u.catalog.FindOneByExactField(ctx, "name", rec.Name)
		switch {
		case err == nil:
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
			stats.Updated++
		case errors.Is(err, storage.ErrNotFound):
			stats.Inserted++
		default:
			return stats, fmt.Errorf("look up %q: %w", rec.Name, err)
		}

		if err := u.catalog.Save(ctx, rec); err != nil {
			return stats, fmt.Errorf("save %q: %w", rec.Name, err)
		}

		if rec.StartupName == "" || seen[rec.StartupName] {
			continue
		}
		seen[rec.StartupName] = true
		startup := &models.Startup{Name: rec.StartupName, Contact: rec.Contact, CreatedAt: u.clock.Now()}
		if err := u.startups.Upsert(ctx, startup); err != nil {
			return stats, fmt.Errorf("register startup %q: %w", rec.StartupName, err)
		}
		stats.Startups++
	}

	if u.indexer != nil {
		if err := u.indexer.IndexRecords(ctx, records); err != nil {
			u.logger.Warn("Search indexing failed", map[string]interface{}{"error": err, "records": len(records)})
		}
	}
	return stats, nil
}

type recordSummary struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	FocusAreas   []string `json:"focusAreas"`
	PrimaryFocus string   `json:"primaryFocusArea"`
	Startup      string   `json:"startup,omitempty"`
	Price        string   `json:"price"`
	Images       int      `json:"images"`
}

func summarize(records []models.CatalogRecord) []recordSummary {
	out := make([]recordSummary, 0, len(records))
	for _, r := range records {
		out = append(out, recordSummary{
			Name:         r.Name,
			Category:     r.RawCategory,
			FocusAreas:   r.FocusAreaIDs(),
			PrimaryFocus: r.PrimaryFocusArea.ID,
			Startup:      r.StartupName,
			Price:        r.Price.StringFixed(2),
			Images:       len(r.Images),
		})
	}
	return out
}
