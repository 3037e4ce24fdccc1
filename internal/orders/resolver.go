package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agri-marketplace/internal/models"
	"agri-marketplace/internal/storage"
)

var ErrUnresolved = errors.New("startup unresolved")

type CatalogFinder interface {
	FindByID(ctx context.Context, id string) (*models.CatalogRecord, error)
	FindOneByExactField(ctx context.Context, field, value string) (*models.CatalogRecord, error)
}

type StartupFinder interface {
	FindByName(ctx context.Context, name string) (*models.Startup, error)
}

// StoreResolver resolves through the catalog by id, or by exact product name
// when no id is given, then by exact startup name.
type StoreResolver struct {
	catalog  CatalogFinder
	startups StartupFinder
}

func NewStoreResolver(catalog CatalogFinder, startups StartupFinder) *StoreResolver {
	return &StoreResolver{catalog: catalog, startups: startups}
}

func (r *StoreResolver) Resolve(ctx context.Context, catalogRecordID, productName string) (*Resolution, error) {
	var (
		record *models.CatalogRecord
		err    error
	)
	if catalogRecordID != "" {
		record, err = r.catalog.FindByID(ctx, catalogRecordID)
	} else {
		record, err = r.catalog.FindOneByExactField(ctx, "name", productName)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: no catalog record for %q", ErrUnresolved, firstNonEmpty(catalogRecordID, productName))
	}
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	if strings.TrimSpace(record.StartupName) == "" {
		return nil, fmt.Errorf("%w: catalog record %s has no startup", ErrUnresolved, record.ID)
	}

	startup, err := r.startups.FindByName(ctx, record.StartupName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: no startup named %q", ErrUnresolved, record.StartupName)
	}
	if err != nil {
		return nil, fmt.Errorf("startup lookup: %w", err)
	}

	return &Resolution{Record: record, Startup: startup}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
