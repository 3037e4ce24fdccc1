package main

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"agri-marketplace/internal/common/clock"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/ingest"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) FindOneByExactField(ctx context.Context, field, value string) (*models.CatalogRecord, error) {
	args := m.Called(ctx, field, value)
	if rec := args.Get(0); rec != nil {
		return rec.(*models.CatalogRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalog) Save(ctx context.Context, record *models.CatalogRecord) error {
	return m.Called(ctx, record).Error(0)
}

type MockStartups struct{ mock.Mock }

func (m *MockStartups) Upsert(ctx context.Context, s *models.Startup) error {
	return m.Called(ctx, s).Error(0)
}

type MockIndexer struct{ mock.Mock }

func (m *MockIndexer) IndexRecords(ctx context.Context, records []models.CatalogRecord) error {
	return m.Called(ctx, records).Error(0)
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		flag, path string
		want       ingest.Kind
		wantErr    bool
	}{
		{"", "catalog.xlsx", ingest.KindSpreadsheet, false},
		{"", "CATALOG.CSV", ingest.KindTextTable, false},
		{"", "catalog.tsv", ingest.KindTextTable, false},
		{"spreadsheet", "upload.bin", ingest.KindSpreadsheet, false},
		{"", "upload.bin", "", true},
	}
	for _, tt := range tests {
		got, err := resolveKind(tt.flag, tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseDelimiter(t *testing.T) {
	r, err := parseDelimiter(";")
	require.NoError(t, err)
	assert.Equal(t, ';', r)

	r, err = parseDelimiter(`\t`)
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	_, err = parseDelimiter(";;")
	assert.Error(t, err)
}

func TestUpserter_Upsert(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	catalog := new(MockCatalog)
	startups := new(MockStartups)
	indexer := new(MockIndexer)

	catalog.On("FindOneByExactField", mock.Anything, "name", "Neem Oil").
		Return(&models.CatalogRecord{ID: "existing-id", CreatedAt: created}, nil)
	catalog.On("FindOneByExactField", mock.Anything, "name", "Drip Kit").
		Return(nil, storage.ErrNotFound)
	catalog.On("Save", mock.Anything, mock.Anything).Return(nil)
	startups.On("Upsert", mock.Anything, mock.MatchedBy(func(s *models.Startup) bool {
		return s.Name == "GreenRoots"
	})).Return(nil).Once()
	indexer.On("IndexRecords", mock.Anything, mock.Anything).Return(stderrors.New("cluster red"))

	u := &upserter{
		catalog:  catalog,
		startups: startups,
		indexer:  indexer,
		clock:    clock.NewManual(created),
		logger:   logger.NewTestLogger(t),
	}
	records := []models.CatalogRecord{
		{ID: "new-1", Name: "Neem Oil", StartupName: "GreenRoots"},
		{ID: "new-2", Name: "Drip Kit", StartupName: "GreenRoots"},
	}

	stats, err := u.Upsert(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, upsertStats{Inserted: 1, Updated: 1, Startups: 1}, stats)
	assert.Equal(t, "existing-id", records[0].ID)
	assert.Equal(t, created, records[0].CreatedAt)
	assert.Equal(t, "new-2", records[1].ID)
	startups.AssertExpectations(t)
	indexer.AssertExpectations(t)
}

func TestUpserter_LookupFailure(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FindOneByExactField", mock.Anything, "name", "Neem Oil").
		Return(nil, stderrors.New("connection reset"))

	u := &upserter{catalog: catalog, startups: new(MockStartups), clock: clock.NewSystem(), logger: logger.NewNoOpLogger()}
	_, err := u.Upsert(context.Background(), []models.CatalogRecord{{Name: "Neem Oil"}})

	assert.ErrorContains(t, err, "connection reset")
	catalog.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSummarize(t *testing.T) {
	out := summarize([]models.CatalogRecord{{
		Name:             "Drone survey",
		RawCategory:      "Drones",
		FocusAreas:       []models.FocusArea{{ID: "precision-agriculture"}, {ID: "farm-machinery"}},
		PrimaryFocusArea: models.FocusArea{ID: "precision-agriculture"},
		Price:            decimal.RequireFromString("1200.5"),
		Images:           []string{"a.png", "b.png"},
	}})

	require.Len(t, out, 1)
	assert.Equal(t, "1200.50", out[0].Price)
	assert.Equal(t, []string{"precision-agriculture", "farm-machinery"}, out[0].FocusAreas)
	assert.Equal(t, 2, out[0].Images)
}
