package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"agri-marketplace/internal/common/clock"
	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/taxonomy"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestParser(opts ...Option) *Parser {
	seq := 0
	base := []Option{
		WithClock(clock.NewManual(fixedNow)),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("rec-%d", seq)
		}),
	}
	return NewParser(taxonomy.NewClassifier(nil), append(base, opts...)...)
}

func TestParser_Parse_TextTable(t *testing.T) {
	data := "name,description,category,startup,quantity,price,image,contact.name,contact.phone,contact.email\n" +
		"Neem Oil,Cold pressed,Biopesticides,GreenRoots,12,249.50,https://img/neem.png,Ravi,+919800000001,ravi@greenroots.in\n" +
		",no name,Seeds,GreenRoots,1,1,https://img/x.png,,,\n" +
		"Drone Spray Service,,Drones,SkyAgri,,,https://img/drone.png,,,\n"

	records, err := newTestParser().Parse([]byte(data), KindTextTable)
	require.NoError(t, err)
	require.Len(t, records, 2)

	neem := records[0]
	assert.Equal(t, "rec-1", neem.ID)
	assert.Equal(t, "Neem Oil", neem.Name)
	assert.Equal(t, "GreenRoots", neem.StartupName)
	assert.Equal(t, 12, neem.Quantity)
	assert.True(t, decimal.RequireFromString("249.5").Equal(neem.Price))
	assert.Equal(t, []string{"https://img/neem.png"}, neem.Images)
	assert.Equal(t, models.Contact{Name: "Ravi", Phone: "+919800000001", Email: "ravi@greenroots.in"}, neem.Contact)
	assert.Equal(t, []string{"agri-biotech", "crop-nutrition"}, neem.FocusAreaIDs())
	assert.Equal(t, "agri-biotech", neem.PrimaryFocusArea.ID)
	assert.Equal(t, fixedNow, neem.CreatedAt)

	drone := records[1]
	assert.Equal(t, 0, drone.Quantity)
	assert.True(t, drone.Price.IsZero())
	assert.True(t, drone.Contact.IsZero())
	assert.Equal(t, "🚁", drone.PrimaryFocusArea.Icon)
}

func TestParser_Parse_MissingImageRejectsBatch(t *testing.T) {
	data := "name,category,image\n" +
		"Neem Oil,Biopesticides,https://img/neem.png\n" +
		"Compost,Compost,\n" +
		"Seeds Kit,Seeds,https://img/seeds.png\n"

	records, err := newTestParser().Parse([]byte(data), KindTextTable)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
	assert.Contains(t, err.Error(), "Compost")
}

func TestParser_Parse_Failures(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind Kind
		code apperrors.ErrorCode
	}{
		{"unsupported kind", "name,image\nx,y\n", Kind("pdf"), apperrors.ErrCodeUnsupportedFormat},
		{"no named rows", "name,image\n,https://img/a.png\n", KindTextTable, apperrors.ErrCodeNoValidRecords},
		{"only mismatched rows", "name,image\na,b,c\n", KindTextTable, apperrors.ErrCodeNoValidRecords},
		{"empty file", "", KindTextTable, apperrors.ErrCodeValidationFailed},
		{"bad quantity", "name,image,quantity\nx,https://img/a.png,ten\n", KindTextTable, apperrors.ErrCodeValidationFailed},
		{"negative price", "name,image,price\nx,https://img/a.png,-4\n", KindTextTable, apperrors.ErrCodeValidationFailed},
		{"sub-cent price", "name,image,price\nx,https://img/a.png,249.505\n", KindTextTable, apperrors.ErrCodeValidationFailed},
		{"price over column range", "name,image,price\nx,https://img/a.png,1000000000000\n", KindTextTable, apperrors.ErrCodeValidationFailed},
		{"corrupt workbook", "PK-not-really", KindSpreadsheet, apperrors.ErrCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := newTestParser().Parse([]byte(tt.data), tt.kind)
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, apperrors.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestParser_Parse_PriceScale(t *testing.T) {
	data := "name,image,price\n" +
		"Seeds,https://img/a.png,249.50\n" +
		"Tray,https://img/b.png,12.500\n" +
		"Kit,https://img/c.png,999999999999.99\n"

	records, err := newTestParser().Parse([]byte(data), KindTextTable)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, decimal.RequireFromString("249.5").Equal(records[0].Price))
	assert.True(t, decimal.RequireFromString("12.5").Equal(records[1].Price), "trailing zeros are not extra precision")
	assert.True(t, decimal.RequireFromString("999999999999.99").Equal(records[2].Price))
}

func TestParser_Parse_MaxBytes(t *testing.T) {
	_, err := newTestParser(WithMaxBytes(8)).Parse([]byte("name,image\nx,y\n"), KindTextTable)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}

func TestParser_Parse_Spreadsheet(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Name", "Category", "Image", "Contact.Phone"},
		{"Milk Chiller", "Dairy", "https://img/chiller.png", "+919811111111"},
	})

	records, err := newTestParser().Parse(data, KindSpreadsheet)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "+919811111111", records[0].Contact.Phone)
	assert.Equal(t, "dairy-livestock", records[0].PrimaryFocusArea.ID)
	assert.Equal(t, "🥛", records[0].PrimaryFocusArea.Icon)
}

func TestMergeContact(t *testing.T) {
	contact, rest := MergeContact(map[string]string{
		"name":          "Seed Drill",
		"contact.name":  " Meena ",
		"contact.email": "meena@agri.in",
		"contact.fax":   "ignored",
	})

	assert.Equal(t, models.Contact{Name: "Meena", Email: "meena@agri.in"}, contact)
	assert.Equal(t, map[string]string{"name": "Seed Drill"}, rest)
}

type MockRecordWriter struct {
	mock.Mock
}

func (m *MockRecordWriter) InsertMany(ctx context.Context, records []models.CatalogRecord) error {
	return m.Called(ctx, records).Error(0)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) IndexRecords(ctx context.Context, records []models.CatalogRecord) error {
	return m.Called(ctx, records).Error(0)
}

const validUpload = "name,category,image\nNeem Oil,Biopesticides,https://img/neem.png\n"

func TestImporter_Import(t *testing.T) {
	log := logger.NewTestLogger(t)

	t.Run("stores and indexes", func(t *testing.T) {
		writer := new(MockRecordWriter)
		indexer := new(MockIndexer)
		writer.On("InsertMany", mock.Anything, mock.MatchedBy(func(r []models.CatalogRecord) bool { return len(r) == 1 })).Return(nil)
		indexer.On("IndexRecords", mock.Anything, mock.Anything).Return(nil)

		res, err := NewImporter(newTestParser(), writer, indexer, log).Import(context.Background(), []byte(validUpload), KindTextTable)
		require.NoError(t, err)
		assert.Len(t, res.Records, 1)
		assert.True(t, res.Indexed)
		writer.AssertExpectations(t)
		indexer.AssertExpectations(t)
	})

	t.Run("indexing failure is tolerated", func(t *testing.T) {
		writer := new(MockRecordWriter)
		indexer := new(MockIndexer)
		writer.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
		indexer.On("IndexRecords", mock.Anything, mock.Anything).Return(errors.New("es down"))

		res, err := NewImporter(newTestParser(), writer, indexer, log).Import(context.Background(), []byte(validUpload), KindTextTable)
		require.NoError(t, err)
		assert.False(t, res.Indexed)
	})

	t.Run("store failure is a persistence error", func(t *testing.T) {
		writer := new(MockRecordWriter)
		writer.On("InsertMany", mock.Anything, mock.Anything).Return(errors.New("conn reset"))

		_, err := NewImporter(newTestParser(), writer, nil, log).Import(context.Background(), []byte(validUpload), KindTextTable)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePersistenceFailed))
	})

	t.Run("invalid batch never reaches the store", func(t *testing.T) {
		writer := new(MockRecordWriter)
		bad := "name,image\nA,https://img/a.png\nB,\nC,https://img/c.png\n"

		_, err := NewImporter(newTestParser(), writer, nil, log).Import(context.Background(), []byte(bad), KindTextTable)
		require.Error(t, err)
		writer.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
	})
}
