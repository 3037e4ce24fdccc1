package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"agri-marketplace/internal/common/clock"
	"agri-marketplace/internal/common/database"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/taxonomy"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const catalogColumns = `id, name, description, category, focus_areas, primary_focus_area, startup_name,
	quantity, price, contact, images, reviews, created_at, updated_at`

const catalogColumnCount = 14

// insertChunk keeps each INSERT under the 65535 bind parameter limit.
const insertChunk = 1000

// exactFields maps lookup names to catalog columns.
var exactFields = map[string]string{
	"id":       "id",
	"name":     "name",
	"category": "category",
	"startup":  "startup_name",
}

var distinctQueries = map[string]string{
	"category":         `SELECT DISTINCT category FROM catalog_records WHERE category <> '' ORDER BY 1`,
	"startup":          `SELECT DISTINCT startup_name FROM catalog_records WHERE startup_name <> '' ORDER BY 1`,
	"focusAreas":       `SELECT DISTINCT unnest(focus_areas) FROM catalog_records ORDER BY 1`,
	"primaryFocusArea": `SELECT DISTINCT primary_focus_area FROM catalog_records ORDER BY 1`,
}

// CatalogRepository stores catalog records. Focus areas are persisted for
// querying and re-derived from the raw category on read.
type CatalogRepository struct {
	db         *sql.DB
	classifier *taxonomy.Classifier
	clock      clock.Clock
}

func NewCatalogRepository(db *sql.DB, classifier *taxonomy.Classifier, clk clock.Clock) *CatalogRepository {
	if classifier == nil {
		classifier = taxonomy.NewClassifier(nil)
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &CatalogRepository{db: db, classifier: classifier, clock: clk}
}

func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*models.CatalogRecord, error) {
	return r.FindOneByExactField(ctx, "id", id)
}

// FindOneByExactField returns the oldest record whose field equals value.
func (r *CatalogRepository) FindOneByExactField(ctx context.Context, field, value string) (*models.CatalogRecord, error) {
	column, ok := exactFields[field]
	if !ok {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}
	if column == "id" {
		if _, err := uuid.Parse(value); err != nil {
			return nil, ErrNotFound
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM catalog_records WHERE %s = $1 ORDER BY created_at ASC LIMIT 1`, catalogColumns, column)
	record, err := r.scan(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return record, nil
}

// InsertMany writes all records in one transaction.
func (r *CatalogRepository) InsertMany(ctx context.Context, records []models.CatalogRecord) error {
	if len(records) == 0 {
		return nil
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for start := 0; start < len(records); start += insertChunk {
			end := start + insertChunk
			if end > len(records) {
				end = len(records)
			}
			if err := r.insertBatch(ctx, tx, records[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CatalogRepository) insertBatch(ctx context.Context, q querier, records []models.CatalogRecord) error {
	placeholders := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*catalogColumnCount)

	for i := range records {
		values, err := catalogValues(&records[i])
		if err != nil {
			return err
		}
		base := i * catalogColumnCount
		ph := make([]string, catalogColumnCount)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")
		args = append(args, values...)
	}

	query := fmt.Sprintf(`INSERT INTO catalog_records (%s) VALUES %s`, catalogColumns, strings.Join(placeholders, ", "))
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert catalog records: %w", err)
	}
	return nil
}

// Save inserts or updates record, re-deriving its focus areas from the
// category first.
func (r *CatalogRepository) Save(ctx context.Context, record *models.CatalogRecord) error {
	now := r.clock.Now()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	r.classifier.Apply(record)

	values, err := catalogValues(record)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO catalog_records (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			focus_areas = EXCLUDED.focus_areas,
			primary_focus_area = EXCLUDED.primary_focus_area,
			startup_name = EXCLUDED.startup_name,
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			contact = EXCLUDED.contact,
			images = EXCLUDED.images,
			reviews = EXCLUDED.reviews,
			updated_at = EXCLUDED.updated_at`, catalogColumns)

	if _, err := r.db.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("save catalog record: %w", err)
	}
	return nil
}

// Distinct returns the sorted distinct values of a filterable field.
func (r *CatalogRepository) Distinct(ctx context.Context, field string) ([]string, error) {
	query, ok := distinctQueries[field]
	if !ok {
		return nil, fmt.Errorf("unsupported distinct field %q", field)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func catalogValues(record *models.CatalogRecord) ([]interface{}, error) {
	contact, err := marshalJSON(record.Contact)
	if err != nil {
		return nil, err
	}
	reviews := record.Reviews
	if reviews == nil {
		reviews = []models.Review{}
	}
	reviewsJSON, err := marshalJSON(reviews)
	if err != nil {
		return nil, err
	}
	images := record.Images
	if images == nil {
		images = []string{}
	}

	return []interface{}{
		record.ID,
		record.Name,
		record.Description,
		record.RawCategory,
		pq.Array(record.FocusAreaIDs()),
		record.PrimaryFocusArea.ID,
		record.StartupName,
		record.Quantity,
		record.Price,
		contact,
		pq.Array(images),
		reviewsJSON,
		record.CreatedAt,
		record.UpdatedAt,
	}, nil
}

func (r *CatalogRepository) scan(row rowScanner) (*models.CatalogRecord, error) {
	var (
		record      models.CatalogRecord
		focusIDs    []string
		primaryID   string
		contactJSON []byte
		reviewsJSON []byte
	)
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Description,
		&record.RawCategory,
		pq.Array(&focusIDs),
		&primaryID,
		&record.StartupName,
		&record.Quantity,
		&record.Price,
		&contactJSON,
		pq.Array(&record.Images),
		&reviewsJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(contactJSON, &record.Contact); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(reviewsJSON, &record.Reviews); err != nil {
		return nil, err
	}

	r.classifier.Apply(&record)
	return &record, nil
}
