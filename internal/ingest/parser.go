package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"agri-marketplace/internal/common/clock"
	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/taxonomy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const contactPrefix = "contact."

// Prices land in a NUMERIC(14,2) column.
const priceScale = 2

var maxPrice = decimal.New(1, 12)

// Parser validates decoded rows and builds classified catalog records.
type Parser struct {
	decoders   map[Kind]FileDecoder
	classifier *taxonomy.Classifier
	clock      clock.Clock
	newID      func() string
	maxBytes   int64
}

type Option func(*Parser)

// WithDecoder registers or replaces the decoder for kind.
func WithDecoder(kind Kind, d FileDecoder) Option {
	return func(p *Parser) { p.decoders[kind] = d }
}

func WithClock(c clock.Clock) Option {
	return func(p *Parser) { p.clock = c }
}

func WithIDGenerator(fn func() string) Option {
	return func(p *Parser) { p.newID = fn }
}

// WithMaxBytes rejects uploads larger than n bytes. Zero disables the check.
func WithMaxBytes(n int64) Option {
	return func(p *Parser) { p.maxBytes = n }
}

func NewParser(classifier *taxonomy.Classifier, opts ...Option) *Parser {
	if classifier == nil {
		classifier = taxonomy.NewClassifier(nil)
	}
	p := &Parser{
		decoders: map[Kind]FileDecoder{
			KindSpreadsheet: NewSpreadsheetDecoder(),
			KindTextTable:   NewTextTableDecoder(','),
		},
		classifier: classifier,
		clock:      clock.NewSystem(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes data of the declared kind and returns records ready for a
// single bulk insert. The batch is all-or-nothing: any surviving row without
// an image rejects the whole upload.
func (p *Parser) Parse(data []byte, kind Kind) ([]models.CatalogRecord, error) {
	decoder, ok := p.decoders[kind]
	if !ok {
		return nil, apperrors.NewUnsupportedFormatError(string(kind))
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, apperrors.NewValidationError(fmt.Sprintf("file exceeds %d bytes", p.maxBytes))
	}

	rows, err := decoder.Decode(data)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("malformed %s file: %v", kind, err)).
			WithMetadata("kind", string(kind))
	}

	var accepted []Row
	for _, row := range rows {
		if row.Get("name") == "" {
			continue
		}
		accepted = append(accepted, row)
	}
	if len(accepted) == 0 {
		return nil, apperrors.NewNoValidRecordsError()
	}

	for _, row := range accepted {
		if row.Get("image") == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("row %d (%s) has no image", row.Line, row.Get("name"))).
				WithMetadata("line", row.Line)
		}
	}

	now := p.clock.Now()
	records := make([]models.CatalogRecord, 0, len(accepted))
	for _, row := range accepted {
		record, err := p.buildRecord(row)
		if err != nil {
			return nil, err
		}
		record.ID = p.newID()
		record.CreatedAt = now
		record.UpdatedAt = now
		p.classifier.Apply(&record)
		records = append(records, record)
	}
	return records, nil
}

func (p *Parser) buildRecord(row Row) (models.CatalogRecord, error) {
	contact, fields := MergeContact(row.Fields)
	get := func(key string) string { return strings.TrimSpace(fields[key]) }

	quantity := 0
	if raw := get("quantity"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil || q < 0 {
			return models.CatalogRecord{}, apperrors.NewValidationError(
				fmt.Sprintf("row %d: invalid quantity %q", row.Line, raw)).WithMetadata("line", row.Line)
		}
		quantity = q
	}

	price := decimal.Zero
	if raw := get("price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() || d.GreaterThanOrEqual(maxPrice) {
			return models.CatalogRecord{}, apperrors.NewValidationError(
				fmt.Sprintf("row %d: invalid price %q", row.Line, raw)).WithMetadata("line", row.Line)
		}
		// The column stores cents; anything finer would be rounded silently.
		if !d.Equal(d.Truncate(priceScale)) {
			return models.CatalogRecord{}, apperrors.NewValidationError(
				fmt.Sprintf("row %d: price %q has more than %d decimal places", row.Line, raw, priceScale)).WithMetadata("line", row.Line)
		}
		price = d
	}

	return models.CatalogRecord{
		Name:        get("name"),
		Description: get("description"),
		RawCategory: get("category"),
		StartupName: get("startup"),
		Quantity:    quantity,
		Price:       price,
		Contact:     contact,
		Images:      []string{get("image")},
		Reviews:     []models.Review{},
	}, nil
}

// MergeContact folds contact.name, contact.phone and contact.email into a
// Contact and returns the remaining fields without the dotted keys.
func MergeContact(fields map[string]string) (models.Contact, map[string]string) {
	var contact models.Contact
	rest := make(map[string]string, len(fields))
	for key, value := range fields {
		if !strings.HasPrefix(key, contactPrefix) {
			rest[key] = value
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimPrefix(key, contactPrefix) {
		case "name":
			contact.Name = value
		case "phone":
			contact.Phone = value
		case "email":
			contact.Email = value
		}
	}
	return contact, rest
}
