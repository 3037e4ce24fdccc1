// Package search keeps the catalog search index in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"agri-marketplace/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const DefaultIndex = "catalog"

// Mapping is the index definition applied at startup.
const Mapping = `{
  "mappings": {
    "properties": {
      "name":             {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "description":      {"type": "text"},
      "category":         {"type": "keyword"},
      "focusAreas":       {"type": "keyword"},
      "primaryFocusArea": {"type": "keyword"},
      "startup":          {"type": "keyword"},
      "quantity":         {"type": "integer"},
      "price":            {"type": "scaled_float", "scaling_factor": 100},
      "createdAt":        {"type": "date"}
    }
  }
}`

type document struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	FocusAreas       []string  `json:"focusAreas"`
	PrimaryFocusArea string    `json:"primaryFocusArea"`
	Startup          string    `json:"startup"`
	Quantity         int       `json:"quantity"`
	Price            float64   `json:"price"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toDocument(r models.CatalogRecord) document {
	price, _ := r.Price.Float64()
	return document{
		Name:             r.Name,
		Description:      r.Description,
		Category:         r.RawCategory,
		FocusAreas:       r.FocusAreaIDs(),
		PrimaryFocusArea: r.PrimaryFocusArea.ID,
		Startup:          r.StartupName,
		Quantity:         r.Quantity,
		Price:            price,
		CreatedAt:        r.CreatedAt,
	}
}

type CatalogIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewCatalogIndex(client *elasticsearch.Client, index string) *CatalogIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &CatalogIndex{client: client, index: index}
}

func (c *CatalogIndex) Name() string { return c.index }

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// IndexRecords writes records in one bulk request keyed by record id.
func (c *CatalogIndex) IndexRecords(ctx context.Context, records []models.CatalogRecord) error {
	if len(records) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, r := range records {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": c.index, "_id": r.ID}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(toDocument(r)); err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
	}

	res, err := c.client.Bulk(&body,
		c.client.Bulk.WithContext(ctx),
		c.client.Bulk.WithIndex(c.index),
	)
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request error: %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if !parsed.Errors {
		return nil
	}

	var failed []string
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Status >= 300 {
				failed = append(failed, fmt.Sprintf("%s: %s", result.ID, result.Error.Reason))
			}
		}
	}
	return fmt.Errorf("%d of %d documents rejected: %s", len(failed), len(records), strings.Join(failed, "; "))
}

// FocusAreaCounts returns the number of indexed records per focus area id.
func (c *CatalogIndex) FocusAreaCounts(ctx context.Context) (map[string]int, error) {
	query := map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"focus_areas": map[string]interface{}{
				"terms": map[string]interface{}{"field": "focusAreas", "size": 100},
			},
		},
	}
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(c.index),
		c.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("facet search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("facet search error: %s", res.Status())
	}

	var parsed struct {
		Aggregations struct {
			FocusAreas struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int    `json:"doc_count"`
				} `json:"buckets"`
			} `json:"focus_areas"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode facet response: %w", err)
	}

	counts := make(map[string]int, len(parsed.Aggregations.FocusAreas.Buckets))
	for _, b := range parsed.Aggregations.FocusAreas.Buckets {
		counts[b.Key] = b.DocCount
	}
	return counts, nil
}
