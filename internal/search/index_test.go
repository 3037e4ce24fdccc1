package search

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agri-marketplace/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, handler http.HandlerFunc) *CatalogIndex {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewCatalogIndex(client, "catalog-test")
}

func sampleRecords() []models.CatalogRecord {
	return []models.CatalogRecord{
		{
			ID:               "rec-1",
			Name:             "Neem Oil Spray",
			RawCategory:      "Organic Pest Control",
			FocusAreas:       []models.FocusArea{{ID: "organic"}, {ID: "pest-control"}},
			PrimaryFocusArea: models.FocusArea{ID: "organic"},
			StartupName:      "GreenShield",
			Quantity:         40,
			Price:            decimal.RequireFromString("249.50"),
		},
		{ID: "rec-2", Name: "Drip Kit", RawCategory: "Irrigation", StartupName: "AquaRoots"},
	}
}

func TestCatalogIndex_IndexRecords(t *testing.T) {
	var lines []string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog-test/_bulk", r.URL.Path)
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		_, _ = w.Write([]byte(`{"errors":false,"items":[]}`))
	})

	require.NoError(t, idx.IndexRecords(context.Background(), sampleRecords()))
	require.Len(t, lines, 4)

	var action map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &action))
	assert.Equal(t, "rec-1", action["index"]["_id"])

	var doc document
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &doc))
	assert.Equal(t, []string{"organic", "pest-control"}, doc.FocusAreas)
	assert.Equal(t, "organic", doc.PrimaryFocusArea)
	assert.InDelta(t, 249.5, doc.Price, 0.001)
}

func TestCatalogIndex_IndexRecords_ItemErrors(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":true,"items":[
			{"index":{"_id":"rec-1","status":201}},
			{"index":{"_id":"rec-2","status":400,"error":{"type":"mapper_parsing_exception","reason":"bad price"}}}
		]}`))
	})

	err := idx.IndexRecords(context.Background(), sampleRecords())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents rejected")
	assert.Contains(t, err.Error(), "rec-2: bad price")
}

func TestCatalogIndex_IndexRecords_Empty(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	assert.NoError(t, idx.IndexRecords(context.Background(), nil))
}

func TestCatalogIndex_FocusAreaCounts(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/catalog-test/_search"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "aggs")
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":3}},"aggregations":{"focus_areas":{"buckets":[
			{"key":"organic","doc_count":2},{"key":"irrigation","doc_count":1}
		]}}}`))
	})

	counts, err := idx.FocusAreaCounts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"organic": 2, "irrigation": 1}, counts)
}

func TestCatalogIndex_FocusAreaCounts_Error(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
	})

	_, err := idx.FocusAreaCounts(context.Background())
	assert.Error(t, err)
}
