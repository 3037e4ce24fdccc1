// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-marketplace/internal/common/clock"
	"agri-marketplace/internal/common/config"
	"agri-marketplace/internal/common/database"
	"agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/ingest"
	"agri-marketplace/internal/ledger"
	"agri-marketplace/internal/models"
	"agri-marketplace/internal/orders"
	"agri-marketplace/internal/search"
	"agri-marketplace/internal/storage/postgres"
	"agri-marketplace/internal/taxonomy"
	"agri-marketplace/internal/verification"
)

// outbox records every message instead of sending it.
type outbox struct {
	mu   sync.Mutex
	sent []string
}

func (o *outbox) Send(ctx context.Context, to string, parts ...string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, to+": "+parts[len(parts)-1])
	return nil
}

type mailbox struct{ *outbox }

func (m mailbox) Send(ctx context.Context, to, subject, body string) error {
	return m.outbox.Send(ctx, to, subject, body)
}

type smsbox struct{ *outbox }

func (s smsbox) Send(ctx context.Context, to, body string) error {
	return s.outbox.Send(ctx, to, body)
}

func loadConfig(t *testing.T) *config.Config {
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 with PostgreSQL, Elasticsearch and Redis on localhost to run")
	}
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"
	cfg.Database.Elasticsearch.Addresses = nil
	return cfg
}

func TestCatalogToOrderFlow(t *testing.T) {
	cfg := loadConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	log := logger.NewTestLogger(t)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	require.NoError(t, pg.EnsureSchema(ctx))

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")
	index := fmt.Sprintf("catalog-e2e-%d", time.Now().UnixNano())
	require.NoError(t, es.EnsureIndex(ctx, index, search.Mapping))

	clk := clock.NewSystem()
	classifier := taxonomy.NewClassifier(taxonomy.Default)
	store := postgres.NewStore(pg.DB, clk)
	catalogIndex := search.NewCatalogIndex(es.Client, index)

	// 1. Bulk ingestion
	suffix := time.Now().UnixNano()
	product := fmt.Sprintf("E2E Drip Kit %d", suffix)
	startup := fmt.Sprintf("E2E Startup %d", suffix)
	upload := "name,description,category,startup,quantity,price,image,contact.name,contact.phone,contact.email\n" +
		fmt.Sprintf("%s,16mm lateral kit,Drip Irrigation,%s,40,1499.00,https://img/drip.png,Asha,+919800000002,asha@example.com\n", product, startup)

	importer := ingest.NewImporter(ingest.NewParser(classifier), store.Catalog, catalogIndex, log)
	result, err := importer.Import(ctx, []byte(upload), ingest.KindTextTable)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.True(t, result.Indexed)
	assert.Equal(t, []string{"irrigation", "precision-agriculture"}, result.Records[0].FocusAreaIDs())

	require.NoError(t, store.Startups.Upsert(ctx, &models.Startup{
		Name:      startup,
		Contact:   models.Contact{Name: "Asha", Phone: "+919800000002", Email: "asha@example.com"},
		CreatedAt: clk.Now(),
	}))

	// 2. Order fan-out
	box := &outbox{}
	events := ledger.New(store.Notifications, clk)
	pipeline := orders.NewPipeline(orders.Dependencies{
		Orders:    store.Orders,
		Resolver:  orders.NewStoreResolver(store.Catalog, store.Startups),
		Ledger:    events,
		Mailer:    mailbox{box},
		Messenger: smsbox{box},
	}, orders.Config{}, orders.WithLogger(log))

	confirmation, report, err := pipeline.PlaceOrder(ctx, orders.Request{
		ProductName:     product,
		Quantity:        2,
		Total:           decimal.RequireFromString("2998.00"),
		ShippingAddress: "12 Market Road, Nashik",
		Buyer:           models.Buyer{Name: "Vikram", Phone: "+919800000003", Email: "vikram@example.com"},
	})
	require.NoError(t, err)
	assert.Empty(t, report.Failed(), "fan-out stages: %+v", report.Outcomes)
	ledgerStage, ok := report.Outcome(orders.StageLedgerEntry)
	require.True(t, ok)
	assert.Equal(t, orders.StatusSucceeded, ledgerStage.Status)
	assert.Len(t, box.sent, 3)

	recent, err := events.ListRecent(ctx, 20)
	require.NoError(t, err)
	var entry *models.NotificationEvent
	for i := range recent {
		if !recent[i].Read && strings.Contains(recent[i].Message, confirmation.OrderNumber) {
			entry = &recent[i]
			break
		}
	}
	require.NotNil(t, entry, "ledger entry for %s", confirmation.OrderNumber)
	require.NoError(t, events.MarkRead(ctx, entry.ID))

	// 3. Status update
	updated, err := orders.NewStatusUpdater(store.Orders, clk).UpdateOrderStatus(ctx, confirmation.OrderNumber, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	// 4. Search facets
	counts, err := catalogIndex.FocusAreaCounts(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts["irrigation"], 1)
}

func TestVerificationCodesInRedis(t *testing.T) {
	cfg := loadConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")

	cache := verification.NewRedisCache(rdb.Client, fmt.Sprintf("e2e-verification-%d:", time.Now().UnixNano()))
	box := &outbox{}
	svc := verification.NewService(cache, mailbox{box}, time.Minute,
		verification.WithCodeGenerator(func() (string, error) { return "314159", nil }),
	)

	issued, err := svc.Issue(ctx, "Farmer@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "farmer@example.com", issued.Email)
	require.Len(t, box.sent, 1)

	err = svc.Verify(ctx, "farmer@example.com", "000000")
	assert.True(t, errors.HasCode(err, errors.ErrCodeCodeInvalid))

	require.NoError(t, svc.Verify(ctx, "farmer@example.com", "314159"))

	err = svc.Verify(ctx, "farmer@example.com", "314159")
	assert.True(t, errors.HasCode(err, errors.ErrCodeCodeInvalid), "codes are single use")
}
