// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"agri-marketplace/internal/common/aws"
	"agri-marketplace/internal/common/camunda"
	"agri-marketplace/internal/common/clock"
	"agri-marketplace/internal/common/config"
	"agri-marketplace/internal/common/database"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/common/observability"
	"agri-marketplace/internal/ingest"
	"agri-marketplace/internal/ledger"
	"agri-marketplace/internal/orders"
	"agri-marketplace/internal/search"
	"agri-marketplace/internal/storage/postgres"
	"agri-marketplace/internal/taxonomy"
	"agri-marketplace/internal/verification"

	// Account workers (2)
	svc "agri-marketplace/internal/workers/account/send-verification-code"
	vc "agri-marketplace/internal/workers/account/verify-code"

	// Catalog workers (3)
	cc "agri-marketplace/internal/workers/catalog/classify-category"
	ic "agri-marketplace/internal/workers/catalog/ingest-catalog"
	lcf "agri-marketplace/internal/workers/catalog/list-catalog-filters"

	// Notification workers (2)
	ln "agri-marketplace/internal/workers/notifications/list-notifications"
	mnr "agri-marketplace/internal/workers/notifications/mark-notification-read"

	// Order workers (2)
	po "agri-marketplace/internal/workers/orders/place-order"
	uos "agri-marketplace/internal/workers/orders/update-order-status"
)

// services holds everything the workers are built from.
type services struct {
	classifier *taxonomy.Classifier
	store      *postgres.Store
	index      *search.CatalogIndex
	importer   *ingest.Importer
	ledger     *ledger.Ledger
	pipeline   *orders.Pipeline
	status     *orders.StatusUpdater
	codes      *verification.Service
	cache      verification.Cache
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
		obs = observability.NewNoop()
	}

	ctx := context.Background()

	zeebeClient, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	pg, es, rdb := connectStores(ctx, cfg, log, zapLog)
	defer pg.Close()
	if rdb != nil {
		defer rdb.Close()
	}

	deps, err := buildServices(ctx, cfg, pg, es, rdb, log)
	if err != nil {
		zapLog.Fatal("failed to build services", zap.Error(err))
	}

	workers, err := registerWorkers(zeebeClient, cfg, deps, obs, log)
	if err != nil {
		zapLog.Fatal("failed to register workers", zap.Error(err))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	server := newHealthServer(cfg, zeebeClient, pg)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := deps.cache.Close(); err != nil {
		zapLog.Error("Error closing verification cache", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}
	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// connectStores opens PostgreSQL and Elasticsearch, and Redis only when the
// verification cache lives there.
func connectStores(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (*database.PostgresClient, *database.ElasticsearchClient, *database.RedisClient) {
	retry := camunda.RetryConfig{MaxAttempts: 15, InitialDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

	var pg *database.PostgresClient
	err := camunda.Retry(ctx, retry, "PostgreSQL connection", log, func(ctx context.Context) error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("postgres schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	var es *database.ElasticsearchClient
	err = camunda.Retry(ctx, retry, "Elasticsearch connection", log, func(ctx context.Context) error {
		var err error
		if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
			return err
		}
		return es.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if err := es.EnsureIndex(ctx, cfg.Search.CatalogIndex, search.Mapping); err != nil {
		zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	if cfg.Verification.Backend != config.VerificationBackendRedis {
		return pg, es, nil
	}

	var rdb *database.RedisClient
	err = camunda.Retry(ctx, camunda.DefaultRetryConfig, "Redis connection", log, func(ctx context.Context) error {
		var err error
		if rdb, err = database.NewRedis(cfg.Database.Redis); err != nil {
			return err
		}
		return rdb.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")
	return pg, es, rdb
}

func buildServices(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, es *database.ElasticsearchClient, rdb *database.RedisClient, log logger.Logger) (*services, error) {
	clk := clock.NewSystem()
	classifier := taxonomy.NewClassifier(taxonomy.Default)
	store := postgres.NewStore(pg.DB, clk)
	index := search.NewCatalogIndex(es.Client, cfg.Search.CatalogIndex)

	delimiter := []rune(cfg.Ingest.TextDelimiter)[0]
	parser := ingest.NewParser(classifier,
		ingest.WithDecoder(ingest.KindTextTable, ingest.NewTextTableDecoder(delimiter)),
		ingest.WithMaxBytes(cfg.Ingest.MaxFileBytes),
		ingest.WithClock(clk),
	)
	importer := ingest.NewImporter(parser, store.Catalog, index, log.WithFields(map[string]interface{}{"component": "ingest"}))

	events := ledger.New(store.Notifications, clk)

	// Interface-typed so a disabled channel stays a nil interface.
	var mailer interface {
		orders.Mailer
		verification.Mailer
	}
	var messenger orders.TextMessenger

	region := cfg.Integrations.AWS.Region
	if cfg.Integrations.AWS.SES.Enabled {
		m, err := aws.NewSESMailer(ctx, region, cfg.Integrations.AWS.SES.FromEmail)
		if err != nil {
			return nil, fmt.Errorf("ses mailer: %w", err)
		}
		mailer = m
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		m, err := aws.NewSNSTextMessenger(ctx, region, cfg.Integrations.AWS.SNS.DefaultSMSSenderID)
		if err != nil {
			return nil, fmt.Errorf("sns messenger: %w", err)
		}
		messenger = m
	}

	pipelineDeps := orders.Dependencies{
		Orders:   store.Orders,
		Resolver: orders.NewStoreResolver(store.Catalog, store.Startups),
		Ledger:   events,
	}
	if mailer != nil {
		pipelineDeps.Mailer = mailer
	}
	if messenger != nil {
		pipelineDeps.Messenger = messenger
	}
	pipeline := orders.NewPipeline(pipelineDeps,
		orders.Config{
			NumberPrefix:   cfg.Orders.NumberPrefix,
			DeliveryDays:   cfg.Orders.DeliveryDays,
			ChannelTimeout: config.GetDuration(cfg.Orders.ChannelTimeoutMs),
		},
		orders.WithClock(clk),
		orders.WithLogger(log.WithFields(map[string]interface{}{"component": "order-fanout"})),
	)

	var cache verification.Cache
	if rdb != nil {
		cache = verification.NewRedisCache(rdb.Client, "")
	} else {
		cache = verification.NewMemoryCache(clk, config.GetDuration(cfg.Verification.SweepIntervalMs))
	}

	deps := &services{
		classifier: classifier,
		store:      store,
		index:      index,
		importer:   importer,
		ledger:     events,
		pipeline:   pipeline,
		status:     orders.NewStatusUpdater(store.Orders, clk),
		cache:      cache,
	}
	if mailer != nil {
		deps.codes = verification.NewService(cache, mailer, config.GetDuration(cfg.Verification.CodeTTLMs),
			verification.WithClock(clk),
			verification.WithLogger(log.WithFields(map[string]interface{}{"component": "verification"})),
		)
	} else {
		log.Warn("SES disabled, verification code workers will not start", nil)
	}
	return deps, nil
}

type taskHandler struct {
	taskType string
	build    func() (camunda.JobHandler, error)
}

func registerWorkers(client zbc.Client, cfg *config.Config, deps *services, obs *observability.Observability, log logger.Logger) ([]worker.JobWorker, error) {
	handlers := []taskHandler{
		{cc.TaskType, func() (camunda.JobHandler, error) {
			return cc.NewHandler(cc.HandlerOptions{AppConfig: cfg, Classifier: deps.classifier, Logger: log})
		}},
		{ic.TaskType, func() (camunda.JobHandler, error) {
			return ic.NewHandler(ic.HandlerOptions{AppConfig: cfg, Importer: deps.importer, Logger: log})
		}},
		{lcf.TaskType, func() (camunda.JobHandler, error) {
			return lcf.NewHandler(lcf.HandlerOptions{
				AppConfig: cfg,
				Store:     deps.store.Catalog,
				Facets:    deps.index,
				Taxonomy:  deps.classifier.Taxonomy(),
				Logger:    log,
			})
		}},
		{po.TaskType, func() (camunda.JobHandler, error) {
			return po.NewHandler(po.HandlerOptions{AppConfig: cfg, Placer: deps.pipeline, Logger: log})
		}},
		{uos.TaskType, func() (camunda.JobHandler, error) {
			return uos.NewHandler(uos.HandlerOptions{AppConfig: cfg, Updater: deps.status, Logger: log})
		}},
		{ln.TaskType, func() (camunda.JobHandler, error) {
			return ln.NewHandler(ln.HandlerOptions{AppConfig: cfg, Ledger: deps.ledger, Logger: log})
		}},
		{mnr.TaskType, func() (camunda.JobHandler, error) {
			return mnr.NewHandler(mnr.HandlerOptions{AppConfig: cfg, Ledger: deps.ledger, Logger: log})
		}},
	}
	if deps.codes != nil {
		handlers = append(handlers,
			taskHandler{svc.TaskType, func() (camunda.JobHandler, error) {
				return svc.NewHandler(svc.HandlerOptions{AppConfig: cfg, Issuer: deps.codes, Logger: log})
			}},
			taskHandler{vc.TaskType, func() (camunda.JobHandler, error) {
				return vc.NewHandler(vc.HandlerOptions{AppConfig: cfg, Verifier: deps.codes, Logger: log})
			}},
		)
	}

	var workers []worker.JobWorker
	for _, th := range handlers {
		if !config.IsWorkerEnabled(cfg, th.taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": th.taskType})
			continue
		}
		h, err := th.build()
		if err != nil {
			return nil, fmt.Errorf("failed to create %s handler: %w", th.taskType, err)
		}
		wcfg := config.GetWorkerConfig(cfg, th.taskType)
		workers = append(workers, camunda.Register(client, th.taskType, wcfg, h, obs, log))
	}
	return workers, nil
}

func newHealthServer(cfg *config.Config, zeebeClient zbc.Client, pg *database.PostgresClient) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
		if err := camunda.HealthCheck(ctx, zeebeClient, 3*time.Second); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeStatus(w http.ResponseWriter, code int, status, reason string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if reason != "" {
		body["reason"] = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
