package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	checklistcatalog "slfcert/internal/checklist/catalog"
	checklisthandler "slfcert/internal/checklist/handler"
	checklistresolver "slfcert/internal/checklist/resolver"
	compliancecache "slfcert/internal/compliance/cache"
	compliancehandler "slfcert/internal/compliance/handler"
	compliancemetrics "slfcert/internal/compliance/metrics"
	complianceservice "slfcert/internal/compliance/service"
	compliancestore "slfcert/internal/compliance/store"
	httpapi "slfcert/internal/http"
	jwttoken "slfcert/internal/jwt_token"
	notificationhandler "slfcert/internal/notification/handler"
	notificationmetrics "slfcert/internal/notification/metrics"
	notificationpublisher "slfcert/internal/notification/publisher"
	notificationservice "slfcert/internal/notification/service"
	notificationstore "slfcert/internal/notification/store"
	"slfcert/internal/platform/config"
	"slfcert/internal/platform/httpserver"
	"slfcert/internal/platform/kafka"
	"slfcert/internal/platform/logger"
	"slfcert/internal/platform/metrics"
	"slfcert/internal/platform/postgres"
	"slfcert/internal/platform/redis"
	workflowhandler "slfcert/internal/workflow/handler"
	workflowmetrics "slfcert/internal/workflow/metrics"
	workflowservice "slfcert/internal/workflow/service"
	workflowstore "slfcert/internal/workflow/store"
	"slfcert/pkg/platform/audit"
	historypublisher "slfcert/pkg/platform/audit/publishers/compliance"
	auditmemory "slfcert/pkg/platform/audit/store/memory"
	auditpostgres "slfcert/pkg/platform/audit/store/postgres"
	"slfcert/pkg/platform/circuit"
)

const (
	shutdownTimeout   = 10 * time.Second
	topicPartitions   = 3
	topicReplication  = 1
	startupKafkaProbe = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(cfg.ChecklistPath)
	if err != nil {
		return err
	}
	resolver := checklistresolver.New(catalog)
	log.Info("checklist catalog loaded",
		"templates", len(catalog.Templates()),
		"last_updated", catalog.Metadata().LastUpdated,
	)

	healthChecks := map[string]httpapi.HealthCheck{}

	s, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if s.db != nil {
		defer s.db.Close()
		healthChecks["postgres"] = s.db.PingContext
	}

	cacheBackend, closeCache, err := buildInspectionCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()
	if cacheBackend.health != nil {
		healthChecks["redis"] = cacheBackend.health
	}

	notificationOpts := []notificationservice.Option{
		notificationservice.WithLogger(log),
		notificationservice.WithMetrics(notificationmetrics.New()),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		probeCtx, cancel := context.WithTimeout(ctx, startupKafkaProbe)
		if err := producer.EnsureTopic(probeCtx, topicPartitions, topicReplication); err != nil {
			log.Warn("notification topic not ensured, publishing may fail", "topic", cfg.Kafka.NotificationTopic, "error", err)
		}
		cancel()
		notificationOpts = append(notificationOpts, notificationservice.WithPublisher(notificationpublisher.New(producer)))
		healthChecks["kafka"] = producer.Health
	}

	notifications, err := notificationservice.New(s.notifications, s.roster, notificationOpts...)
	if err != nil {
		return err
	}

	history := historypublisher.New(s.history,
		historypublisher.WithLogger(log),
		historypublisher.WithMetrics(historypublisher.NewMetrics()),
	)
	workflow, compliance, err := buildServices(s, cacheBackend.backend,
		[]workflowservice.Option{
			workflowservice.WithLogger(log),
			workflowservice.WithMetrics(workflowmetrics.New()),
			workflowservice.WithHistory(history),
			workflowservice.WithNotifier(notifications),
		},
		[]complianceservice.Option{
			complianceservice.WithLogger(log),
			complianceservice.WithMetrics(compliancemetrics.New()),
			complianceservice.WithConcurrency(cfg.BatchConcurrency),
			complianceservice.WithNoSignalPolicy(resolver.NoSignalPolicy()),
		},
	)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:        log,
		Metrics:       metrics.New(),
		ActorResolver: jwtService,
		HealthChecks:  healthChecks,
		Modules: []httpapi.Registrar{
			checklisthandler.New(resolver, log, checklisthandler.WithGeotagTimeout(cfg.GeotagTimeout)),
			compliancehandler.New(compliance, log),
			workflowhandler.New(workflow, log),
			notificationhandler.New(notifications, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting slfcert", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadCatalog(path string) (*checklistcatalog.Catalog, error) {
	if path == "" {
		return checklistcatalog.Default()
	}
	return checklistcatalog.Load(path)
}

// stores groups the persistence ports. Without DATABASE_URL every store is
// in-memory and state is lost on restart.
type stores struct {
	db            *sql.DB
	tx            workflowservice.TxRunner
	documents     workflowservice.DocumentStore
	history       audit.Store
	compliance    complianceservice.Store
	notifications notificationservice.Store
	roster        notificationservice.Roster
}

func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		documents := workflowstore.NewInMemoryStore()
		notifications := notificationstore.NewInMemoryStore()
		return stores{
			tx:            documents,
			documents:     documents,
			history:       auditmemory.NewInMemoryStore(),
			compliance:    compliancestore.NewInMemoryStore(),
			notifications: notifications,
			roster:        notifications,
		}, nil
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.DefaultServerOptions())
	if err != nil {
		return stores{}, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	notifications := notificationstore.NewPostgres(db)
	return stores{
		db:            db,
		tx:            workflowstore.NewTxRunner(db),
		documents:     workflowstore.NewPostgres(db),
		history:       auditpostgres.New(db),
		compliance:    compliancestore.NewPostgres(db),
		notifications: notifications,
		roster:        notifications,
	}, nil
}

// buildServices constructs the workflow and compliance services around one
// document cache, so DELETE /cache evicts what the workflow serves.
func buildServices(
	s stores,
	inspections complianceservice.InspectionCache,
	workflowOpts []workflowservice.Option,
	complianceOpts []complianceservice.Option,
) (*workflowservice.Service, *complianceservice.Service, error) {
	documents := compliancecache.NewTTLMap(config.CacheTTL)

	workflowOpts = append(workflowOpts,
		workflowservice.WithTxRunner(s.tx),
		workflowservice.WithDocumentCache(documents),
	)
	workflow, err := workflowservice.New(s.documents, workflowOpts...)
	if err != nil {
		return nil, nil, err
	}

	complianceOpts = append(complianceOpts, complianceservice.WithLocalCache(documents))
	compliance, err := complianceservice.New(s.compliance, inspections, complianceOpts...)
	if err != nil {
		return nil, nil, err
	}
	return workflow, compliance, nil
}

type inspectionCache struct {
	backend complianceservice.InspectionCache
	health  httpapi.HealthCheck
}

// buildInspectionCache returns the shared Redis cache guarded by a circuit
// breaker when REDIS_URL is set, otherwise the process-local TTL map.
func buildInspectionCache(ctx context.Context, cfg config.Server, log *slog.Logger) (inspectionCache, func(), error) {
	local := compliancecache.NewInMemory(compliancecache.NewTTLMap(config.CacheTTL))
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return inspectionCache{}, nil, err
	}
	if client == nil {
		return inspectionCache{backend: local}, func() {}, nil
	}
	resilient := compliancecache.NewResilient(
		compliancecache.NewRedis(client, config.CacheTTL),
		local,
		circuit.New("redis-inspection-cache"),
		log,
	)
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}
	return inspectionCache{backend: resilient, health: client.Health}, closeFn, nil
}
