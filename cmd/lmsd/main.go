package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/application/usecase"
	"github.com/bobbykesh/lms/internal/domain/port"
	"github.com/bobbykesh/lms/internal/domain/service"
	"github.com/bobbykesh/lms/internal/infrastructure/config"
	"github.com/bobbykesh/lms/internal/infrastructure/messaging"
	filestore "github.com/bobbykesh/lms/internal/infrastructure/persistence/file"
	pgstore "github.com/bobbykesh/lms/internal/infrastructure/persistence/postgres"
	platformkafka "github.com/bobbykesh/lms/internal/platform/kafka"
	"github.com/bobbykesh/lms/internal/platform/observability"
	platformpg "github.com/bobbykesh/lms/internal/platform/postgres"
	"github.com/bobbykesh/lms/internal/presentation/rest"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	cfg.Validate()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	logger.Info("starting lms",
		"http_port", cfg.HTTPPort,
		"store_backend", cfg.StoreBackend,
	)

	_, metricsHandler, err := observability.InitMetrics()
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// Snapshot store backend.
	var (
		store     port.SnapshotStore
		readiness []rest.ReadinessCheck
		closers   []func()
	)
	switch cfg.StoreBackend {
	case config.StorePostgres:
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := platformpg.NewPool(dbCtx, platformpg.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
		})
		dbCancel()
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		closers = append(closers, pool.Close)
		logger.Info("connected to database")

		dsn := platformpg.Config{
			Host: cfg.DB.Host, Port: cfg.DB.Port,
			User: cfg.DB.User, Password: cfg.DB.Password,
			Database: cfg.DB.Name, SSLMode: cfg.DB.SSLMode,
		}.DSN()
		if migErr := platformpg.RunMigrations(dsn, "file://internal/infrastructure/persistence/postgres/migrations"); migErr != nil {
			logger.Warn("migration warning", "error", migErr)
		}

		store = pgstore.NewSnapshotStore(pool)
		readiness = append(readiness, func(ctx context.Context) error {
			return platformpg.HealthCheck(ctx, pool)
		})
	default:
		store = filestore.NewSnapshotStore(cfg.DataFile)
	}

	// Event publisher.
	var publisher port.EventPublisher = messaging.NopEventPublisher{}
	if cfg.Kafka.Enabled {
		producer := platformkafka.NewProducer(platformkafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		closers = append(closers, func() { _ = producer.Close() })
		publisher = messaging.NewKafkaEventPublisher(producer, logger)
	}

	// Application state: load once, then track external replaces.
	book := state.NewBook(store, logger)
	if err := book.Load(ctx); err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := book.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("snapshot subscription stopped", "error", err)
		}
	}()

	// Domain services and use cases.
	limits := service.NewCreditLimitEngine()
	reporter := service.NewPortfolioReporter()

	handler := rest.NewHandler(
		usecase.NewRegisterClientUseCase(book, publisher, logger),
		usecase.NewToggleBlacklistUseCase(book, publisher, logger),
		usecase.NewIssueLoanUseCase(book, limits, publisher, logger),
		usecase.NewRecordPaymentUseCase(book, publisher, logger),
		usecase.NewAddExpenseUseCase(book, publisher, logger),
		usecase.NewRemoveExpenseUseCase(book, publisher, logger),
		usecase.NewBackupUseCase(book, logger),
		usecase.NewQueries(book, limits, reporter),
		logger,
	)

	router := mux.NewRouter()
	router.Use(rest.Metrics)
	handler.RegisterRoutes(router)
	rest.NewHealthHandler(logger, readiness...).RegisterRoutes(router)
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}

	for _, fn := range closers {
		fn()
	}
}
