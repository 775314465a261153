package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/reusehub/internal/adapter/http/handler"
	"github.com/Abdurahmanit/reusehub/internal/adapter/http/router"
	natsAdapter "github.com/Abdurahmanit/reusehub/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/reusehub/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/reusehub/internal/adapter/repository/memory"
	mongoRepo "github.com/Abdurahmanit/reusehub/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/reusehub/internal/adapter/repository/postgres"
	"github.com/Abdurahmanit/reusehub/internal/config"
	"github.com/Abdurahmanit/reusehub/internal/disposal"
	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/listing/stats"
	"github.com/Abdurahmanit/reusehub/internal/listing/usecase"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/Abdurahmanit/reusehub/internal/platform/metrics"
	"github.com/Abdurahmanit/reusehub/internal/platform/tracer"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputFile: cfg.Log.OutputFile,
	}).With(zap.String("service", cfg.ServiceName))
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Configuration loaded",
		zap.String("config_path", configPath),
		zap.String("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Address != ""),
		zap.Bool("nats_enabled", cfg.NATS.URL != ""),
		zap.Bool("metrics_enabled", cfg.Telemetry.MetricsEnabled))

	rootCtx := context.Background()

	tp, err := tracer.InitTracer(rootCtx, tracer.Options{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		SampleRate:  cfg.Telemetry.TraceSampleRate,
	}, appLogger)
	if err != nil {
		appLogger.Error("Tracing disabled: failed to initialize tracer provider", zap.Error(err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	var repo domain.ListingRepository
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, err := mongoRepo.Connect(rootCtx, cfg.Mongo, cfg.ServiceName, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
			}
		}()
		mongoListings, err := mongoRepo.NewListingRepository(rootCtx, client.Database(cfg.Mongo.Database), appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize listing repository", zap.Error(err))
		}
		repo = mongoListings
		appLogger.Info("Using MongoDB listing store", zap.String("database", cfg.Mongo.Database))
	case config.StorePostgres:
		db, err := postgres.Open(rootCtx, cfg.Postgres, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer db.Close()
		repo = postgres.NewListingRepository(db, appLogger)
		appLogger.Info("Using PostgreSQL listing store")
	default:
		repo = memory.NewListingRepository()
		appLogger.Info("Using in-memory listing store")
	}

	if cfg.Redis.Address != "" {
		rdb, err := cache.NewRedisClient(rootCtx, cfg.Redis, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without listing cache", zap.Error(err))
		} else {
			defer rdb.Close()
			repo = cache.NewCachedListingRepository(repo, rdb, cfg.Redis.TTL, appLogger)
		}
	}

	var metricsManager *metrics.MetricsManager
	if cfg.Telemetry.MetricsEnabled {
		metricsManager = metrics.NewMetricsManager("reusehub")
	}

	weights, err := stats.ParseWeights(cfg.Stats.CategoryWeightsKg)
	if err != nil {
		appLogger.Fatal("Invalid stats weight table", zap.Error(err))
	}

	opts := []usecase.Option{usecase.WithMetrics(metricsManager)}
	if cfg.NATS.URL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.NATS.ConnectTimeout, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Warn("NATS unavailable, domain events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			opts = append(opts, usecase.WithPublisher(publisher))
		}
	}
	listingUsecase := usecase.NewListingUsecase(repo, stats.NewAggregator(weights), appLogger, opts...)

	kb, err := loadKnowledgeBase(cfg.Disposal.KnowledgeBasePath)
	if err != nil {
		appLogger.Fatal("Failed to load disposal knowledge base", zap.Error(err))
	}
	resolver := disposal.NewResolver(kb, appLogger)
	appLogger.Info("Disposal knowledge base loaded", zap.String("version", resolver.Version()))

	mux := router.NewRouter(router.Handlers{
		Listing:  handler.NewListingHandler(listingUsecase, appLogger),
		Disposal: handler.NewDisposalHandler(resolver, metricsManager, appLogger),
		Health:   handler.NewHealthHandler(listingUsecase, appLogger),
	}, router.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Metrics:        metricsManager,
	}, appLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range signals {
		if sig == syscall.SIGHUP {
			reloadKnowledgeBase(resolver, cfg.Disposal.KnowledgeBasePath, appLogger)
			continue
		}
		appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		break
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application shut down")
}

func loadKnowledgeBase(path string) (*disposal.KnowledgeBase, error) {
	if path == "" {
		return disposal.DefaultKnowledgeBase(), nil
	}
	return disposal.LoadKnowledgeBase(path)
}

// reloadKnowledgeBase keeps the current knowledge base when the file is unreadable or invalid.
func reloadKnowledgeBase(resolver *disposal.Resolver, path string, log *logger.Logger) {
	if path == "" {
		log.Info("SIGHUP ignored: disposal knowledge base is embedded")
		return
	}
	kb, err := disposal.LoadKnowledgeBase(path)
	if err != nil {
		log.Error("Failed to reload disposal knowledge base", zap.String("path", path), zap.Error(err))
		return
	}
	resolver.Swap(kb)
}
