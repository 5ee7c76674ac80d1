package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/piresc/trackmybus/internal/pkg/circuitbreaker"
	"github.com/piresc/trackmybus/internal/pkg/config"
	"github.com/piresc/trackmybus/internal/pkg/database"
	"github.com/piresc/trackmybus/internal/pkg/health"
	"github.com/piresc/trackmybus/internal/pkg/kafka"
	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/metrics"
	"github.com/piresc/trackmybus/internal/pkg/middleware"
	"github.com/piresc/trackmybus/internal/pkg/models"
	natspkg "github.com/piresc/trackmybus/internal/pkg/nats"
	nrpkg "github.com/piresc/trackmybus/internal/pkg/newrelic"
	"github.com/piresc/trackmybus/internal/pkg/nsq"
	"github.com/piresc/trackmybus/internal/pkg/server"
	"github.com/piresc/trackmybus/internal/utils"
	"github.com/piresc/trackmybus/services/tracking"
	"github.com/piresc/trackmybus/services/tracking/gateway"
	"github.com/piresc/trackmybus/services/tracking/handler"
	httpHandler "github.com/piresc/trackmybus/services/tracking/handler/http"
	"github.com/piresc/trackmybus/services/tracking/liveness"
	"github.com/piresc/trackmybus/services/tracking/repository"
	"github.com/piresc/trackmybus/services/tracking/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "tracker"
	configs := config.InitConfig(config.GetEnv("CONFIG_PATH", ".env"))
	if err := config.Validate(configs); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize New Relic and Zap logger
	nrApp := nrpkg.InitNewRelic(configs)
	if nrApp != nil {
		if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		zap.String("app", appName),
		zap.String("version", configs.App.Version),
		zap.String("environment", configs.App.Environment),
		zap.String("store", configs.Store.Driver),
		zap.String("events", configs.Events.Broker),
	)

	ctx := context.Background()
	shutdown := server.NewShutdownManager(zapLogger)
	healthService := health.NewHealthService(zapLogger)

	policy, err := liveness.PolicyFromConfig(configs.Tracking)
	if err != nil {
		zapLogger.Fatal("Invalid liveness policy", zap.Error(err))
	}
	zapLogger.Info("Liveness policy",
		zap.Duration("stale_after", policy.StaleAfter),
		zap.Duration("offline_after", policy.OfflineAfter))

	// Redis backs the default store and the ingestion rate limiter
	var redisClient *database.RedisClient
	if configs.Store.Driver == "redis" || configs.Server.RateLimit > 0 {
		redisClient, err = database.NewRedisClient(configs.Redis)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		healthService.AddChecker("redis", health.NewPingChecker(redisClient))
		shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })
	}

	// Initialize repository
	var locationRepo tracking.LocationRepo
	switch configs.Store.Driver {
	case "mongo":
		mongoClient, err := database.NewMongoClient(ctx, configs.Mongo)
		if err != nil {
			zapLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		healthService.AddChecker("mongo", health.NewPingChecker(mongoClient))
		shutdown.Register("mongo", mongoClient.Close)
		locationRepo = repository.NewMongoLocationRepo(mongoClient.Collection(configs.Mongo.Collection))
	default:
		locationRepo = repository.NewRedisLocationRepo(redisClient)
	}

	// NATS serves both ingestion and event publishing
	var natsClient *natspkg.Client
	if configs.NATS.IngestEnabled || configs.Events.Broker == "nats" {
		natsClient, err = natspkg.NewClient(configs.NATS.URL)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
		shutdown.Register("nats", func(context.Context) error {
			natsClient.Close()
			return nil
		})
	}

	collector := metrics.NewCollector(policy.StaleAfter, policy.OfflineAfter)
	opts := []usecase.Option{usecase.WithMetrics(collector)}

	if events := newEventGateway(configs, natsClient, shutdown, zapLogger); events != nil {
		opts = append(opts, usecase.WithEvents(events))
	}

	// Bus registry is optional; without it route-name lookups answer 503
	if configs.Database.Host != "" {
		postgresClient, err := database.NewPostgresClient(configs.Database)
		if err != nil {
			zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		healthService.AddChecker("registry", health.NewPingChecker(postgresClient))
		shutdown.Register("registry", func(context.Context) error { return postgresClient.Close() })
		registry := gateway.NewRegistryGateway(postgresClient.GetDB()).
			WithBreaker(circuitbreaker.New(circuitbreaker.DefaultConfig("registry")))
		opts = append(opts, usecase.WithRegistry(registry))
	}

	// Initialize usecase
	trackingUC, err := usecase.NewTrackingUC(configs.Tracking, locationRepo, opts...)
	if err != nil {
		zapLogger.Fatal("Failed to create tracking usecase", zap.Error(err))
	}

	// Handlers for NATS
	if configs.NATS.IngestEnabled {
		locationNATS := handler.NewLocationHandler(trackingUC, natsClient, configs.NATS)
		if configs.JWT.Secret != "" {
			locationNATS.WithAuth(configs.JWT)
		}
		if err := locationNATS.InitNATSConsumers(); err != nil {
			zapLogger.Fatal("Failed to initialize NATS consumers", zap.Error(err))
		}
		shutdown.Register("nats-consumers", func(context.Context) error {
			locationNATS.Close()
			return nil
		})
	}

	// Initialize Echo router
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()

	// Add middlewares
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.NewRelicMiddleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: configs.Server.CORSOrigins}))

	health.RegisterEnhancedHealthEndpoints(e, appName, configs.App.Version, healthService)
	if configs.Metrics.Enabled {
		e.GET(configs.Metrics.Path, echo.WrapHandler(collector.Handler()))
	}

	var ingest []echo.MiddlewareFunc
	if configs.Server.RateLimit > 0 {
		ingest = append(ingest, middleware.IPRateLimiter(configs.Server.RateLimit, configs.Server.RateLimitWindow,
			redisClient.GetClient(), zapLogger, httpHandler.IsStopSharingRequest))
	}
	handler.NewHTTPHandler(trackingUC, configs).RegisterRoutes(e, ingest...)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Host, configs.Server.Port,
		time.Duration(configs.Server.ShutdownTimeout)*time.Second)
	if err := srv.Start(ctx); err != nil {
		zapLogger.Error("Server stopped with error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := shutdown.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Shutdown finished with errors", zap.Error(err))
	}
}

// newEventGateway returns nil when EVENTS_BROKER is none
func newEventGateway(configs *models.Config, natsClient *natspkg.Client, shutdown *server.ShutdownManager, zapLogger *logger.ZapLogger) tracking.EventGW {
	switch configs.Events.Broker {
	case "nats":
		return gateway.NewEventGateway(natsClient, "nats")
	case "nsq":
		producer, err := nsq.NewProducer(configs.Events.NSQAddress)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NSQ", zap.Error(err))
		}
		shutdown.Register("nsq", func(context.Context) error {
			producer.Stop()
			return nil
		})
		return gateway.NewEventGateway(producer, "nsq")
	case "kafka":
		producer, err := kafka.NewProducer(configs.Events.KafkaBrokers)
		if err != nil {
			zapLogger.Fatal("Failed to create Kafka producer", zap.Error(err))
		}
		shutdown.Register("kafka", func(context.Context) error { return producer.Close() })
		return gateway.NewEventGateway(producer, "kafka")
	default:
		return nil
	}
}
