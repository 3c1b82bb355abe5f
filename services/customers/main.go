package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/config"
	"github.com/matheusmosca/ecommerce-services/internal/database"
	"github.com/matheusmosca/ecommerce-services/internal/httpmetrics"
	"github.com/matheusmosca/ecommerce-services/internal/httpserver"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/telemetry"
)

type Config struct {
	Port        string
	ServiceName string
	Env         string
	JWTSecret   string
	ApplySchema bool
	Telemetry   telemetry.Config
	Database    database.Config
}

func loadConfig() Config {
	serviceName := config.GetEnv("SERVICE_NAME", "customers-service")
	return Config{
		Port:        config.GetEnv("PORT", "3000"),
		ServiceName: serviceName,
		Env:         config.GetEnv("ENV", "development"),
		JWTSecret:   config.GetEnv("JWT_SECRET", "secret-key"),
		ApplySchema: config.GetEnvBool("DATABASE_APPLY_SCHEMA", true),
		Telemetry: telemetry.Config{
			ServiceName: serviceName,
			Endpoint:    config.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Enabled:     config.GetEnvBool("OTEL_ENABLED", true),
		},
		Database: database.ConfigFromEnv("ecommerce"),
	}
}

func main() {
	cfg := loadConfig()

	logger, err := logging.NewLogger(cfg.ServiceName, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("error shutting down telemetry", zap.Error(err))
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.ApplySchema {
		if err := database.ApplySchema(ctx, pool); err != nil {
			logger.Fatal("failed to apply schema", zap.Error(err))
		}
	}

	usecases, err := NewCustomerUseCase(NewCustomerRepository(pool), otel.Tracer(cfg.ServiceName), otel.Meter(cfg.ServiceName))
	if err != nil {
		logger.Fatal("failed to initialize customer use case", zap.Error(err))
	}

	router := httpserver.NewRouter(httpserver.Options{
		ServiceName: cfg.ServiceName,
		Logger:      logger,
		Metrics:     httpmetrics.New("customers"),
		Tracing:     cfg.Telemetry.Enabled,
	})
	NewCustomerHandler(usecases).RegisterRoutes(router, authn.NewVerifier(cfg.JWTSecret))

	if err := httpserver.Run(ctx, httpserver.New(":"+cfg.Port, router), logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
