package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
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
	Port              string
	ServiceName       string
	Env               string
	JWTSecret         string
	JWTTTL            time.Duration
	ServiceTokenTTL   time.Duration
	InventoryURL      string
	CustomersURL      string
	DownstreamTimeout time.Duration
	RedisAddr         string
	CatalogCacheTTL   time.Duration
	ApplySchema       bool
	Telemetry         telemetry.Config
	Database          database.Config
}

func loadConfig() Config {
	serviceName := config.GetEnv("SERVICE_NAME", "sales-service")
	return Config{
		Port:              config.GetEnv("PORT", "3003"),
		ServiceName:       serviceName,
		Env:               config.GetEnv("ENV", "development"),
		JWTSecret:         config.GetEnv("JWT_SECRET", "secret-key"),
		JWTTTL:            config.GetEnvDuration("JWT_TTL", time.Hour),
		ServiceTokenTTL:   config.GetEnvDuration("SERVICE_TOKEN_TTL", time.Minute),
		InventoryURL:      config.GetEnv("INVENTORY_SERVICE_URL", "http://inventory-service:3001"),
		CustomersURL:      config.GetEnv("CUSTOMERS_SERVICE_URL", "http://customers-service:3000"),
		DownstreamTimeout: config.GetEnvDuration("DOWNSTREAM_TIMEOUT", 5*time.Second),
		RedisAddr:         config.GetEnv("REDIS_ADDR", ""),
		CatalogCacheTTL:   config.GetEnvDuration("CATALOG_CACHE_TTL", 30*time.Second),
		ApplySchema:       config.GetEnvBool("DATABASE_APPLY_SCHEMA", true),
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

	var cache CatalogCache = noCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cache = NewRedisCatalogCache(rdb, cfg.CatalogCacheTTL)
			logger.Info("✅ catalog cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CatalogCacheTTL))
		}
	}

	issuer := authn.NewIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.ServiceTokenTTL)
	verifier := authn.NewVerifier(cfg.JWTSecret)

	inventory := NewRestyInventoryStore(cfg.InventoryURL, cfg.DownstreamTimeout)
	customers := NewRestyCustomerStore(cfg.CustomersURL, cfg.DownstreamTimeout)
	ledger := NewOrderLedger(pool)
	incidents := NewIncidentRecorder(pool)

	tracer := otel.Tracer(cfg.ServiceName)
	purchases, err := NewPurchaseUseCase(inventory, customers, ledger, incidents, cache, issuer, tracer, otel.Meter(cfg.ServiceName))
	if err != nil {
		logger.Fatal("failed to initialize purchase use case", zap.Error(err))
	}

	handler := NewSalesHandler(
		purchases,
		NewCatalogUseCase(inventory, cache, issuer),
		NewOrderUseCase(ledger),
		incidents,
		tracer,
	)

	router := httpserver.NewRouter(httpserver.Options{
		ServiceName: cfg.ServiceName,
		Logger:      logger,
		Metrics:     httpmetrics.New("sales"),
		Tracing:     cfg.Telemetry.Enabled,
	})
	handler.RegisterRoutes(router, verifier)

	if err := httpserver.Run(ctx, httpserver.New(":"+cfg.Port, router), logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
