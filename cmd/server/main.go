package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smpconsole/subscription-tracker/internal/adapters/postgres"
	"github.com/smpconsole/subscription-tracker/internal/adapters/secrets"
	"github.com/smpconsole/subscription-tracker/internal/config"
	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/internal/handlers"
	catalogService "github.com/smpconsole/subscription-tracker/internal/services/catalog"
	reportingService "github.com/smpconsole/subscription-tracker/internal/services/reporting"
	subscriptionService "github.com/smpconsole/subscription-tracker/internal/services/subscription"
	"github.com/smpconsole/subscription-tracker/pkg/logging"
	"github.com/smpconsole/subscription-tracker/pkg/observability"
)

func main() {
	// .env is optional; environment variables win
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logging.NewLogger(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger := logging.NewZapLogger(zapLogger)

	zapLogger.Info("Starting subscription tracker",
		zap.String("version", "0.1.0"),
	)

	ctx := context.Background()

	if err := resolveDBPassword(ctx, cfg, logger); err != nil {
		zapLogger.Fatal("Failed to resolve database password", zap.Error(err))
	}

	dbPool, err := initDatabase(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	zapLogger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	rates, err := cfg.Currency.ParseRates()
	if err != nil {
		zapLogger.Fatal("Failed to parse exchange rates", zap.Error(err))
	}
	converter, err := domain.NewCurrencyConverter(cfg.Currency.BaseCurrency, rates)
	if err != nil {
		zapLogger.Fatal("Failed to build currency converter", zap.Error(err))
	}

	db := postgres.NewDBExecutor(dbPool)
	subRepo := postgres.NewSubscriptionRepository()
	providerRepo := postgres.NewProviderRepository()
	cycleRepo := postgres.NewBillingCycleRepository()
	ruleRepo := postgres.NewNotificationRuleRepository()
	eventRepo := postgres.NewRenewalEventRepository()
	historyRepo := postgres.NewHistoryRepository()

	subService := subscriptionService.NewService(db, subRepo, providerRepo, cycleRepo, ruleRepo, eventRepo, historyRepo, logger)
	catService := catalogService.NewService(db, providerRepo, cycleRepo, subRepo, logger)
	repService := reportingService.NewService(db, subRepo, providerRepo, cycleRepo, ruleRepo, eventRepo, converter, logger)

	router := handlers.NewRouter(
		handlers.NewSubscriptionHandler(subService, logger),
		handlers.NewCatalogHandler(catService, logger),
		handlers.NewReportingHandler(repService, logger),
		logger,
	)

	apiServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Metrics and health live on a separate port so they stay reachable
	// without principal headers.
	healthChecker := observability.NewHealthChecker(dbPool)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/health", healthChecker.HealthHandler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	go func() {
		zapLogger.Info("API server listening",
			zap.Int("port", cfg.Server.Port),
		)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	go func() {
		zapLogger.Info("Metrics server listening",
			zap.Int("port", cfg.Server.MetricsPort),
		)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to serve metrics", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("API server shutdown error", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Metrics server shutdown error", zap.Error(err))
	}

	zapLogger.Info("Servers stopped")
}

// resolveDBPassword fills Database.Password from the configured secrets
// backend when it is not set directly in the environment.
func resolveDBPassword(ctx context.Context, cfg *config.Config, logger ports.Logger) error {
	if cfg.Database.Password != "" || cfg.Secrets.Backend == "env" {
		return nil
	}

	var store secrets.Store
	var err error
	switch cfg.Secrets.Backend {
	case "local":
		store = secrets.NewLocalStore(cfg.Secrets.LocalPath, logger)
	case "aws":
		store, err = secrets.NewAWSStore(ctx, secrets.DefaultAWSConfig(cfg.Secrets.AWSRegion), logger)
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.Secrets.VaultAddress)
		vaultCfg.Token = cfg.Secrets.VaultToken
		vaultCfg.MountPath = cfg.Secrets.VaultMount
		store, err = secrets.NewVaultStore(ctx, vaultCfg, logger)
	default:
		return fmt.Errorf("unknown secrets backend %q", cfg.Secrets.Backend)
	}
	if err != nil {
		return err
	}

	secret, err := store.GetSecret(ctx, cfg.Secrets.DBPasswordPath)
	if err != nil {
		return err
	}
	cfg.Database.Password = secret.Value
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
