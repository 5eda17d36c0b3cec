// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/avolio/stockbook-be/internal/adapters/db"
	redis_a "github.com/avolio/stockbook-be/internal/adapters/redis_adapter"
	"github.com/avolio/stockbook-be/internal/core/services"
	"github.com/avolio/stockbook-be/internal/handlers"
	"github.com/avolio/stockbook-be/internal/handlers/middleware"
	"github.com/avolio/stockbook-be/internal/pkg/config"
	"github.com/avolio/stockbook-be/internal/pkg/logger"
	"github.com/avolio/stockbook-be/migrations"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting stockbook inventory costing backend",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	if err := runMigrations(ctx, cfg, slogger); err != nil {
		slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database           *db.Database
	redisClient        *redis.Client
	asynqClient        *asynq.Client
	asynqInspector     *asynq.Inspector
	itemService        *services.ItemService
	transactionEngine  *services.TransactionEngine
	itemHandler        *handlers.ItemHandler
	transactionHandler *handlers.TransactionHandler
	exportHandler      *handlers.ExportHandler
	healthHandler      *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	slogger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	slogger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            cfg.GetRedisAddr(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	txManager := db.NewTxManager(database, slogger)
	itemRepo := db.NewItemRepository(database, slogger)
	transactionRepo := db.NewTransactionRepository(database, slogger)
	sequenceRepo := db.NewSequenceRepository(database, slogger)

	deps.itemService = services.NewItemService(itemRepo, txManager, cache, slogger)
	deps.transactionEngine = services.NewTransactionEngine(
		transactionRepo, deps.itemService, sequenceRepo, txManager, slogger)

	deps.itemHandler = handlers.NewItemHandler(deps.itemService, slogger)
	deps.transactionHandler = handlers.NewTransactionHandler(deps.transactionEngine, slogger)
	deps.exportHandler = handlers.NewExportHandler(deps.asynqClient, "", slogger)
	deps.healthHandler = handlers.NewHealthHandler(
		database, redisClient, deps.asynqInspector, cfg, slogger)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps)

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux
	handler = middleware.Compression(handler)
	handler = middleware.Timeout(cfg.Server.WriteTimeout)(handler)

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}
	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	handler = middleware.Recovery(slogger)(handler)
	handler = middleware.Logger(slogger)(handler)
	handler = middleware.RequestID(handler)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies) {
	apiV1 := "/api/v1"

	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)

	// Item catalogue and stock movements. The literal next-sku route must be
	// registered alongside the {id} wildcard; the mux prefers the literal.
	mux.HandleFunc("GET "+apiV1+"/items/next-sku", deps.itemHandler.NextSKU)
	mux.HandleFunc("POST "+apiV1+"/items", deps.itemHandler.CreateItem)
	mux.HandleFunc("GET "+apiV1+"/items", deps.itemHandler.ListItems)
	mux.HandleFunc("GET "+apiV1+"/items/{id}", deps.itemHandler.GetItem)
	mux.HandleFunc("DELETE "+apiV1+"/items/{id}", deps.itemHandler.DeleteItem)
	mux.HandleFunc("GET "+apiV1+"/items/sku/{sku}", deps.itemHandler.GetItemBySKU)
	mux.HandleFunc("POST "+apiV1+"/items/{id}/stock/add", deps.itemHandler.AddStock)
	mux.HandleFunc("POST "+apiV1+"/items/{id}/stock/remove", deps.itemHandler.RemoveStock)
	mux.HandleFunc("PATCH "+apiV1+"/items/{id}/settings", deps.itemHandler.UpdateSettings)

	// Purchases and sales
	mux.HandleFunc("POST "+apiV1+"/transactions", deps.transactionHandler.CreateTransaction)
	mux.HandleFunc("GET "+apiV1+"/transactions/{id}", deps.transactionHandler.GetTransaction)
	mux.HandleFunc("PUT "+apiV1+"/transactions/{id}", deps.transactionHandler.UpdateTransaction)
	mux.HandleFunc("DELETE "+apiV1+"/transactions/{id}", deps.transactionHandler.DeleteTransaction)
	mux.HandleFunc("POST "+apiV1+"/transactions/{id}/status", deps.transactionHandler.ChangeStatus)
	mux.HandleFunc("POST "+apiV1+"/transactions/{id}/payments", deps.transactionHandler.RecordPayment)
	mux.HandleFunc("GET "+apiV1+"/parties/{id}/transactions", deps.transactionHandler.ListByParty)

	// Valuation and reporting
	mux.HandleFunc("GET "+apiV1+"/valuation/summary", deps.itemHandler.ValuationSummary)
	mux.HandleFunc("GET "+apiV1+"/valuation/reorder", deps.itemHandler.ReorderReport)
	mux.HandleFunc("POST "+apiV1+"/valuation/export", deps.exportHandler.ExportValuation)
}

func runMigrations(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	slogger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL:    cfg.GetDatabaseURL(),
		UseEmbedded:    true,
		EmbeddedSource: migrations.FS,
		TableName:      "schema_migrations",
		SchemaName:     "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, slogger, 3)
}
