// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/avolio/stockbook-be/internal/adapters/db"
	redis_a "github.com/avolio/stockbook-be/internal/adapters/redis_adapter"
	"github.com/avolio/stockbook-be/internal/core/services"
	"github.com/avolio/stockbook-be/internal/pkg/config"
	"github.com/avolio/stockbook-be/internal/pkg/logger"
	"github.com/avolio/stockbook-be/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()
	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	txManager := db.NewTxManager(database, slogger)
	itemRepo := db.NewItemRepository(database, slogger)
	itemService := services.NewItemService(itemRepo, txManager, cache, slogger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(
		asynqRedisOpt,
		asynq.Config{
			Concurrency:     cfg.Asynq.Concurrency,
			Queues:          cfg.Asynq.Queues,
			StrictPriority:  cfg.Asynq.StrictPriority,
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
			HealthCheckFunc: healthCheck,
			Logger:          newAsynqLogger(slogger),
		},
	)

	mux := asynq.NewServeMux()

	reorderProcessor := workers.NewReorderProcessor(itemService, cache, slogger)
	mux.HandleFunc(workers.TypeReorderScan, reorderProcessor.ProcessReorderScan)

	exportProcessor := workers.NewValuationExportProcessor(itemService, slogger)
	mux.HandleFunc(workers.TypeValuationExport, exportProcessor.ProcessValuationExport)

	cleanupProcessor := workers.NewCleanupProcessor(database, slogger)
	mux.HandleFunc(workers.TypeCleanupDeleted, cleanupProcessor.ProcessCleanup)

	scheduler, err := setupScheduler(asynqRedisOpt, slogger)
	if err != nil {
		slogger.Error("failed to set up scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// setupScheduler enqueues the recurring reorder scan and retention purge.
func setupScheduler(opt asynq.RedisClientOpt, slogger *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Logger: newAsynqLogger(slogger),
	})

	if _, err := scheduler.Register("@every 1h", workers.NewReorderScanTask()); err != nil {
		return nil, fmt.Errorf("register reorder scan: %w", err)
	}

	cleanupTask, err := workers.NewCleanupTask(30)
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register("0 3 * * *", cleanupTask); err != nil {
		return nil, fmt.Errorf("register cleanup: %w", err)
	}

	return scheduler, nil
}

func initDatabase(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		// Fewer connections for the worker
		MaxConnections:     10,
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, slogger)
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
