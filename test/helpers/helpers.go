// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/avolio/stockbook-be/internal/adapters/db"
	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// PassthroughTxManager runs the unit-of-work body directly, for service
// tests that don't exercise transactional behavior.
type PassthroughTxManager struct{}

func (PassthroughTxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (PassthroughTxManager) AfterCommit(ctx context.Context, fn func(context.Context)) {
	fn(ctx)
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_stockbook",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_stockbook",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_stockbook",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestItem creates a test item with a small FIFO ledger
func CreateTestItem(overrides ...func(*domain.Item)) *domain.Item {
	now := time.Now()
	item := &domain.Item{
		ItemID:       uuid.New(),
		SKU:          "0000000042",
		Name:         "Cold-Rolled Steel Sheet",
		Kind:         domain.KindProduct,
		Category:     "raw-materials",
		Tags:         []string{"steel", "sheet"},
		Measurement:  domain.MeasurementWeight,
		Unit:         "kg",
		Valuation:    domain.ValuationFIFO,
		OnHand:       decimal.NewFromInt(25),
		AverageCost:  decimal.NewFromFloat(2.60),
		MinimumLevel: decimal.NewFromInt(5),
		ReorderPoint: decimal.NewFromInt(10),
		MaximumLevel: decimal.NewFromInt(500),
		Ledger: domain.StockLedger{
			{
				Date:            now.AddDate(0, 0, -14),
				InitialQuantity: decimal.NewFromInt(10),
				UnitCost:        decimal.NewFromInt(2),
				Remaining:       decimal.NewFromInt(10),
				Source:          domain.SourcePurchase,
			},
			{
				Date:            now.AddDate(0, 0, -7),
				InitialQuantity: decimal.NewFromInt(15),
				UnitCost:        decimal.NewFromInt(3),
				Remaining:       decimal.NewFromInt(15),
				Source:          domain.SourcePurchase,
			},
		},
		LastUpdated: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestTransaction creates a DRAFT purchase with a single line
func CreateTestTransaction(overrides ...func(*domain.Transaction)) *domain.Transaction {
	now := time.Now()
	tx := &domain.Transaction{
		ID:             uuid.New(),
		ExternalID:     "PO2508310001",
		Kind:           domain.KindPurchase,
		CounterpartyID: uuid.New(),
		Date:           now,
		Status:         domain.StatusDraft,
		PaymentStatus:  domain.PaymentUnpaid,
		Lines: []domain.LineItem{
			{
				ItemID:    uuid.New(),
				SKU:       "0000000042",
				Name:      "Cold-Rolled Steel Sheet",
				Quantity:  decimal.NewFromInt(10),
				UnitPrice: decimal.NewFromFloat(2.50),
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	tx.Recalculate()

	for _, override := range overrides {
		override(tx)
	}

	return tx
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"transactions",
		"sequences",
		"items",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}
