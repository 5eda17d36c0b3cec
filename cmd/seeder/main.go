// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/avolio/stockbook-be/internal/adapters/db"
	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
)

// seedSpec describes one catalogue row to be seeded.
type seedSpec struct {
	SKU          string
	Name         string
	Kind         domain.ItemKind
	Category     string
	Tags         []string
	Measurement  domain.Measurement
	Unit         string
	Valuation    domain.ValuationMethod
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	ReorderPoint decimal.Decimal
	MinimumLevel decimal.Decimal
}

// seederState tracks which SKUs were already seeded across runs.
type seederState struct {
	SeededSKUs []string  `json:"seeded_skus"`
	LastUpdate time.Time `json:"last_update"`
}

func (s *seederState) contains(sku string) bool {
	for _, seeded := range s.SeededSKUs {
		if seeded == sku {
			return true
		}
	}
	return false
}

func main() {
	var (
		catalogFile = flag.String("catalog", "", "Optional xlsx catalogue to seed from")
		stateFile   = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun      = flag.Bool("dry-run", false, "Preview changes without modifying database")
		force       = flag.Bool("force", false, "Reseed SKUs already recorded in the state file")
		withTx      = flag.Bool("with-transactions", true, "Seed sample purchases and sales")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	dbConfig := &db.Config{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              getEnv("DB_PORT", "5432"),
		User:              getEnv("DB_USER", "stockbook"),
		Password:          getEnv("DB_PASSWORD", "stockbook_dev_2025"),
		Database:          getEnv("DB_NAME", "stockbook"),
		SSLMode:           getEnv("DB_SSL_MODE", "disable"),
		MaxConnections:    5,
		MinConnections:    1,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
		ConnectTimeout:    10 * time.Second,
	}

	var (
		itemRepo  ports.ItemRepository
		txRepo    ports.TransactionRepository
		seqRepo   ports.SequenceRepository
		txManager ports.TxManager
	)

	if !*dryRun {
		database, err := db.NewDatabase(ctx, dbConfig, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()

		itemRepo = db.NewItemRepository(database, logger)
		txRepo = db.NewTransactionRepository(database, logger)
		seqRepo = db.NewSequenceRepository(database, logger)
		txManager = db.NewTxManager(database, logger)
	}

	specs := defaultCatalog()
	if *catalogFile != "" {
		loaded, err := loadCatalog(*catalogFile)
		if err != nil {
			logger.Error("failed to load catalogue", slog.String("error", err.Error()))
			os.Exit(1)
		}
		specs = loaded
	}

	var state seederState
	if !*force {
		if stateData, err := os.ReadFile(*stateFile); err == nil {
			json.Unmarshal(stateData, &state)
		}
	}

	seeded := make([]*domain.Item, 0, len(specs))
	skipped := 0
	for _, spec := range specs {
		if !*force && state.contains(spec.SKU) {
			logger.Info("skipping already seeded sku", slog.String("sku", spec.SKU))
			skipped++
			continue
		}

		item, err := buildItem(spec)
		if err != nil {
			logger.Error("invalid catalogue row",
				slog.String("sku", spec.SKU),
				slog.String("error", err.Error()))
			continue
		}
		seeded = append(seeded, item)
	}

	// One batched insert for the whole catalogue. A duplicate or failure
	// aborts the run before the state file records anything.
	if !*dryRun && len(seeded) > 0 {
		if err := itemRepo.BulkCreate(ctx, seeded); err != nil {
			logger.Error("failed to seed items", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	for _, item := range seeded {
		logger.Info("seeded item",
			slog.String("sku", item.SKU),
			slog.String("name", item.Name),
			slog.String("on_hand", item.OnHand.String()))
		state.SeededSKUs = append(state.SeededSKUs, item.SKU)
	}
	if len(seeded) > 0 {
		state.LastUpdate = time.Now()
	}

	txCount := 0
	if *withTx && !*dryRun && len(seeded) > 0 {
		var err error
		txCount, err = seedTransactions(ctx, txManager, txRepo, seqRepo, seeded)
		if err != nil {
			logger.Error("failed to seed transactions", slog.String("error", err.Error()))
		}
	}

	if !*dryRun {
		if stateData, err := json.MarshalIndent(state, "", "  "); err == nil {
			os.WriteFile(*stateFile, stateData, 0644)
		}
	}

	logger.Info("seed operation completed",
		slog.Int("items_seeded", len(seeded)),
		slog.Int("items_skipped", skipped),
		slog.Int("transactions_seeded", txCount),
		slog.Bool("dry_run", *dryRun))
}

// buildItem turns a catalogue row into a validated item with an opening
// stock layer.
func buildItem(spec seedSpec) (*domain.Item, error) {
	now := time.Now()
	item := &domain.Item{
		ItemID:       uuid.New(),
		SKU:          spec.SKU,
		Name:         spec.Name,
		Kind:         spec.Kind,
		Category:     spec.Category,
		Tags:         spec.Tags,
		Measurement:  spec.Measurement,
		Unit:         spec.Unit,
		Valuation:    spec.Valuation,
		ReorderPoint: spec.ReorderPoint,
		MinimumLevel: spec.MinimumLevel,
		LastUpdated:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if spec.Quantity.IsPositive() {
		if err := item.AddInflow(spec.Quantity, spec.UnitCost,
			now.AddDate(0, 0, -7), domain.SourceAdjustment); err != nil {
			return nil, err
		}
	}

	return item, nil
}

// seedTransactions creates one confirmed purchase per seeded item, batched
// into a handful of orders.
func seedTransactions(ctx context.Context, txManager ports.TxManager,
	txRepo ports.TransactionRepository, seqRepo ports.SequenceRepository,
	items []*domain.Item) (int, error) {

	supplierID := uuid.New()
	count := 0

	const linesPerOrder = 3
	for start := 0; start < len(items); start += linesPerOrder {
		end := start + linesPerOrder
		if end > len(items) {
			end = len(items)
		}

		lines := make([]domain.LineItem, 0, end-start)
		for _, item := range items[start:end] {
			lines = append(lines, domain.LineItem{
				ItemID:    item.ItemID,
				SKU:       item.SKU,
				Name:      item.Name,
				Quantity:  decimal.NewFromInt(10),
				UnitPrice: item.AverageCost,
			})
		}

		tx := &domain.Transaction{
			ID:             uuid.New(),
			Kind:           domain.KindPurchase,
			CounterpartyID: supplierID,
			Date:           time.Now().AddDate(0, 0, -3),
			Status:         domain.StatusDraft,
			PaymentStatus:  domain.PaymentUnpaid,
			Lines:          lines,
			Notes:          "seeded opening purchase",
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		tx.Recalculate()

		err := txManager.RunInTx(ctx, func(ctx context.Context) error {
			dateKey := tx.Date.Format("060102")
			n, err := seqRepo.Next(ctx, "PO", dateKey)
			if err != nil {
				return fmt.Errorf("allocate external id: %w", err)
			}
			tx.ExternalID = fmt.Sprintf("PO%s%04d", dateKey, n)
			return txRepo.Create(ctx, tx)
		})
		if err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

// loadCatalog reads seed rows from an xlsx workbook. Expected columns:
// sku, name, kind, category, measurement, unit, quantity, unit_cost,
// reorder_point, minimum_level, tags.
func loadCatalog(path string) ([]seedSpec, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in catalogue")
	}
	sheet := file.Sheets[0]

	var specs []seedSpec
	rowIdx := 0
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		sku := get(0)
		if sku == "" {
			return nil
		}

		spec := seedSpec{
			SKU:          sku,
			Name:         get(1),
			Kind:         domain.ItemKind(get(2)),
			Category:     get(3),
			Measurement:  domain.Measurement(get(4)),
			Unit:         get(5),
			Valuation:    domain.ValuationFIFO,
			Quantity:     parseDecimal(get(6)),
			UnitCost:     parseDecimal(get(7)),
			ReorderPoint: parseDecimal(get(8)),
			MinimumLevel: parseDecimal(get(9)),
		}
		if tags := get(10); tags != "" {
			spec.Tags = strings.Split(tags, ",")
		}

		specs = append(specs, spec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return specs, nil
}

// defaultCatalog is the built-in sample data used when no catalogue file is
// given.
func defaultCatalog() []seedSpec {
	return []seedSpec{
		{
			SKU: "0000000001", Name: "Cold-Rolled Steel Sheet", Kind: domain.KindMaterial,
			Category: "raw-materials", Tags: []string{"steel", "sheet"},
			Measurement: domain.MeasurementWeight, Unit: "kg", Valuation: domain.ValuationFIFO,
			Quantity: decimal.NewFromInt(250), UnitCost: decimal.RequireFromString("2.60"),
			ReorderPoint: decimal.NewFromInt(50), MinimumLevel: decimal.NewFromInt(20),
		},
		{
			SKU: "0000000002", Name: "Galvanized Wire", Kind: domain.KindMaterial,
			Category: "raw-materials", Tags: []string{"wire"},
			Measurement: domain.MeasurementLength, Unit: "m", Valuation: domain.ValuationFIFO,
			Quantity: decimal.NewFromInt(1200), UnitCost: decimal.RequireFromString("0.18"),
			ReorderPoint: decimal.NewFromInt(200), MinimumLevel: decimal.NewFromInt(100),
		},
		{
			SKU: "0000000003", Name: "Oak Board 25mm", Kind: domain.KindMaterial,
			Category: "raw-materials", Tags: []string{"wood", "oak"},
			Measurement: domain.MeasurementArea, Unit: "sq.m", Valuation: domain.ValuationWeightedAvg,
			Quantity: decimal.NewFromInt(80), UnitCost: decimal.RequireFromString("14.50"),
			ReorderPoint: decimal.NewFromInt(15), MinimumLevel: decimal.NewFromInt(5),
		},
		{
			SKU: "0000000004", Name: "Wood Varnish", Kind: domain.KindMaterial,
			Category: "consumables", Tags: []string{"finish"},
			Measurement: domain.MeasurementVolume, Unit: "l", Valuation: domain.ValuationWeightedAvg,
			Quantity: decimal.NewFromInt(40), UnitCost: decimal.RequireFromString("7.25"),
			ReorderPoint: decimal.NewFromInt(10), MinimumLevel: decimal.NewFromInt(4),
		},
		{
			SKU: "0000000005", Name: "Workshop Table", Kind: domain.KindProduct,
			Category: "finished-goods", Tags: []string{"furniture"},
			Measurement: domain.MeasurementQuantity, Unit: "ea", Valuation: domain.ValuationFIFO,
			Quantity: decimal.NewFromInt(12), UnitCost: decimal.RequireFromString("85.00"),
			ReorderPoint: decimal.NewFromInt(3), MinimumLevel: decimal.NewFromInt(1),
		},
		{
			SKU: "0000000006", Name: "Packing Boxes", Kind: domain.KindDual,
			Category: "packaging", Tags: []string{"cardboard"},
			Measurement: domain.MeasurementQuantity, Unit: "case", Valuation: domain.ValuationLIFO,
			Quantity: decimal.NewFromInt(60), UnitCost: decimal.RequireFromString("3.40"),
			ReorderPoint: decimal.NewFromInt(12), MinimumLevel: decimal.NewFromInt(6),
		},
	}
}

func parseDecimal(val string) decimal.Decimal {
	cleaned := strings.ReplaceAll(val, ",", "")
	d, err := decimal.NewFromString(strings.TrimSpace(cleaned))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
