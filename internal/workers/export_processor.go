// internal/workers/export_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/tealeg/xlsx/v3"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
)

const exportPageSize = 500

// ValuationExportProcessor writes the full catalogue valuation to an xlsx
// workbook on disk.
type ValuationExportProcessor struct {
	items  ports.ItemService
	logger *slog.Logger
}

// NewValuationExportProcessor creates a new export processor
func NewValuationExportProcessor(items ports.ItemService, logger *slog.Logger) *ValuationExportProcessor {
	return &ValuationExportProcessor{
		items:  items,
		logger: logger.With(slog.String("processor", "valuation_export")),
	}
}

// ProcessValuationExport builds the workbook for a queued export job.
func (p *ValuationExportProcessor) ProcessValuationExport(ctx context.Context, t *asynq.Task) error {
	var payload ValuationExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal export payload: %w", err)
	}

	start := time.Now()
	p.logger.InfoContext(ctx, "starting valuation export",
		slog.String("job_id", payload.JobID),
		slog.String("output_path", payload.OutputPath))

	file := xlsx.NewFile()

	itemCount, err := p.writeItemsSheet(ctx, file)
	if err != nil {
		return err
	}
	if err := p.writeSummarySheet(ctx, file); err != nil {
		return err
	}

	if err := file.Save(payload.OutputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	p.logger.InfoContext(ctx, "valuation export completed",
		slog.String("job_id", payload.JobID),
		slog.Int("items_exported", itemCount),
		slog.Duration("duration", time.Since(start)))

	return nil
}

func (p *ValuationExportProcessor) writeItemsSheet(ctx context.Context, file *xlsx.File) (int, error) {
	sheet, err := file.AddSheet("Items")
	if err != nil {
		return 0, fmt.Errorf("add items sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, title := range []string{"SKU", "Name", "Category", "Kind", "Unit", "Valuation", "On Hand", "Average Cost", "Value"} {
		header.AddCell().SetString(title)
	}

	count := 0
	offset := 0
	for {
		result, err := p.items.List(ctx, ports.ItemQuery{
			SortBy:    "sku",
			SortOrder: "asc",
			Limit:     exportPageSize,
			Offset:    offset,
		})
		if err != nil {
			return count, fmt.Errorf("list items: %w", err)
		}

		for _, item := range result.Items {
			p.writeItemRow(sheet, item)
			count++
		}

		offset += len(result.Items)
		if len(result.Items) < exportPageSize || int64(offset) >= result.TotalCount {
			break
		}
	}

	return count, nil
}

func (p *ValuationExportProcessor) writeItemRow(sheet *xlsx.Sheet, item *domain.Item) {
	row := sheet.AddRow()
	row.AddCell().SetString(item.SKU)
	row.AddCell().SetString(item.Name)
	row.AddCell().SetString(item.Category)
	row.AddCell().SetString(string(item.Kind))
	row.AddCell().SetString(item.Unit)
	row.AddCell().SetString(string(item.Valuation))
	row.AddCell().SetString(item.OnHand.String())
	row.AddCell().SetString(item.AverageCost.String())
	row.AddCell().SetString(item.OnHand.Mul(item.AverageCost).String())
}

func (p *ValuationExportProcessor) writeSummarySheet(ctx context.Context, file *xlsx.File) error {
	summary, err := p.items.ValuationSummary(ctx)
	if err != nil {
		return fmt.Errorf("valuation summary: %w", err)
	}

	sheet, err := file.AddSheet("Summary")
	if err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, title := range []string{"Category", "Item Count", "On Hand", "Value"} {
		header.AddCell().SetString(title)
	}

	for _, row := range summary.Categories {
		r := sheet.AddRow()
		r.AddCell().SetString(row.Category)
		r.AddCell().SetInt64(row.ItemCount)
		r.AddCell().SetString(row.OnHand.String())
		r.AddCell().SetString(row.Value.String())
	}

	total := sheet.AddRow()
	total.AddCell().SetString("TOTAL")
	total.AddCell().SetString("")
	total.AddCell().SetString("")
	total.AddCell().SetString(summary.TotalValue.String())

	return nil
}
