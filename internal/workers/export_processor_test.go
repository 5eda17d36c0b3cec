package workers_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/core/ports"
	"github.com/avolio/stockbook-be/internal/workers"
	"github.com/avolio/stockbook-be/test/helpers"
	"github.com/avolio/stockbook-be/test/mocks"
)

func TestValuationExportProcessor_WritesWorkbook(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemService(ctrl)

	first := helpers.CreateTestItem()
	second := helpers.CreateTestItem(func(i *domain.Item) {
		i.SKU = "0000000043"
		i.Name = "Galvanized Wire"
		i.OnHand = decimal.NewFromInt(100)
		i.AverageCost = decimal.NewFromFloat(0.75)
	})

	items.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return(&ports.ItemListResult{
			Items:      []*domain.Item{first, second},
			TotalCount: 2,
		}, nil)
	items.EXPECT().
		ValuationSummary(gomock.Any()).
		Return(&ports.ValuationSummary{
			GeneratedAt: time.Now(),
			TotalValue:  decimal.NewFromInt(140),
			Categories: []ports.CategoryValuation{
				{
					Category:  "raw-materials",
					ItemCount: 2,
					OnHand:    decimal.NewFromInt(125),
					Value:     decimal.NewFromInt(140),
				},
			},
		}, nil)

	outputPath := filepath.Join(t.TempDir(), "valuation.xlsx")
	processor := workers.NewValuationExportProcessor(items, helpers.TestLogger())

	task, err := workers.NewValuationExportTask("job-1", outputPath)
	require.NoError(t, err)
	require.NoError(t, processor.ProcessValuationExport(context.Background(), task))

	file, err := xlsx.OpenFile(outputPath)
	require.NoError(t, err)

	itemsSheet, ok := file.Sheet["Items"]
	require.True(t, ok, "Items sheet missing")
	assert.Equal(t, 3, itemsSheet.MaxRow, "header plus two item rows")

	row, err := itemsSheet.Row(1)
	require.NoError(t, err)
	assert.Equal(t, first.SKU, row.GetCell(0).Value)

	summarySheet, ok := file.Sheet["Summary"]
	require.True(t, ok, "Summary sheet missing")

	total, err := summarySheet.Row(summarySheet.MaxRow - 1)
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", total.GetCell(0).Value)
	assert.Equal(t, "140", total.GetCell(3).Value)
}

func TestValuationExportProcessor_BadPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemService(ctrl)

	processor := workers.NewValuationExportProcessor(items, helpers.TestLogger())
	task := asynq.NewTask(workers.TypeValuationExport, []byte("{not json"))

	err := processor.ProcessValuationExport(context.Background(), task)
	assert.Error(t, err)
}
