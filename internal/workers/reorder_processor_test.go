package workers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avolio/stockbook-be/internal/core/domain"
	"github.com/avolio/stockbook-be/internal/workers"
	"github.com/avolio/stockbook-be/test/helpers"
	"github.com/avolio/stockbook-be/test/mocks"
)

func TestReorderProcessor_WarmsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemService(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	low := helpers.CreateTestItem(func(i *domain.Item) {
		i.OnHand = decimal.NewFromInt(2)
		i.ReorderPoint = decimal.NewFromInt(5)
	})
	report := []*domain.Item{low}

	items.EXPECT().ReorderReport(gomock.Any()).Return(report, nil)
	cache.EXPECT().
		SetWithTTL(gomock.Any(), "valuation:reorder", report, 5*time.Minute).
		Return(nil)

	processor := workers.NewReorderProcessor(items, cache, helpers.TestLogger())
	err := processor.ProcessReorderScan(context.Background(), workers.NewReorderScanTask())
	require.NoError(t, err)
}

func TestReorderProcessor_CacheFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemService(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	items.EXPECT().ReorderReport(gomock.Any()).Return([]*domain.Item{}, nil)
	cache.EXPECT().
		SetWithTTL(gomock.Any(), "valuation:reorder", gomock.Any(), gomock.Any()).
		Return(errors.New("redis unavailable"))

	processor := workers.NewReorderProcessor(items, cache, helpers.TestLogger())
	err := processor.ProcessReorderScan(context.Background(), workers.NewReorderScanTask())
	assert.NoError(t, err)
}

func TestReorderProcessor_ReportErrorFailsTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemService(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	items.EXPECT().ReorderReport(gomock.Any()).Return(nil, errors.New("db down"))

	processor := workers.NewReorderProcessor(items, cache, helpers.TestLogger())
	err := processor.ProcessReorderScan(context.Background(), workers.NewReorderScanTask())
	assert.Error(t, err)
}
