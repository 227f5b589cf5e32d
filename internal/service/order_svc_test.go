package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/api/dto"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
)

// createTestOrder 造一条订单
func (env *testEnv) createTestOrder(t *testing.T, storeID, wcOrderID int64, status, total string, day int) {
	t.Helper()
	orderDate := time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC)
	order := &model.Order{
		StoreID:   storeID,
		WCOrderID: wcOrderID,
		Number:    "1000",
		Status:    status,
		Currency:  "USD",
		Total:     decimal.RequireFromString(total),
		OrderDate: &orderDate,
	}
	if err := env.orderRepo.Create(context.Background(), order); err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}
}

func TestOrderService_OrderStats(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	ctx := context.Background()

	// 佣金 10%，单均运费 2.00
	err := env.storeRepo.UpdateFields(ctx, store.ID, map[string]interface{}{
		"commission_rate": decimal.RequireFromString("10"),
		"shipping_cost":   decimal.RequireFromString("2.00"),
	})
	require.NoError(t, err)

	env.createTestOrder(t, store.ID, 501, model.OrderStatusCompleted, "100.00", 1)
	env.createTestOrder(t, store.ID, 502, model.OrderStatusProcessing, "50.00", 2)
	env.createTestOrder(t, store.ID, 503, model.OrderStatusRefunded, "30.00", 3)
	env.createTestOrder(t, store.ID, 504, model.OrderStatusCancelled, "20.00", 4)

	svc := NewOrderService(env.orderRepo, env.storeRepo)
	stats, err := svc.OrderStats(ctx, 1, &dto.OrderStatsReq{StoreID: store.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.OrdersCount)
	assert.Equal(t, "150.00", stats.Revenue)
	assert.Equal(t, "30.00", stats.RefundedTotal)
	// 150 - 15(佣金) - 4(两单运费) = 131
	assert.Equal(t, "131.00", stats.NetRevenue)
	assert.Equal(t, int64(1), stats.ByStatus[model.OrderStatusRefunded])
}

func TestOrderService_OrderStats_DateRange(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	ctx := context.Background()

	env.createTestOrder(t, store.ID, 501, model.OrderStatusCompleted, "100.00", 1)
	env.createTestOrder(t, store.ID, 502, model.OrderStatusCompleted, "50.00", 20)

	svc := NewOrderService(env.orderRepo, env.storeRepo)
	stats, err := svc.OrderStats(ctx, 1, &dto.OrderStatsReq{
		StoreID:   store.ID,
		StartDate: "2026-08-10",
		EndDate:   "2026-08-31",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.OrdersCount)
	assert.Equal(t, "50.00", stats.Revenue)
}

func TestOrderService_ListOrders_Filter(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	ctx := context.Background()

	env.createTestOrder(t, store.ID, 501, model.OrderStatusCompleted, "100.00", 1)
	env.createTestOrder(t, store.ID, 502, model.OrderStatusProcessing, "50.00", 2)

	svc := NewOrderService(env.orderRepo, env.storeRepo)
	resp, err := svc.ListOrders(ctx, 1, &dto.OrderListReq{
		Status: model.OrderStatusProcessing,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Total)
	assert.Equal(t, model.OrderStatusProcessing, resp.List[0].Status)

	// 其他公司看不到
	resp, err = svc.ListOrders(ctx, 2, &dto.OrderListReq{})
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
}
