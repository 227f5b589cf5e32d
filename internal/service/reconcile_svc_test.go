package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/pkg/wc"
)

// ==================== 测试环境 ====================

// testEnv service 层测试环境
type testEnv struct {
	db          *gorm.DB
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	mappingRepo repository.MappingRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.Store{},
		&model.Product{}, &model.ProductVariation{},
		&model.Order{},
		&model.ProductMapping{}, &model.ProductMappingItem{}, &model.MappingSuggestionDismissal{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return &testEnv{
		db:          db,
		storeRepo:   repository.NewStoreRepository(db),
		productRepo: repository.NewProductRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		mappingRepo: repository.NewMappingRepository(db),
	}
}

// createTestStore 创建一个测试店铺
func (env *testEnv) createTestStore(t *testing.T, companyID int64) *model.Store {
	t.Helper()
	store := &model.Store{
		CompanyID:      companyID,
		Name:           "测试店铺",
		BaseURL:        "https://shop.example.com",
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		Status:         model.StoreStatusActive,
		Currency:       "USD",
	}
	if err := env.storeRepo.Create(context.Background(), store); err != nil {
		t.Fatalf("创建测试店铺失败: %v", err)
	}
	return store
}

func intPtr(n int) *int { return &n }

// ==================== 商品对账 ====================

func TestReconcileProductsPage_Insert(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	svc := NewReconcileService(env.productRepo, env.orderRepo)
	ctx := context.Background()

	page := []wc.Product{
		{ID: 101, Name: "木质相框", SKU: "FRAME-A", Type: "simple", Status: "publish",
			Price: "19.99", StockQuantity: intPtr(5),
			Categories: []wc.Category{{ID: 1, Name: "家居"}}},
		{ID: 102, Name: "陶瓷花瓶", SKU: "VASE-B", Type: "simple", Status: "draft",
			Price: "45.00", StockQuantity: intPtr(0)},
	}

	result, err := svc.ReconcileProductsPage(ctx, store, page)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Skipped)

	p1, err := env.productRepo.GetByWCProductID(ctx, store.ID, 101)
	require.NoError(t, err)
	assert.Equal(t, "木质相框", p1.Name)
	assert.Equal(t, model.StockStatusIn, p1.StockStatus)
	assert.True(t, p1.IsActive)
	// 采购价是本地字段，新插入记录保持 NULL
	assert.False(t, p1.PurchasePrice.Valid)

	p2, err := env.productRepo.GetByWCProductID(ctx, store.ID, 102)
	require.NoError(t, err)
	assert.Equal(t, model.StockStatusOut, p2.StockStatus)
	assert.False(t, p2.IsActive) // draft 不上架
}

func TestReconcileProductsPage_UpdateAndSoftRetention(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	svc := NewReconcileService(env.productRepo, env.orderRepo)
	ctx := context.Background()

	first := []wc.Product{
		{ID: 101, Name: "木质相框", SKU: "FRAME-A", Type: "simple", Status: "publish",
			Price: "19.99", StockQuantity: intPtr(5)},
		{ID: 102, Name: "陶瓷花瓶", SKU: "VASE-B", Type: "simple", Status: "publish",
			Price: "45.00", StockQuantity: intPtr(3)},
	}
	_, err := svc.ReconcileProductsPage(ctx, store, first)
	require.NoError(t, err)

	// 第二次同步：101 涨价清库存，102 本页缺席
	second := []wc.Product{
		{ID: 101, Name: "木质相框", SKU: "FRAME-A", Type: "simple", Status: "publish",
			Price: "24.99", StockQuantity: intPtr(0)},
	}
	result, err := svc.ReconcileProductsPage(ctx, store, second)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	p1, err := env.productRepo.GetByWCProductID(ctx, store.ID, 101)
	require.NoError(t, err)
	assert.True(t, p1.Price.Equal(decimal.RequireFromString("24.99")))
	assert.Equal(t, model.StockStatusOut, p1.StockStatus)

	// 本页缺席 ≠ 远端删除：102 原样保留
	p2, err := env.productRepo.GetByWCProductID(ctx, store.ID, 102)
	require.NoError(t, err)
	assert.Equal(t, "陶瓷花瓶", p2.Name)
	assert.Equal(t, 3, p2.StockQuantity)
}

func TestReconcileProductsPage_Idempotent(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	svc := NewReconcileService(env.productRepo, env.orderRepo)
	ctx := context.Background()

	page := []wc.Product{
		{ID: 101, Name: "木质相框", SKU: "FRAME-A", Type: "simple", Status: "publish",
			Price: "19.99", StockQuantity: intPtr(5)},
	}

	_, err := svc.ReconcileProductsPage(ctx, store, page)
	require.NoError(t, err)

	// 同一页重复对账：零写入
	result, err := svc.ReconcileProductsPage(ctx, store, page)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
}

func TestReconcileProductsPage_PreservesPurchasePrice(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	svc := NewReconcileService(env.productRepo, env.orderRepo)
	ctx := context.Background()

	page := []wc.Product{
		{ID: 101, Name: "木质相框", SKU: "FRAME-A", Type: "simple", Status: "publish",
			Price: "19.99", StockQuantity: intPtr(5)},
	}
	_, err := svc.ReconcileProductsPage(ctx, store, page)
	require.NoError(t, err)

	// 本地录入采购价
	p, err := env.productRepo.GetByWCProductID(ctx, store.ID, 101)
	require.NoError(t, err)
	err = env.productRepo.UpdateFields(ctx, p.ID, map[string]interface{}{
		"purchase_price": decimal.RequireFromString("8.50"),
	})
	require.NoError(t, err)

	// 远端变更触发更新，采购价不能被冲掉
	page[0].Price = "29.99"
	_, err = svc.ReconcileProductsPage(ctx, store, page)
	require.NoError(t, err)

	p, err = env.productRepo.GetByWCProductID(ctx, store.ID, 101)
	require.NoError(t, err)
	require.True(t, p.PurchasePrice.Valid)
	assert.True(t, p.PurchasePrice.Decimal.Equal(decimal.RequireFromString("8.50")))
	assert.True(t, p.Price.Equal(decimal.RequireFromString("29.99")))
}

func TestReconcileProductsPage_DerivesStockStatus(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	svc := NewReconcileService(env.productRepo, env.orderRepo)
	ctx := context.Background()

	// 远端 payload 声称 instock 但数量为 0：以数量为准
	page := []wc.Product{
		{ID: 101, Name: "矛盾商品", SKU: "X", Type: "simple", Status: "publish",
			Price: "10.00", StockQuantity: intPtr(0), StockStatus: "instock"},
		// 未开启库存管理（数量为 null）按 0 处理
		{ID: 102, Name: "无库存管理", SKU: "Y", Type: "simple", Status: "publish",
			Price: "10.00", StockQuantity: nil, StockStatus: "instock"},
	}
	_, err := svc.ReconcileProductsPage(ctx, store, page)
	require.NoError(t, err)

	for _, wcID := range []int64{101, 102} {
		p, err := env.productRepo.GetByWCProductID(ctx, store.ID, wcID)
		require.NoError(t, err)
		assert.Equal(t, model.StockStatusOut, p.StockStatus, "商品 %d", wcID)
	}
}

// ==================== 变体对账 ====================

func TestReconcileVariationsPage(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	svc := NewReconcileService(env.productRepo, env.orderRepo)
	ctx := context.Background()

	_, err := svc.ReconcileProductsPage(ctx, store, []wc.Product{
		{ID: 201, Name: "T恤", SKU: "TEE", Type: "variable", Status: "publish", Price: "15.00"},
	})
	require.NoError(t, err)

	parent, err := env.productRepo.GetByWCProductID(ctx, store.ID, 201)
	require.NoError(t, err)

	page := []wc.Variation{
		{ID: 301, SKU: "TEE-RED-M", Price: "15.00", StockQuantity: intPtr(4),
			Attributes: []wc.VariationAttribute{
				{Name: "Size", Option: "M"}, {Name: "Color", Option: "Red"},
			}},
		{ID: 302, SKU: "TEE-BLUE-L", Price: "16.00", StockQuantity: intPtr(0),
			Attributes: []wc.VariationAttribute{
				{Name: "Size", Option: "L"}, {Name: "Color", Option: "Blue"},
			}},
	}
	result, err := svc.ReconcileVariationsPage(ctx, parent, page)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)

	variations, err := env.productRepo.ListVariations(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, variations, 2)
	// 展示文本按规格名排序，与远端返回顺序无关
	assert.Equal(t, "Color: Red / Size: M", variations[0].AttributeText)
	assert.Equal(t, model.StockStatusIn, variations[0].StockStatus)
	assert.Equal(t, model.StockStatusOut, variations[1].StockStatus)

	// 重复对账零写入
	result, err = svc.ReconcileVariationsPage(ctx, parent, page)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
}

// ==================== 订单对账 ====================

func TestReconcileOrdersPage_StatusOverwrite(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	svc := NewReconcileService(env.productRepo, env.orderRepo)
	ctx := context.Background()

	page := []wc.Order{
		{ID: 501, Number: "1001", Status: model.OrderStatusProcessing, Currency: "USD",
			Total: "39.98", TotalTax: "2.00", ShippingTotal: "5.00",
			DateCreated:        "2026-08-01T10:30:00",
			PaymentMethodTitle: "Stripe",
			Billing:            wc.Billing{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
			LineItems: []wc.LineItem{
				{Quantity: 2, Subtotal: "32.98", Total: "32.98"},
			}},
	}
	result, err := svc.ReconcileOrdersPage(ctx, store, page)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	order, err := env.orderRepo.GetByWCOrderID(ctx, store.ID, 501)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", order.CustomerName)
	assert.Equal(t, 2, order.ItemsCount)
	require.NotNil(t, order.OrderDate)

	// 远端状态迁移直接覆盖本地
	page[0].Status = model.OrderStatusRefunded
	result, err = svc.ReconcileOrdersPage(ctx, store, page)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	order, err = env.orderRepo.GetByWCOrderID(ctx, store.ID, 501)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRefunded, order.Status)
}

// ==================== 批量写失败兜底 ====================

// flakyProductRepo 批量写恒失败、指定远端 ID 逐条写也失败的仓储包装
type flakyProductRepo struct {
	repository.ProductRepository
	failWCProductID int64
}

func (r *flakyProductRepo) BatchUpsert(ctx context.Context, products []model.Product) error {
	return errors.New("批量写入失败")
}

func (r *flakyProductRepo) Create(ctx context.Context, product *model.Product) error {
	if product.WCProductID == r.failWCProductID {
		return errors.New("违反非空约束")
	}
	return r.ProductRepository.Create(ctx, product)
}

func TestReconcileProductsPage_BatchFailureFallsBackPerRecord(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	flaky := &flakyProductRepo{ProductRepository: env.productRepo, failWCProductID: 102}
	svc := NewReconcileService(flaky, env.orderRepo)
	ctx := context.Background()

	// 已存在一条，本页会走 update 路径
	existing := &model.Product{
		StoreID:     store.ID,
		WCProductID: 103,
		SKU:         "VASE-B",
		Name:        "陶瓷花瓶",
		Type:        model.ProductTypeSimple,
		StockStatus: model.StockStatusOut,
	}
	require.NoError(t, env.productRepo.Create(ctx, existing))

	page := []wc.Product{
		{ID: 101, Name: "木质相框", SKU: "FRAME-A", Type: "simple", Status: "publish",
			Price: "19.99", StockQuantity: intPtr(5)},
		{ID: 102, Name: "坏记录", SKU: "BAD-1", Type: "simple", Status: "publish",
			Price: "9.99", StockQuantity: intPtr(1)},
		{ID: 103, Name: "陶瓷花瓶(改名)", SKU: "VASE-B", Type: "simple", Status: "publish",
			Price: "45.00", StockQuantity: intPtr(3)},
	}

	result, err := svc.ReconcileProductsPage(ctx, store, page)
	require.NoError(t, err)

	// 逐条兜底后重新计数：只有写成功的记录计入
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.Contains(result.Errors[0], "102"), "错误描述应含远端 ID: %s", result.Errors[0])

	// 好记录落库
	good, err := env.productRepo.GetByWCProductID(ctx, store.ID, 101)
	require.NoError(t, err)
	assert.Equal(t, "FRAME-A", good.SKU)

	updated, err := env.productRepo.GetByWCProductID(ctx, store.ID, 103)
	require.NoError(t, err)
	assert.Equal(t, "陶瓷花瓶(改名)", updated.Name)
	assert.Equal(t, existing.ID, updated.ID)

	// 坏记录被跳过，不落库
	_, err = env.productRepo.GetByWCProductID(ctx, store.ID, 102)
	assert.Error(t, err)
}

func TestReconcileVariationsPage_BatchFailureFallsBackPerRecord(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createTestStore(t, 1)
	flaky := &flakyVariationRepo{ProductRepository: env.productRepo, failWCVariationID: 302}
	svc := NewReconcileService(flaky, env.orderRepo)
	ctx := context.Background()

	parent := &model.Product{
		StoreID:     store.ID,
		WCProductID: 201,
		SKU:         "TEE",
		Name:        "T恤",
		Type:        model.ProductTypeVariable,
	}
	require.NoError(t, env.productRepo.Create(ctx, parent))

	page := []wc.Variation{
		{ID: 301, SKU: "TEE-RED-M", Price: "15.00", StockQuantity: intPtr(4),
			Attributes: []wc.VariationAttribute{{Name: "Size", Option: "M"}}},
		{ID: 302, SKU: "TEE-BAD", Price: "15.00", StockQuantity: intPtr(1),
			Attributes: []wc.VariationAttribute{{Name: "Size", Option: "L"}}},
	}

	result, err := svc.ReconcileVariationsPage(ctx, parent, page)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.Contains(result.Errors[0], "302"), "错误描述应含远端 ID: %s", result.Errors[0])

	variations, err := env.productRepo.ListVariations(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, variations, 1)
	assert.Equal(t, int64(301), variations[0].WCVariationID)
}

// flakyVariationRepo 变体批量写恒失败的仓储包装
type flakyVariationRepo struct {
	repository.ProductRepository
	failWCVariationID int64
}

func (r *flakyVariationRepo) BatchUpsertVariations(ctx context.Context, variations []model.ProductVariation) error {
	return errors.New("批量写入失败")
}

func (r *flakyVariationRepo) CreateVariation(ctx context.Context, variation *model.ProductVariation) error {
	if variation.WCVariationID == r.failWCVariationID {
		return errors.New("违反非空约束")
	}
	return r.ProductRepository.CreateVariation(ctx, variation)
}
