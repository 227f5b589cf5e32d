package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/pkg/wc"
)

// ==================== 对账结果 ====================

// PageResult 单页对账结果
type PageResult struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   []string // 被跳过记录的错误描述（含远端 ID）
}

// Processed 本页成功处理的记录数（含无变化跳过）
func (r *PageResult) Processed() int {
	return r.Inserted + r.Updated + r.Skipped
}

// ==================== ReconcileService 对账引擎 ====================

// ReconcileService 对账引擎
// 对每一页远端记录：按 (store, 远端ID) 批量查现存记录，逐条分类
// insert / update / skip，变更按页批量写入。
//
// 策略要点：
//   - 只更新远端所有字段，purchase_price / id / created_at 永不触碰
//   - stock_status 一律按数量本地重算，不信任远端 payload
//   - 无变化的记录完全跳过（幂等：重复对账同一页零写入）
//   - 本页缺席 ≠ 远端删除，本地不删（分页中途可能不一致）
//   - 批量写失败时退化为逐条写，单条失败记日志跳过，本页继续
type ReconcileService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

// NewReconcileService 创建对账引擎
func NewReconcileService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) *ReconcileService {
	return &ReconcileService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// ==================== 商品对账 ====================

// ReconcileProductsPage 对账一页商品
func (s *ReconcileService) ReconcileProductsPage(ctx context.Context, store *model.Store, page []wc.Product) (*PageResult, error) {
	result := &PageResult{}
	if len(page) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(page))
	for _, rec := range page {
		ids = append(ids, rec.ID)
	}

	existing, err := s.productRepo.MapByWCProductIDs(ctx, store.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("查询现存商品失败: %w", err)
	}

	now := time.Now()
	var toWrite []model.Product

	for _, rec := range page {
		desired := buildProduct(store, &rec, now)

		if old, ok := existing[rec.ID]; ok {
			if !productChanged(&old, &desired) {
				result.Skipped++
				continue
			}
			// 保留本地身份与本地所有字段
			desired.ID = old.ID
			desired.CreatedAt = old.CreatedAt
			desired.PurchasePrice = old.PurchasePrice
			result.Updated++
		} else {
			result.Inserted++
		}
		toWrite = append(toWrite, desired)
	}

	if len(toWrite) == 0 {
		return result, nil
	}

	if err := s.productRepo.BatchUpsert(ctx, toWrite); err != nil {
		logrus.Warnf("[Reconcile] 店铺 %d 商品批量写入失败，退化为逐条写: %v", store.ID, err)
		s.applyProductsOneByOne(ctx, toWrite, result)
	}

	return result, nil
}

// applyProductsOneByOne 批量写失败后的逐条兜底
// 重新计数：只有写成功的记录计入 inserted/updated
func (s *ReconcileService) applyProductsOneByOne(ctx context.Context, records []model.Product, result *PageResult) {
	result.Inserted = 0
	result.Updated = 0

	for i := range records {
		rec := records[i]
		isNew := rec.ID == 0
		var err error
		if isNew {
			err = s.productRepo.Create(ctx, &rec)
		} else {
			err = s.productRepo.Update(ctx, &rec)
		}
		if err != nil {
			recErr := &ReconciliationError{Entity: "商品", RemoteID: rec.WCProductID, Err: err}
			logrus.Warnf("[Reconcile] %v", recErr)
			result.Errors = append(result.Errors, recErr.Error())
			continue
		}
		if isNew {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
}

// ==================== 变体对账 ====================

// ReconcileVariationsPage 对账一页变体
// 只在父商品于本次同步中完成 upsert 后调用，避免悬空父引用
func (s *ReconcileService) ReconcileVariationsPage(ctx context.Context, parent *model.Product, page []wc.Variation) (*PageResult, error) {
	result := &PageResult{}
	if len(page) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(page))
	for _, rec := range page {
		ids = append(ids, rec.ID)
	}

	existing, err := s.productRepo.MapByWCVariationIDs(ctx, parent.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("查询现存变体失败: %w", err)
	}

	now := time.Now()
	var toWrite []model.ProductVariation

	for _, rec := range page {
		desired := buildVariation(parent, &rec, now)

		if old, ok := existing[rec.ID]; ok {
			if !variationChanged(&old, &desired) {
				result.Skipped++
				continue
			}
			desired.ID = old.ID
			desired.CreatedAt = old.CreatedAt
			result.Updated++
		} else {
			result.Inserted++
		}
		toWrite = append(toWrite, desired)
	}

	if len(toWrite) == 0 {
		return result, nil
	}

	if err := s.productRepo.BatchUpsertVariations(ctx, toWrite); err != nil {
		logrus.Warnf("[Reconcile] 商品 %d 变体批量写入失败，退化为逐条写: %v", parent.ID, err)
		s.applyVariationsOneByOne(ctx, toWrite, result)
	}

	return result, nil
}

func (s *ReconcileService) applyVariationsOneByOne(ctx context.Context, records []model.ProductVariation, result *PageResult) {
	result.Inserted = 0
	result.Updated = 0

	for i := range records {
		rec := records[i]
		isNew := rec.ID == 0
		var err error
		if isNew {
			err = s.productRepo.CreateVariation(ctx, &rec)
		} else {
			err = s.productRepo.UpdateVariation(ctx, &rec)
		}
		if err != nil {
			recErr := &ReconciliationError{Entity: "变体", RemoteID: rec.WCVariationID, Err: err}
			logrus.Warnf("[Reconcile] %v", recErr)
			result.Errors = append(result.Errors, recErr.Error())
			continue
		}
		if isNew {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
}

// ==================== 订单对账 ====================

// ReconcileOrdersPage 对账一页订单
// 订单状态由远端所有，每次同步直接覆盖（last-write-wins）
func (s *ReconcileService) ReconcileOrdersPage(ctx context.Context, store *model.Store, page []wc.Order) (*PageResult, error) {
	result := &PageResult{}
	if len(page) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(page))
	for _, rec := range page {
		ids = append(ids, rec.ID)
	}

	existing, err := s.orderRepo.MapByWCOrderIDs(ctx, store.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("查询现存订单失败: %w", err)
	}

	now := time.Now()
	var toWrite []model.Order

	for _, rec := range page {
		desired := buildOrder(store, &rec, now)

		if old, ok := existing[rec.ID]; ok {
			if !orderChanged(&old, &desired) {
				result.Skipped++
				continue
			}
			desired.ID = old.ID
			desired.CreatedAt = old.CreatedAt
			result.Updated++
		} else {
			result.Inserted++
		}
		toWrite = append(toWrite, desired)
	}

	if len(toWrite) == 0 {
		return result, nil
	}

	if err := s.orderRepo.BatchUpsert(ctx, toWrite); err != nil {
		logrus.Warnf("[Reconcile] 店铺 %d 订单批量写入失败，退化为逐条写: %v", store.ID, err)
		s.applyOrdersOneByOne(ctx, toWrite, result)
	}

	return result, nil
}

func (s *ReconcileService) applyOrdersOneByOne(ctx context.Context, records []model.Order, result *PageResult) {
	result.Inserted = 0
	result.Updated = 0

	for i := range records {
		rec := records[i]
		isNew := rec.ID == 0
		var err error
		if isNew {
			err = s.orderRepo.Create(ctx, &rec)
		} else {
			err = s.orderRepo.Update(ctx, &rec)
		}
		if err != nil {
			recErr := &ReconciliationError{Entity: "订单", RemoteID: rec.WCOrderID, Err: err}
			logrus.Warnf("[Reconcile] %v", recErr)
			result.Errors = append(result.Errors, recErr.Error())
			continue
		}
		if isNew {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
}

// ==================== 构建与比较 ====================

// buildProduct 远端记录 -> 本地模型（远端所有字段）
// purchase_price 不在此赋值，新插入记录保持 NULL
func buildProduct(store *model.Store, rec *wc.Product, now time.Time) model.Product {
	quantity := 0
	if rec.StockQuantity != nil {
		quantity = *rec.StockQuantity
	}

	categories := make([]string, 0, len(rec.Categories))
	for _, c := range rec.Categories {
		categories = append(categories, c.Name)
	}

	return model.Product{
		StoreID:       store.ID,
		WCProductID:   rec.ID,
		SKU:           rec.SKU,
		Name:          rec.Name,
		Type:          normalizeProductType(rec.Type),
		Categories:    categories,
		Price:         parseDecimal(rec.Price),
		StockQuantity: quantity,
		StockStatus:   model.DeriveStockStatus(quantity),
		IsActive:      rec.Status == "publish",
		SyncedAt:      &now,
	}
}

// productChanged 远端所有字段是否有差异
func productChanged(old, desired *model.Product) bool {
	return old.SKU != desired.SKU ||
		old.Name != desired.Name ||
		old.Type != desired.Type ||
		!old.Price.Equal(desired.Price) ||
		old.StockQuantity != desired.StockQuantity ||
		old.StockStatus != desired.StockStatus ||
		old.IsActive != desired.IsActive ||
		!stringSliceEqual(old.Categories, desired.Categories)
}

// buildVariation 远端变体 -> 本地模型
func buildVariation(parent *model.Product, rec *wc.Variation, now time.Time) model.ProductVariation {
	quantity := 0
	if rec.StockQuantity != nil {
		quantity = *rec.StockQuantity
	}

	attrs := make(datatypes.JSONMap, len(rec.Attributes))
	parts := make([]string, 0, len(rec.Attributes))
	for _, a := range rec.Attributes {
		attrs[a.Name] = a.Option
		parts = append(parts, a.Name+": "+a.Option)
	}
	// map 遍历顺序不稳定，展示文本按规格名排序
	sort.Strings(parts)

	return model.ProductVariation{
		ProductID:     parent.ID,
		StoreID:       parent.StoreID,
		WCVariationID: rec.ID,
		Attributes:    attrs,
		AttributeText: strings.Join(parts, " / "),
		SKU:           rec.SKU,
		Price:         parseDecimal(rec.Price),
		StockQuantity: quantity,
		StockStatus:   model.DeriveStockStatus(quantity),
		SyncedAt:      &now,
	}
}

func variationChanged(old, desired *model.ProductVariation) bool {
	return old.SKU != desired.SKU ||
		!old.Price.Equal(desired.Price) ||
		old.StockQuantity != desired.StockQuantity ||
		old.StockStatus != desired.StockStatus ||
		old.AttributeText != desired.AttributeText
}

// buildOrder 远端订单 -> 本地模型
func buildOrder(store *model.Store, rec *wc.Order, now time.Time) model.Order {
	itemsCount := 0
	subtotal := decimal.Zero
	for _, item := range rec.LineItems {
		itemsCount += item.Quantity
		subtotal = subtotal.Add(parseDecimal(item.Subtotal))
	}

	order := model.Order{
		StoreID:       store.ID,
		WCOrderID:     rec.ID,
		Number:        rec.Number,
		Status:        rec.Status,
		Currency:      rec.Currency,
		Subtotal:      subtotal,
		TaxTotal:      parseDecimal(rec.TotalTax),
		ShippingTotal: parseDecimal(rec.ShippingTotal),
		DiscountTotal: parseDecimal(rec.DiscountTotal),
		Total:         parseDecimal(rec.Total),
		CustomerName:  strings.TrimSpace(rec.Billing.FirstName + " " + rec.Billing.LastName),
		CustomerEmail: rec.Billing.Email,
		PaymentMethod: rec.PaymentMethodTitle,
		ItemsCount:    itemsCount,
		SyncedAt:      &now,
	}

	if t, err := parseWCTime(rec.DateCreated); err == nil {
		order.OrderDate = &t
	}

	if raw, err := json.Marshal(rec); err == nil {
		order.RawData = datatypes.JSON(raw)
	}

	return order
}

func orderChanged(old, desired *model.Order) bool {
	return old.Number != desired.Number ||
		old.Status != desired.Status ||
		old.Currency != desired.Currency ||
		!old.Subtotal.Equal(desired.Subtotal) ||
		!old.TaxTotal.Equal(desired.TaxTotal) ||
		!old.ShippingTotal.Equal(desired.ShippingTotal) ||
		!old.DiscountTotal.Equal(desired.DiscountTotal) ||
		!old.Total.Equal(desired.Total) ||
		old.CustomerName != desired.CustomerName ||
		old.CustomerEmail != desired.CustomerEmail ||
		old.PaymentMethod != desired.PaymentMethod ||
		old.ItemsCount != desired.ItemsCount
}

// ==================== 工具函数 ====================

// normalizeProductType variable 之外的类型（grouped/external 等）一律按 simple 处理
func normalizeProductType(t string) string {
	if t == model.ProductTypeVariable {
		return model.ProductTypeVariable
	}
	return model.ProductTypeSimple
}

// parseDecimal Woo 金额字符串 -> decimal，空串/脏数据按 0 处理
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseWCTime Woo 时间为站点本地时间，无时区后缀
func parseWCTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
