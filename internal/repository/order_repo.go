package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
)

// ==================== 接口定义 ====================

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByWCOrderID(ctx context.Context, storeID, wcOrderID int64) (*model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)

	// 对账批量操作
	MapByWCOrderIDs(ctx context.Context, storeID int64, wcOrderIDs []int64) (map[int64]model.Order, error)
	// BatchUpsert 按 (store_id, wc_order_id) 冲突合并；
	// 状态迁移由远端所有，status 每次同步直接覆盖
	BatchUpsert(ctx context.Context, orders []model.Order) error

	// 统计
	StatsByStatus(ctx context.Context, storeID int64, start, end *time.Time) ([]OrderStatusStat, error)
}

// ==================== 过滤与统计 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	CompanyID int64
	StoreID   int64
	Status    string
	Keyword   string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// OrderStatusStat 按状态聚合的订单统计
type OrderStatusStat struct {
	Status string
	Count  int64
	Total  decimal.Decimal
}

// ==================== 仓储实现 ====================

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByWCOrderID(ctx context.Context, storeID, wcOrderID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND wc_order_id = ?", storeID, wcOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.CompanyID > 0 {
		query = query.
			Joins("JOIN stores ON stores.id = orders.store_id").
			Where("stores.company_id = ?", filter.CompanyID)
	}
	if filter.StoreID > 0 {
		query = query.Where("orders.store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		query = query.Where("orders.status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		query = query.Where("orders.number LIKE ? OR orders.customer_name LIKE ? OR orders.customer_email LIKE ?",
			"%"+filter.Keyword+"%", "%"+filter.Keyword+"%", "%"+filter.Keyword+"%")
	}
	if filter.StartDate != nil {
		query = query.Where("orders.order_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("orders.order_date <= ?", *filter.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("orders.order_date DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) MapByWCOrderIDs(ctx context.Context, storeID int64, wcOrderIDs []int64) (map[int64]model.Order, error) {
	result := make(map[int64]model.Order, len(wcOrderIDs))
	if len(wcOrderIDs) == 0 {
		return result, nil
	}

	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND wc_order_id IN ?", storeID, wcOrderIDs).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		result[o.WCOrderID] = o
	}
	return result, nil
}

func (r *orderRepo) BatchUpsert(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "wc_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"number", "status", "currency",
			"subtotal", "tax_total", "shipping_total", "discount_total", "total",
			"customer_name", "customer_email", "payment_method",
			"items_count", "order_date", "raw_data",
			"synced_at", "updated_at",
		}),
	}).Create(&orders).Error
}

func (r *orderRepo) StatsByStatus(ctx context.Context, storeID int64, start, end *time.Time) ([]OrderStatusStat, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(total), 0) as total").
		Where("store_id = ?", storeID).
		Group("status")

	if start != nil {
		query = query.Where("order_date >= ?", *start)
	}
	if end != nil {
		query = query.Where("order_date <= ?", *end)
	}

	var stats []OrderStatusStat
	err := query.Scan(&stats).Error
	return stats, err
}
