package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
)

// ==================== 接口定义 ====================

// StoreRepository 店铺仓储接口
type StoreRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	GetForCompany(ctx context.Context, companyID, id int64) (*model.Store, error)
	Update(ctx context.Context, store *model.Store) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter StoreFilter) ([]model.Store, int64, error)
	ListActive(ctx context.Context) ([]model.Store, error)

	// 同步门闩与遥测
	// BeginSync 是单店铺同步互斥的唯一入口：条件更新抢占 is_syncing，
	// RowsAffected=0 表示已有同步在跑
	BeginSync(ctx context.Context, id int64, runID string) (bool, error)
	UpdateSyncFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

// ==================== 过滤条件 ====================

// StoreFilter 店铺过滤条件
type StoreFilter struct {
	CompanyID int64
	Status    string
	Keyword   string
	Page      int
	PageSize  int
}

// ==================== 仓储实现 ====================

type storeRepo struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓储
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).First(&store, id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) GetForCompany(ctx context.Context, companyID, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) Update(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

func (r *storeRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete 断开店铺连接
// 店铺及其商品/变体/订单/映射条目一并删除
func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productIDs []int64
		if err := tx.Model(&model.Product{}).
			Where("store_id = ?", id).
			Pluck("id", &productIDs).Error; err != nil {
			return err
		}

		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).
				Delete(&model.ProductMappingItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("store_id = ?", id).
			Delete(&model.ProductVariation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).
			Delete(&model.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).
			Delete(&model.Order{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Store{}, id).Error
	})
}

func (r *storeRepo) List(ctx context.Context, filter StoreFilter) ([]model.Store, int64, error) {
	var stores []model.Store
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Store{})

	if filter.CompanyID > 0 {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+filter.Keyword+"%")
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
		Order("created_at ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&stores).Error

	return stores, total, err
}

func (r *storeRepo) ListActive(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StoreStatusActive).
		Find(&stores).Error
	return stores, err
}

// BeginSync 抢占同步门闩
// 条件更新保证 check-then-set 原子性，并发触发时只有一方 RowsAffected=1；
// 抢占成功的同时完成进入同步的初始化（清错误、清计数、步骤归位）
func (r *storeRepo) BeginSync(ctx context.Context, id int64, runID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ? AND is_syncing = ?", id, false).
		Updates(map[string]interface{}{
			"is_syncing":            true,
			"sync_step":             string(model.SyncStepConnection),
			"sync_error":            "",
			"sync_products_count":   0,
			"sync_variations_count": 0,
			"sync_orders_count":     0,
			"last_sync_run_id":      runID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *storeRepo) UpdateSyncFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ?", id).
		Updates(fields).Error
}
