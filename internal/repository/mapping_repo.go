package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
)

// ==================== 接口定义 ====================

// MappingRepository 跨店商品映射仓储接口
type MappingRepository interface {
	Create(ctx context.Context, mapping *model.ProductMapping) error
	GetByID(ctx context.Context, companyID, id int64) (*model.ProductMapping, error)
	ListByCompany(ctx context.Context, companyID int64) ([]model.ProductMapping, error)
	Delete(ctx context.Context, companyID, id int64) error

	// 冲突检查：返回已属于某映射的条目
	FindItemsByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductMappingItem, error)

	// 建议忽略记录
	CreateDismissal(ctx context.Context, dismissal *model.MappingSuggestionDismissal) error
	ListDismissedSKUs(ctx context.Context, companyID int64) ([]string, error)

	// 事务
	WithTx(tx *gorm.DB) MappingRepository
	Transaction(ctx context.Context, fn func(txRepo MappingRepository) error) error
}

// ==================== 仓储实现 ====================

type mappingRepo struct {
	db *gorm.DB
}

// NewMappingRepository 创建映射仓储
func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepo{db: db}
}

func (r *mappingRepo) Create(ctx context.Context, mapping *model.ProductMapping) error {
	return r.db.WithContext(ctx).Create(mapping).Error
}

func (r *mappingRepo) GetByID(ctx context.Context, companyID, id int64) (*model.ProductMapping, error) {
	var mapping model.ProductMapping
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *mappingRepo) ListByCompany(ctx context.Context, companyID int64) ([]model.ProductMapping, error) {
	var mappings []model.ProductMapping
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("company_id = ?", companyID).
		Order("master_sku ASC").
		Find(&mappings).Error
	return mappings, err
}

func (r *mappingRepo) Delete(ctx context.Context, companyID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND company_id = ?", id, companyID).
			Delete(&model.ProductMapping{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("mapping_id = ?", id).
			Delete(&model.ProductMappingItem{}).Error
	})
}

func (r *mappingRepo) FindItemsByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductMappingItem, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var items []model.ProductMappingItem
	err := r.db.WithContext(ctx).
		Preload("Mapping").
		Where("product_id IN ?", productIDs).
		Find(&items).Error
	return items, err
}

// CreateDismissal 幂等：同一 SKU 重复忽略视为成功
func (r *mappingRepo) CreateDismissal(ctx context.Context, dismissal *model.MappingSuggestionDismissal) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "normalized_sku"}},
		DoNothing: true,
	}).Create(dismissal).Error
}

func (r *mappingRepo) ListDismissedSKUs(ctx context.Context, companyID int64) ([]string, error) {
	var skus []string
	err := r.db.WithContext(ctx).
		Model(&model.MappingSuggestionDismissal{}).
		Where("company_id = ?", companyID).
		Pluck("normalized_sku", &skus).Error
	return skus, err
}

func (r *mappingRepo) WithTx(tx *gorm.DB) MappingRepository {
	return &mappingRepo{db: tx}
}

func (r *mappingRepo) Transaction(ctx context.Context, fn func(txRepo MappingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
