package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetForCompany(ctx context.Context, companyID, id int64) (*model.Product, error)
	GetByWCProductID(ctx context.Context, storeID, wcProductID int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)

	// 对账批量操作
	// MapByWCProductIDs 按 (store, 远端ID) 批量取现存记录，键为远端 ID
	MapByWCProductIDs(ctx context.Context, storeID int64, wcProductIDs []int64) (map[int64]model.Product, error)
	// BatchUpsert 按 (store_id, wc_product_id) 冲突合并；
	// 永不更新 purchase_price / created_at（本地所有字段）
	BatchUpsert(ctx context.Context, products []model.Product) error

	// 变体操作
	CreateVariation(ctx context.Context, variation *model.ProductVariation) error
	UpdateVariation(ctx context.Context, variation *model.ProductVariation) error
	ListVariations(ctx context.Context, productID int64) ([]model.ProductVariation, error)
	MapByWCVariationIDs(ctx context.Context, productID int64, wcVariationIDs []int64) (map[int64]model.ProductVariation, error)
	BatchUpsertVariations(ctx context.Context, variations []model.ProductVariation) error
	SumVariationStock(ctx context.Context, productID int64) (int, error)

	// 映射建议用
	ListUnmapped(ctx context.Context, companyID int64, storeIDs []int64) ([]model.Product, error)
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	CompanyID   int64
	StoreID     int64
	Type        string
	StockStatus string
	Keyword     string
	Page        int
	PageSize    int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variations").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetForCompany(ctx context.Context, companyID, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variations").
		Joins("JOIN stores ON stores.id = products.store_id").
		Where("products.id = ? AND stores.company_id = ?", id, companyID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByWCProductID(ctx context.Context, storeID, wcProductID int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND wc_product_id = ?", storeID, wcProductID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.CompanyID > 0 {
		query = query.
			Joins("JOIN stores ON stores.id = products.store_id").
			Where("stores.company_id = ?", filter.CompanyID)
	}
	if filter.StoreID > 0 {
		query = query.Where("products.store_id = ?", filter.StoreID)
	}
	if filter.Type != "" {
		query = query.Where("products.type = ?", filter.Type)
	}
	if filter.StockStatus != "" {
		query = query.Where("products.stock_status = ?", filter.StockStatus)
	}
	if filter.Keyword != "" {
		query = query.Where("products.name LIKE ? OR products.sku LIKE ?",
			"%"+filter.Keyword+"%", "%"+filter.Keyword+"%")
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
		Order("products.updated_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) MapByWCProductIDs(ctx context.Context, storeID int64, wcProductIDs []int64) (map[int64]model.Product, error) {
	result := make(map[int64]model.Product, len(wcProductIDs))
	if len(wcProductIDs) == 0 {
		return result, nil
	}

	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND wc_product_id IN ?", storeID, wcProductIDs).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		result[p.WCProductID] = p
	}
	return result, nil
}

func (r *productRepo) BatchUpsert(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "wc_product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sku", "name", "type", "categories",
			"price", "stock_quantity", "stock_status",
			"is_active", "synced_at", "updated_at",
		}),
	}).Create(&products).Error
}

func (r *productRepo) CreateVariation(ctx context.Context, variation *model.ProductVariation) error {
	return r.db.WithContext(ctx).Create(variation).Error
}

func (r *productRepo) UpdateVariation(ctx context.Context, variation *model.ProductVariation) error {
	return r.db.WithContext(ctx).Save(variation).Error
}

func (r *productRepo) ListVariations(ctx context.Context, productID int64) ([]model.ProductVariation, error) {
	var variations []model.ProductVariation
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("wc_variation_id ASC").
		Find(&variations).Error
	return variations, err
}

func (r *productRepo) MapByWCVariationIDs(ctx context.Context, productID int64, wcVariationIDs []int64) (map[int64]model.ProductVariation, error) {
	result := make(map[int64]model.ProductVariation, len(wcVariationIDs))
	if len(wcVariationIDs) == 0 {
		return result, nil
	}

	var variations []model.ProductVariation
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND wc_variation_id IN ?", productID, wcVariationIDs).
		Find(&variations).Error
	if err != nil {
		return nil, err
	}

	for _, v := range variations {
		result[v.WCVariationID] = v
	}
	return result, nil
}

func (r *productRepo) BatchUpsertVariations(ctx context.Context, variations []model.ProductVariation) error {
	if len(variations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "wc_variation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sku", "price", "stock_quantity", "stock_status",
			"attributes", "attribute_text", "synced_at", "updated_at",
		}),
	}).Create(&variations).Error
}

// SumVariationStock 汇总变体库存
// 仅展示用，跨店的“真实库存”以映射 source 店铺为准
func (r *productRepo) SumVariationStock(ctx context.Context, productID int64) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.ProductVariation{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(stock_quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

// ListUnmapped 列出公司名下尚未进入任何映射的商品
func (r *productRepo) ListUnmapped(ctx context.Context, companyID int64, storeIDs []int64) ([]model.Product, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN stores ON stores.id = products.store_id").
		Where("stores.company_id = ?", companyID).
		Where("products.id NOT IN (?)",
			r.db.Model(&model.ProductMappingItem{}).Select("product_id"))

	if len(storeIDs) > 0 {
		query = query.Where("products.store_id IN ?", storeIDs)
	}

	var products []model.Product
	err := query.Order("products.sku ASC, products.store_id ASC").Find(&products).Error
	return products, err
}
