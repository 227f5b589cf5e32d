package model

// ==================== ProductMapping 跨店商品映射 ====================

// ProductMapping 将多个店铺中的同一实物商品归并到一个主 SKU 下
// real stock 取 is_source 店铺的库存，total stock 只是展示用的简单求和
type ProductMapping struct {
	BaseModel

	CompanyID   int64  `gorm:"index;uniqueIndex:idx_company_master_sku;not null"`
	MasterSKU   string `gorm:"size:100;uniqueIndex:idx_company_master_sku;not null"`
	DisplayName string `gorm:"size:255"`

	Items []ProductMappingItem `gorm:"foreignKey:MappingID"`
}

func (ProductMapping) TableName() string {
	return "product_mappings"
}

// ==================== ProductMappingItem 映射条目 ====================

// ProductMappingItem 一条 (store, product) 归属
// product_id 全局唯一：一个商品最多属于一个映射
type ProductMappingItem struct {
	BaseModel

	MappingID int64           `gorm:"index;not null"`
	Mapping   *ProductMapping `gorm:"constraint:OnDelete:CASCADE"`

	StoreID   int64    `gorm:"index;not null"`
	ProductID int64    `gorm:"uniqueIndex;not null"`
	Product   *Product `gorm:"foreignKey:ProductID"`

	// 每个映射恰好一条 is_source，对应库存权威店铺
	IsSource bool `gorm:"default:false"`
}

func (ProductMappingItem) TableName() string {
	return "product_mapping_items"
}

// ==================== MappingSuggestionDismissal 建议忽略记录 ====================

// MappingSuggestionDismissal 已被用户忽略的映射建议
// 按归一化 SKU 记录，避免同一建议反复出现
type MappingSuggestionDismissal struct {
	BaseModel

	CompanyID     int64  `gorm:"uniqueIndex:idx_company_dismissed_sku;not null"`
	NormalizedSKU string `gorm:"size:100;uniqueIndex:idx_company_dismissed_sku;not null"`
}

func (MappingSuggestionDismissal) TableName() string {
	return "mapping_suggestion_dismissals"
}
