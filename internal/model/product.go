package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ==================== 商品常量 ====================

// ProductType 商品类型
const (
	ProductTypeSimple   = "simple"   // 单规格
	ProductTypeVariable = "variable" // 多变体
)

// StockStatus 库存状态
const (
	StockStatusIn  = "instock"
	StockStatusOut = "outofstock"
)

// DeriveStockStatus 由库存数量推导库存状态
// 远端 payload 的 stock_status 可能与数量矛盾，本地一律以数量为准
func DeriveStockStatus(quantity int) string {
	if quantity > 0 {
		return StockStatusIn
	}
	return StockStatusOut
}

// ==================== Product 商品 ====================

// Product 远端商品目录的本地镜像
type Product struct {
	BaseModel

	// --- 归属与身份 ---
	StoreID     int64  `gorm:"index;uniqueIndex:idx_store_wc_product;not null"`
	Store       *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	WCProductID int64  `gorm:"uniqueIndex:idx_store_wc_product;not null;comment:WooCommerce 侧商品 ID"`

	// --- 基本信息（远端所有） ---
	SKU        string         `gorm:"size:100;index"`
	Name       string         `gorm:"size:255"`
	Type       string         `gorm:"size:20;default:'simple';comment:simple/variable"`
	Categories pq.StringArray `gorm:"type:text[]"`

	// --- 商业字段 ---
	// price/stock 远端所有；purchase_price 仅本地录入，同步永不触碰
	Price         decimal.Decimal     `gorm:"type:decimal(12,2);default:0"`
	PurchasePrice decimal.NullDecimal `gorm:"type:decimal(12,2);comment:本地录入采购价"`
	StockQuantity int                 `gorm:"default:0"`
	StockStatus   string              `gorm:"size:20;default:'outofstock'"`
	IsActive      bool                `gorm:"default:true"`

	// --- 同步元数据 ---
	SyncedAt *time.Time `gorm:"comment:最后一次成功对账时间"`

	// --- 关联 ---
	Variations []ProductVariation `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

// ==================== ProductVariation 商品变体 ====================

// ProductVariation variable 商品的子变体
type ProductVariation struct {
	BaseModel

	// --- 关联 ---
	ProductID int64    `gorm:"index;uniqueIndex:idx_product_wc_variation;not null"`
	Product   *Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	StoreID   int64    `gorm:"index"`

	// --- WooCommerce 身份标识 ---
	WCVariationID int64 `gorm:"uniqueIndex:idx_product_wc_variation;not null"`

	// --- 规格组合 ---
	Attributes    datatypes.JSONMap `gorm:"type:jsonb"` // {"Color":"Red"}
	AttributeText string            `gorm:"size:255"`   // "Color: Red / Size: M"

	// --- 销售数据 ---
	SKU           string          `gorm:"size:100;index"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	StockQuantity int             `gorm:"default:0"`
	StockStatus   string          `gorm:"size:20;default:'outofstock'"`

	// --- 同步元数据 ---
	SyncedAt *time.Time
}

func (ProductVariation) TableName() string {
	return "product_variations"
}
