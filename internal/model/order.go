package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

// WooCommerce 订单状态
// 状态迁移由远端系统所有，本地每次同步直接覆盖
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
	OrderStatusFailed     = "failed"
	OrderStatusOnHold     = "on-hold"
)

// ==================== Order 订单主表 ====================

// Order 远端订单的本地镜像
type Order struct {
	BaseModel

	// --- 归属与身份 ---
	StoreID   int64  `gorm:"index;uniqueIndex:idx_store_wc_order;not null"`
	Store     *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	WCOrderID int64  `gorm:"uniqueIndex:idx_store_wc_order;not null;comment:WooCommerce 侧订单 ID"`
	Number    string `gorm:"size:64;index;comment:展示用订单号"`

	// --- 状态 ---
	Status string `gorm:"size:20;index;default:pending"`

	// --- 金额 ---
	Currency      string          `gorm:"size:10;default:USD"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	ShippingTotal decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	// --- 买家信息 ---
	CustomerName  string `gorm:"size:255"`
	CustomerEmail string `gorm:"size:255"`

	// --- 支付与内容 ---
	PaymentMethod string `gorm:"size:100;comment:支付方式标题"`
	ItemsCount    int    `gorm:"default:0"`

	// --- 时间 ---
	OrderDate *time.Time `gorm:"index;comment:远端下单时间"`

	// --- 原始数据（排障用） ---
	RawData datatypes.JSON `gorm:"type:jsonb"`

	// --- 同步元数据 ---
	SyncedAt *time.Time
}

func (*Order) TableName() string {
	return "orders"
}
