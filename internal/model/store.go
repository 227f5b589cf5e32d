package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 店铺状态常量 ====================

// StoreStatus 店铺状态
const (
	StoreStatusActive   = "active"   // 正常
	StoreStatusInactive = "inactive" // 已停用
	StoreStatusError    = "error"    // 凭证失效，需重新配置
)

// ==================== 同步步骤 ====================

// SyncStep 同步步骤（状态机节点）
type SyncStep string

const (
	SyncStepConnection SyncStep = "connection" // 连通性检查
	SyncStepProducts   SyncStep = "products"   // 拉取商品
	SyncStepVariations SyncStep = "variations" // 拉取变体
	SyncStepOrders     SyncStep = "orders"     // 拉取订单
	SyncStepSaving     SyncStep = "saving"     // 落库收尾
)

// SyncStepOrder 步骤执行顺序
// 状态机的唯一合法路径，失败时 sync_step 冻结在出错节点
var SyncStepOrder = []SyncStep{
	SyncStepConnection,
	SyncStepProducts,
	SyncStepVariations,
	SyncStepOrders,
	SyncStepSaving,
}

// NextSyncStep 返回下一个步骤
// ok 为 false 表示当前已是最后一步
func NextSyncStep(step SyncStep) (SyncStep, bool) {
	for i, s := range SyncStepOrder {
		if s == step && i+1 < len(SyncStepOrder) {
			return SyncStepOrder[i+1], true
		}
	}
	return "", false
}

// ==================== Store 店铺 ====================

// Store 已连接的外部 WooCommerce 店铺
type Store struct {
	BaseModel

	// 1. 核心身份
	CompanyID int64  `gorm:"index;not null;comment:所属公司(租户)"`
	Name      string `gorm:"size:100;not null"`
	BaseURL   string `gorm:"size:255;not null;comment:店铺站点地址"`

	// 2. API 凭证 (WooCommerce REST consumer key/secret)
	ConsumerKey    string `gorm:"size:255;not null"`
	ConsumerSecret string `gorm:"size:255;not null"`

	// 3. 状态
	Status string `gorm:"size:20;index;default:'active';comment:active/inactive/error"`

	// 4. 财务配置（利润计算用）
	Currency       string          `gorm:"size:10;default:'USD'"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);default:0;comment:平台佣金率(%)"`
	ShippingCost   decimal.Decimal `gorm:"type:decimal(10,2);default:0;comment:单均运费成本"`

	// 5. 同步遥测
	// is_syncing 是单店铺同步互斥的唯一门闩，只能通过条件更新置位
	IsSyncing           bool       `gorm:"default:false"`
	SyncStep            string     `gorm:"size:20;default:''"`
	SyncProductsCount   int        `gorm:"default:0"`
	SyncVariationsCount int        `gorm:"default:0"`
	SyncOrdersCount     int        `gorm:"default:0"`
	LastSyncAt          *time.Time `gorm:"comment:最后成功同步时间"`
	SyncError           string     `gorm:"type:text"`
	LastSyncRunID       string     `gorm:"size:36;comment:本次/上次同步运行ID"`

	// 6. 关联数据（断开连接时级联删除）
	Products []Product `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Orders   []Order   `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

func (Store) TableName() string {
	return "stores"
}
