package dto

import "time"

// ==================== 连接测试 ====================

// TestConnectionReq 连接测试请求（创建店铺向导第一步）
type TestConnectionReq struct {
	BaseURL        string `json:"base_url" binding:"required,url"`
	ConsumerKey    string `json:"consumer_key" binding:"required"`
	ConsumerSecret string `json:"consumer_secret" binding:"required"`
}

// TestConnectionResp 连接测试结果
// 失败原因作为结果返回而非抛错，便于向导页面直接展示
type TestConnectionResp struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ==================== 店铺 CRUD ====================

// CreateStoreReq 创建店铺请求
type CreateStoreReq struct {
	Name           string `json:"name" binding:"required,max=100"`
	BaseURL        string `json:"base_url" binding:"required,url"`
	ConsumerKey    string `json:"consumer_key" binding:"required"`
	ConsumerSecret string `json:"consumer_secret" binding:"required"`
	Currency       string `json:"currency"`
	CommissionRate string `json:"commission_rate"`
	ShippingCost   string `json:"shipping_cost"`
}

// UpdateStoreReq 更新店铺请求（nil 字段不修改）
type UpdateStoreReq struct {
	Name           *string `json:"name"`
	ConsumerKey    *string `json:"consumer_key"`
	ConsumerSecret *string `json:"consumer_secret"`
	Status         *string `json:"status" binding:"omitempty,oneof=active inactive"`
	Currency       *string `json:"currency"`
	CommissionRate *string `json:"commission_rate"`
	ShippingCost   *string `json:"shipping_cost"`
}

// StoreListReq 店铺列表查询
type StoreListReq struct {
	Status   string `form:"status"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// StoreVO 店铺视图对象
type StoreVO struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	BaseURL        string     `json:"base_url"`
	Status         string     `json:"status"`
	Currency       string     `json:"currency"`
	CommissionRate string     `json:"commission_rate"`
	ShippingCost   string     `json:"shipping_cost"`
	IsSyncing      bool       `json:"is_syncing"`
	LastSyncAt     *time.Time `json:"last_sync_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// StoreListResp 店铺列表响应
type StoreListResp struct {
	Total int64     `json:"total"`
	List  []StoreVO `json:"list"`
}

// ==================== 同步触发与进度 ====================

// StartSyncResp 同步触发响应
// started=false 表示该店铺已有同步在跑，本次请求被拒绝（不排队、不合并）
type StartSyncResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Started bool   `json:"started"`
}

// SyncStatusResp 同步进度快照（前端轮询用）
// 允许落后一个轮询间隔，仅作展示，不承载正确性语义
type SyncStatusResp struct {
	IsSyncing           bool       `json:"is_syncing"`
	SyncStep            *string    `json:"sync_step"`
	SyncProductsCount   int        `json:"sync_products_count"`
	SyncVariationsCount int        `json:"sync_variations_count"`
	SyncOrdersCount     int        `json:"sync_orders_count"`
	LastSyncAt          *time.Time `json:"last_sync_at"`
	SyncError           *string    `json:"sync_error"`
}
