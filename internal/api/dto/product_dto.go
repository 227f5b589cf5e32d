package dto

import "time"

// ==================== 商品查询 ====================

// ProductListReq 商品列表查询
type ProductListReq struct {
	StoreID     int64  `form:"store_id"`
	Type        string `form:"type" binding:"omitempty,oneof=simple variable"`
	StockStatus string `form:"stock_status" binding:"omitempty,oneof=instock outofstock"`
	Keyword     string `form:"keyword"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// ProductVO 商品视图对象
type ProductVO struct {
	ID            int64      `json:"id"`
	StoreID       int64      `json:"store_id"`
	WCProductID   int64      `json:"wc_product_id"`
	SKU           string     `json:"sku"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Categories    []string   `json:"categories"`
	Price         string     `json:"price"`
	PurchasePrice *string    `json:"purchase_price"`
	StockQuantity int        `json:"stock_quantity"`
	StockStatus   string     `json:"stock_status"`
	IsActive      bool       `json:"is_active"`
	SyncedAt      *time.Time `json:"synced_at"`
}

// ProductListResp 商品列表响应
type ProductListResp struct {
	Total int64       `json:"total"`
	List  []ProductVO `json:"list"`
}

// VariationVO 变体视图对象
type VariationVO struct {
	ID            int64  `json:"id"`
	WCVariationID int64  `json:"wc_variation_id"`
	SKU           string `json:"sku"`
	AttributeText string `json:"attribute_text"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
	StockStatus   string `json:"stock_status"`
}

// ProductDetailResp 商品详情（variable 商品附带变体与变体库存合计）
type ProductDetailResp struct {
	Product             ProductVO     `json:"product"`
	Variations          []VariationVO `json:"variations"`
	TotalVariationStock int           `json:"total_variation_stock"`
}

// ==================== 本地编辑 ====================

// UpdateStockReq 本地库存修改
// push_remote=true 时同时推送到远端店铺
type UpdateStockReq struct {
	StockQuantity *int `json:"stock_quantity" binding:"required,min=0"`
	PushRemote    bool `json:"push_remote"`
}

// UpdatePurchasePriceReq 采购价录入（仅本地字段，同步永不覆盖）
type UpdatePurchasePriceReq struct {
	PurchasePrice string `json:"purchase_price" binding:"required"`
}
