package dto

// ==================== 映射 CRUD ====================

// CreateMappingReq 创建跨店映射
// source_product_id 必须包含在 product_ids 中，对应库存权威店铺
type CreateMappingReq struct {
	MasterSKU       string  `json:"master_sku" binding:"required,max=100"`
	DisplayName     string  `json:"display_name"`
	ProductIDs      []int64 `json:"product_ids" binding:"required,min=1"`
	SourceProductID int64   `json:"source_product_id" binding:"required"`
}

// MappingItemVO 映射条目视图对象
type MappingItemVO struct {
	ID            int64  `json:"id"`
	StoreID       int64  `json:"store_id"`
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	SKU           string `json:"sku"`
	StockQuantity int    `json:"stock_quantity"`
	IsSource      bool   `json:"is_source"`
}

// MappingVO 映射视图对象
// real_stock 取 source 店铺库存；total_stock 为全部条目求和，
// 同一实物在多店上架时会重复计数，仅作参考展示
type MappingVO struct {
	ID          int64           `json:"id"`
	MasterSKU   string          `json:"master_sku"`
	DisplayName string          `json:"display_name"`
	RealStock   int             `json:"real_stock"`
	TotalStock  int             `json:"total_stock"`
	Items       []MappingItemVO `json:"items"`
}

// MappingListResp 映射列表响应
type MappingListResp struct {
	List []MappingVO `json:"list"`
}

// ==================== 映射建议 ====================

// SuggestMappingsReq 映射建议查询
type SuggestMappingsReq struct {
	StoreIDs []int64 `form:"store_ids"`
}

// SuggestionProductVO 建议中的候选商品
type SuggestionProductVO struct {
	ProductID int64  `json:"product_id"`
	StoreID   int64  `json:"store_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
}

// SuggestionVO 一条映射建议（同 SKU 出现在多个店铺）
type SuggestionVO struct {
	SKU      string                `json:"sku"`
	Products []SuggestionProductVO `json:"products"`
}

// DismissSuggestionReq 忽略一条建议
type DismissSuggestionReq struct {
	SKU string `json:"sku" binding:"required"`
}
