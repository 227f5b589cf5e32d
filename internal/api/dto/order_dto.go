package dto

import "time"

// ==================== 订单查询 ====================

// OrderListReq 订单列表查询
type OrderListReq struct {
	StoreID   int64  `form:"store_id"`
	Status    string `form:"status"`
	Keyword   string `form:"keyword"`
	StartDate string `form:"start_date"` // 2006-01-02
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// OrderVO 订单视图对象
type OrderVO struct {
	ID            int64      `json:"id"`
	StoreID       int64      `json:"store_id"`
	WCOrderID     int64      `json:"wc_order_id"`
	Number        string     `json:"number"`
	Status        string     `json:"status"`
	Currency      string     `json:"currency"`
	Subtotal      string     `json:"subtotal"`
	TaxTotal      string     `json:"tax_total"`
	ShippingTotal string     `json:"shipping_total"`
	DiscountTotal string     `json:"discount_total"`
	Total         string     `json:"total"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	PaymentMethod string     `json:"payment_method"`
	ItemsCount    int        `json:"items_count"`
	OrderDate     *time.Time `json:"order_date"`
}

// OrderListResp 订单列表响应
type OrderListResp struct {
	Total int64     `json:"total"`
	List  []OrderVO `json:"list"`
}

// ==================== 订单统计 ====================

// OrderStatsReq 订单统计查询
type OrderStatsReq struct {
	StoreID   int64  `form:"store_id" binding:"required"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// OrderStatsResp 订单统计响应
// net_revenue = 完成/处理中订单收入 - 平台佣金 - 运费成本（按店铺财务配置估算）
type OrderStatsResp struct {
	Currency      string           `json:"currency"`
	OrdersCount   int64            `json:"orders_count"`
	Revenue       string           `json:"revenue"`
	RefundedTotal string           `json:"refunded_total"`
	NetRevenue    string           `json:"net_revenue"`
	ByStatus      map[string]int64 `json:"by_status"`
}
