// Package wc 定义 WooCommerce REST API v3 的线上数据结构
// 仅覆盖同步管线用到的字段，金额字段 Woo 一律以字符串返回
package wc

// Category 商品分类
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product GET /wp-json/wc/v3/products 列表项
type Product struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	SKU           string     `json:"sku"`
	Type          string     `json:"type"`   // simple, variable, grouped, external
	Status        string     `json:"status"` // publish, draft, pending, private
	Price         string     `json:"price"`
	StockQuantity *int       `json:"stock_quantity"` // 未开启库存管理时为 null
	StockStatus   string     `json:"stock_status"`   // 不可信，本地按数量重算
	Categories    []Category `json:"categories"`
}

// VariationAttribute 变体规格项
type VariationAttribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// Variation GET /wp-json/wc/v3/products/{id}/variations 列表项
type Variation struct {
	ID            int64                `json:"id"`
	SKU           string               `json:"sku"`
	Price         string               `json:"price"`
	StockQuantity *int                 `json:"stock_quantity"`
	StockStatus   string               `json:"stock_status"`
	Attributes    []VariationAttribute `json:"attributes"`
}

// Billing 订单账单信息（取买家姓名/邮箱用）
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// LineItem 订单行项目
type LineItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
	Total    string `json:"total"`
}

// Order GET /wp-json/wc/v3/orders 列表项
type Order struct {
	ID                 int64      `json:"id"`
	Number             string     `json:"number"`
	Status             string     `json:"status"`
	Currency           string     `json:"currency"`
	Total              string     `json:"total"`
	TotalTax           string     `json:"total_tax"`
	ShippingTotal      string     `json:"shipping_total"`
	DiscountTotal      string     `json:"discount_total"`
	DateCreated        string     `json:"date_created"` // 站点本地时间，无时区后缀
	PaymentMethodTitle string     `json:"payment_method_title"`
	Billing            Billing    `json:"billing"`
	LineItems          []LineItem `json:"line_items"`
}
