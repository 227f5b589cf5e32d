package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/pkg/wc"
)

const wcAPIBasePath = "/wp-json/wc/v3"

// ==================== 客户端接口 ====================

// StorefrontClient 远端店铺客户端
// 只做网络 I/O，不触碰本地存储；分页拉取无状态、可重复
type StorefrontClient interface {
	// TestConnection 低成本连通性探测，成功返回 nil
	// 失败返回分类错误（*ConnectionError / *AuthError / *RemoteError）
	TestConnection(ctx context.Context, baseURL, consumerKey, consumerSecret string) error

	FetchProductsPage(ctx context.Context, store *model.Store, page, pageSize int) ([]wc.Product, error)
	FetchVariationsPage(ctx context.Context, store *model.Store, wcProductID int64, page, pageSize int) ([]wc.Variation, error)
	FetchOrdersPage(ctx context.Context, store *model.Store, page, pageSize int) ([]wc.Order, error)

	// UpdateProductStock 将本地库存修改推送回远端
	UpdateProductStock(ctx context.Context, store *model.Store, wcProductID int64, quantity int) error
}

// ==================== 配置 ====================

// WooClientConfig WooCommerce 客户端配置
type WooClientConfig struct {
	Timeout   time.Duration // 单次请求超时
	UserAgent string
	Debug     bool
}

// ==================== 实现 ====================

// WooClient 基于 resty 的 WooCommerce REST v3 客户端
type WooClient struct {
	client *resty.Client
}

var _ StorefrontClient = (*WooClient)(nil)

// NewWooClient 创建 WooCommerce 客户端
func NewWooClient(cfg *WooClientConfig) *WooClient {
	if cfg == nil {
		cfg = &WooClientConfig{}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Woo-Dashboard/1.0"
	}

	client := resty.New().
		SetDebug(cfg.Debug).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &WooClient{client: client}
}

// ==================== 公共方法 ====================

// TestConnection 连通性测试
// 取一条商品即可验证地址可达与凭证有效，不拉取业务数据
func (c *WooClient) TestConnection(ctx context.Context, baseURL, consumerKey, consumerSecret string) error {
	apiURL := buildAPIURL(baseURL, "/products")

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"consumer_key":    consumerKey,
			"consumer_secret": consumerSecret,
			"per_page":        "1",
		}).
		Get(apiURL)
	if err != nil {
		return &ConnectionError{URL: apiURL, Err: err}
	}

	return classifyStatus(resp, apiURL)
}

// FetchProductsPage 拉取一页商品
func (c *WooClient) FetchProductsPage(ctx context.Context, store *model.Store, page, pageSize int) ([]wc.Product, error) {
	var result []wc.Product
	err := c.getPage(ctx, store, "/products", page, pageSize, nil, &result)
	return result, err
}

// FetchVariationsPage 拉取一页变体（按父商品分页）
func (c *WooClient) FetchVariationsPage(ctx context.Context, store *model.Store, wcProductID int64, page, pageSize int) ([]wc.Variation, error) {
	var result []wc.Variation
	path := fmt.Sprintf("/products/%d/variations", wcProductID)
	err := c.getPage(ctx, store, path, page, pageSize, nil, &result)
	return result, err
}

// FetchOrdersPage 拉取一页订单
func (c *WooClient) FetchOrdersPage(ctx context.Context, store *model.Store, page, pageSize int) ([]wc.Order, error) {
	var result []wc.Order
	// 按 ID 升序，保证同一次同步内分页顺序稳定
	err := c.getPage(ctx, store, "/orders", page, pageSize, map[string]string{
		"orderby": "id",
		"order":   "asc",
	}, &result)
	return result, err
}

// UpdateProductStock 推送库存修改到远端
func (c *WooClient) UpdateProductStock(ctx context.Context, store *model.Store, wcProductID int64, quantity int) error {
	apiURL := buildAPIURL(store.BaseURL, fmt.Sprintf("/products/%d", wcProductID))

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(authParams(store)).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"stock_quantity": quantity,
			"manage_stock":   true,
		}).
		Put(apiURL)
	if err != nil {
		return &ConnectionError{URL: apiURL, Err: err}
	}

	return classifyStatus(resp, apiURL)
}

// ==================== 内部方法 ====================

// getPage 发起一次分页 GET 请求并做错误分类
func (c *WooClient) getPage(ctx context.Context, store *model.Store, path string, page, pageSize int, extra map[string]string, out interface{}) error {
	apiURL := buildAPIURL(store.BaseURL, path)

	params := authParams(store)
	params["page"] = strconv.Itoa(page)
	params["per_page"] = strconv.Itoa(pageSize)
	for k, v := range extra {
		params[k] = v
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get(apiURL)
	if err != nil {
		return &ConnectionError{URL: apiURL, Err: err}
	}

	return classifyStatus(resp, apiURL)
}

// classifyStatus 将非 2xx 响应映射到错误分类
func classifyStatus(resp *resty.Response, endpoint string) error {
	code := resp.StatusCode()
	switch {
	case code < 400:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &AuthError{StatusCode: code, Body: truncateBody(resp.String())}
	default:
		return &RemoteError{StatusCode: code, Endpoint: endpoint, Body: truncateBody(resp.String())}
	}
}

// authParams WooCommerce REST 凭证参数
func authParams(store *model.Store) map[string]string {
	return map[string]string{
		"consumer_key":    store.ConsumerKey,
		"consumer_secret": store.ConsumerSecret,
	}
}

// buildAPIURL 拼接 API 地址，容忍 base_url 末尾斜杠
func buildAPIURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + wcAPIBasePath + path
}
