package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/pkg/wc"
)

func testStore(baseURL string) *model.Store {
	return &model.Store{
		BaseURL:        baseURL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	}
}

// ==================== 连接测试与错误分类 ====================

func TestWooClient_TestConnection(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"consumer_key":    r.URL.Query().Get("consumer_key"),
			"consumer_secret": r.URL.Query().Get("consumer_secret"),
			"per_page":        r.URL.Query().Get("per_page"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := NewWooClient(nil)
	// base_url 末尾斜杠应被容忍
	err := client.TestConnection(context.Background(), srv.URL+"/", "ck_test", "cs_test")
	require.NoError(t, err)

	assert.Equal(t, "/wp-json/wc/v3/products", gotPath)
	assert.Equal(t, "ck_test", gotQuery["consumer_key"])
	assert.Equal(t, "cs_test", gotQuery["consumer_secret"])
	assert.Equal(t, "1", gotQuery["per_page"])
}

func TestWooClient_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"woocommerce_rest_cannot_view"}`))
	}))
	defer srv.Close()

	client := NewWooClient(nil)
	err := client.TestConnection(context.Background(), srv.URL, "bad", "bad")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestWooClient_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
	}))
	defer srv.Close()

	client := NewWooClient(nil)
	_, err := client.FetchProductsPage(context.Background(), testStore(srv.URL), 1, 50)
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
}

func TestWooClient_ConnectionError(t *testing.T) {
	client := NewWooClient(nil)
	// 不可达的端口
	err := client.TestConnection(context.Background(), "http://127.0.0.1:1", "ck", "cs")
	require.Error(t, err)

	var connErr *ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

// ==================== 分页拉取 ====================

func TestWooClient_FetchProductsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]wc.Product{
			{ID: 101, Name: "木质相框", SKU: "FRAME-A", Type: "simple", Price: "19.99"},
		})
	}))
	defer srv.Close()

	client := NewWooClient(nil)
	products, err := client.FetchProductsPage(context.Background(), testStore(srv.URL), 2, 50)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(101), products[0].ID)
	assert.Equal(t, "FRAME-A", products[0].SKU)
}

func TestWooClient_FetchOrdersPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		// 订单按 ID 升序，保证分页顺序稳定
		assert.Equal(t, "id", r.URL.Query().Get("orderby"))
		assert.Equal(t, "asc", r.URL.Query().Get("order"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]wc.Order{
			{ID: 501, Number: "1001", Status: "processing", Total: "39.98"},
		})
	}))
	defer srv.Close()

	client := NewWooClient(nil)
	orders, err := client.FetchOrdersPage(context.Background(), testStore(srv.URL), 1, 50)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "1001", orders[0].Number)
}

func TestWooClient_FetchVariationsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/201/variations", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]wc.Variation{
			{ID: 301, SKU: "TEE-RED-M", Price: "15.00",
				Attributes: []wc.VariationAttribute{{Name: "Size", Option: "M"}}},
		})
	}))
	defer srv.Close()

	client := NewWooClient(nil)
	variations, err := client.FetchVariationsPage(context.Background(), testStore(srv.URL), 201, 1, 50)
	require.NoError(t, err)
	require.Len(t, variations, 1)
	assert.Equal(t, "TEE-RED-M", variations[0].SKU)
}

// ==================== 库存推送 ====================

func TestWooClient_UpdateProductStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/101", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(12), body["stock_quantity"])
		assert.Equal(t, true, body["manage_stock"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := NewWooClient(nil)
	err := client.UpdateProductStock(context.Background(), testStore(srv.URL), 101, 12)
	require.NoError(t, err)
}
