package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func doPost(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func TestSyncRateLimit_StoreKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/stores/:id/sync", SyncRateLimit(ActionSync, time.Minute), okHandler)

	if w := doPost(r, "/stores/7001/sync"); w.Code != http.StatusOK {
		t.Fatalf("首次请求状态码 = %d, 期望 200", w.Code)
	}
	if w := doPost(r, "/stores/7001/sync"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("冷却期内状态码 = %d, 期望 429", w.Code)
	}
	// 其他店铺不受影响
	if w := doPost(r, "/stores/7002/sync"); w.Code != http.StatusOK {
		t.Fatalf("其他店铺状态码 = %d, 期望 200", w.Code)
	}
}

func TestSyncRateLimit_CompanyKeyWithoutStoreParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 连接测试向导路由没有 :id，限流退回公司维度
	newEngine := func(companyID int64) *gin.Engine {
		r := gin.New()
		r.POST("/stores/test-connection",
			func(c *gin.Context) { c.Set(ContextKeyCompanyID, companyID) },
			SyncRateLimit(ActionConnTest, time.Minute),
			okHandler,
		)
		return r
	}

	r := newEngine(8001)
	if w := doPost(r, "/stores/test-connection"); w.Code != http.StatusOK {
		t.Fatalf("首次请求状态码 = %d, 期望 200", w.Code)
	}
	if w := doPost(r, "/stores/test-connection"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("冷却期内状态码 = %d, 期望 429", w.Code)
	}

	// 其他公司独立计数
	other := newEngine(8002)
	if w := doPost(other, "/stores/test-connection"); w.Code != http.StatusOK {
		t.Fatalf("其他公司状态码 = %d, 期望 200", w.Code)
	}
}

func TestSyncRateLimit_NoDimensionFallsThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 既无店铺也无公司上下文时不限流
	r := gin.New()
	r.POST("/ping", SyncRateLimit(ActionConnTest, time.Minute), okHandler)

	for i := 0; i < 2; i++ {
		if w := doPost(r, "/ping"); w.Code != http.StatusOK {
			t.Fatalf("第 %d 次请求状态码 = %d, 期望 200", i+1, w.Code)
		}
	}
}

func TestSyncRateLimit_InvalidStoreID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/stores/:id/sync", SyncRateLimit(ActionSync, time.Minute), okHandler)

	if w := doPost(r, "/stores/abc/sync"); w.Code != http.StatusBadRequest {
		t.Fatalf("非法店铺 ID 状态码 = %d, 期望 400", w.Code)
	}
}
