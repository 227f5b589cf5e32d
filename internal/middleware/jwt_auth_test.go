package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTAuth_TokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(7, 3, "alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 7 || claims.CompanyID != 3 || claims.Username != "alice" {
		t.Errorf("claims 不匹配: %+v", claims)
	}
	if claims.Subject != "access" {
		t.Errorf("subject 应为 access，实际 %s", claims.Subject)
	}
}

func TestJWTAuth_Middleware(t *testing.T) {
	r := gin.New()
	r.GET("/protected", JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"company_id": GetCompanyID(c)})
	})

	// 无 token
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("无 token 应返回 401，实际 %d", w.Code)
	}

	// 有效 token
	token, _ := GenerateAccessToken(7, 3, "alice")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("有效 token 应返回 200，实际 %d", w.Code)
	}

	// refresh token 不能当 access 用
	refresh, _ := GenerateRefreshToken(7, 3, "alice")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token 应被拒绝，实际 %d", w.Code)
	}
}
