package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 同步限流中间件 ====================

// SyncRateLimit 同步触发限流中间件
// 按店铺（无店铺维度时按公司）+ 动作类型限流；同步互斥本身由数据库门闩保证，
// 这里只拦掉冷却期内的重复点击，减少无谓的抢闩请求
//
// 使用示例:
//
//	router.POST("/api/v1/stores/:id/sync",
//	    middleware.SyncRateLimit(middleware.ActionSync, 0),
//	    syncCtl.StartSync,
//	)
//
// interval 为 0 时使用动作默认值
func SyncRateLimit(action ActionType, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(action)
	}

	return func(c *gin.Context) {
		var key string

		storeIDStr := c.Param("id")
		if storeIDStr == "" {
			storeIDStr = c.Query("store_id")
		}
		switch {
		case storeIDStr != "":
			storeID, err := strconv.ParseInt(storeIDStr, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"code":    400,
					"message": "无效的店铺 ID",
				})
				c.Abort()
				return
			}
			key = StoreActionKey(storeID, action)
		default:
			// 路由没有店铺维度时（连接测试向导）退回公司维度
			companyID := GetCompanyID(c)
			if companyID <= 0 {
				c.Next()
				return
			}
			key = CompanyActionKey(companyID, action)
		}

		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": int(result.RetryAfter.Seconds()),
					"action":      action,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ==================== 辅助函数 ====================

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("操作冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("操作冷却中，请 %d 分钟后重试", minutes)
	}
	return fmt.Sprintf("操作冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
