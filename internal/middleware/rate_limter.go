package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== SyncRateLimiter 同步限流器 ====================

// SyncRateLimiter 同步触发限流器
// 防止用户频繁点击手动同步打爆 WooCommerce 站点
type SyncRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &SyncRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *SyncRateLimiter {
	return globalLimiter
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时同时记录本次执行时间
// key: 限流键，如 "store:123:sync"
func (r *SyncRateLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *SyncRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Key 生成工具 ====================

// ActionType 限流动作类型
type ActionType string

const (
	ActionSync      ActionType = "sync"       // 店铺全量同步
	ActionConnTest  ActionType = "conn_test"  // 连接测试
	ActionStockPush ActionType = "stock_push" // 库存推送远端
)

// StoreActionKey 生成店铺级限流 Key
func StoreActionKey(storeID int64, action ActionType) string {
	return fmt.Sprintf("store:%d:%s", storeID, action)
}

// CompanyActionKey 生成公司级限流 Key
// 用于没有店铺维度的动作（如连接测试向导）
func CompanyActionKey(companyID int64, action ActionType) string {
	return fmt.Sprintf("company:%d:%s", companyID, action)
}

// ==================== 默认限流间隔 ====================

// DefaultIntervals 默认限流间隔
var DefaultIntervals = map[ActionType]time.Duration{
	ActionSync:      2 * time.Minute,
	ActionConnTest:  10 * time.Second,
	ActionStockPush: 5 * time.Second,
}

// GetInterval 获取动作的默认间隔
func GetInterval(action ActionType) time.Duration {
	if interval, ok := DefaultIntervals[action]; ok {
		return interval
	}
	return time.Minute
}
