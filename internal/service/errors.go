package service

import (
	"fmt"
)

// ==================== 同步错误分类 ====================
//
// 网络/远端错误在同步过程中被记录到 store.sync_error（触发请求早已返回），
// 同步接口（连接测试、创建映射）则直接把错误作为调用结果返回。

// ConnectionError 无法连通远端主机（DNS/网络/超时）
// 用户重新触发同步即可重试，系统不做自动重试
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("无法连接远端店铺 %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError 凭证被远端拒绝（401/403）
// 凭证修正前无法恢复，店铺状态转为 error
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("远端鉴权失败 [%d]: %s", e.StatusCode, e.Body)
}

// RemoteError 远端 API 对某次请求返回错误状态
// 中止当前同步步骤，此前已对账的数据保留
type RemoteError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("远端 API 错误 [%d] %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// ReconciliationError 单条记录本地写入失败
// 跳过该记录继续本页，避免一条脏数据卡死整次同步
type ReconciliationError struct {
	Entity   string
	RemoteID int64
	Err      error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s %d 对账写入失败: %v", e.Entity, e.RemoteID, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// MappingConflictError 商品已属于其他映射
// 同步返回给调用方，不产生任何部分状态
type MappingConflictError struct {
	ProductID int64
	MappingID int64
	MasterSKU string
}

func (e *MappingConflictError) Error() string {
	return fmt.Sprintf("商品 %d 已属于映射 %s(%d)", e.ProductID, e.MasterSKU, e.MappingID)
}

// truncateBody 截断远端响应体，避免超长错误信息进日志/数据库
func truncateBody(body string) string {
	const maxLen = 200
	if len(body) > maxLen {
		return body[:maxLen] + "..."
	}
	return body
}
