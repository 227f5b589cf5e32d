package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// ==================== Config 应用配置 ====================

// Config 应用配置，全部来自环境变量（支持 .env 文件）
type Config struct {
	// HTTP 服务
	ServerPort string

	// 数据库
	DatabaseDSN string

	// JWT
	JWTSecret      string
	AccessTokenTTL time.Duration

	// WooCommerce 客户端
	HTTPTimeout time.Duration
	HTTPDebug   bool

	// 同步
	SyncPageSize    int           // 分页拉取每页条数
	SyncRunTimeout  time.Duration // 单次同步总超时
	SyncCron        string        // 定时全量同步 cron 表达式（含秒位）
	SyncConcurrency int           // 定时任务并发店铺数

	// 日志
	LogLevel string
}

// Load 加载配置
// .env 不存在不视为错误，容器环境直接用环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("[Config] 未加载 .env 文件: %v", err)
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DatabaseDSN: getEnv("DATABASE_DSN",
			"host=localhost user=postgres password=postgres dbname=woo_dashboard port=5432 sslmode=disable TimeZone=UTC"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", 2*time.Hour),

		HTTPTimeout: getDuration("WC_HTTP_TIMEOUT", 20*time.Second),
		HTTPDebug:   getBool("WC_HTTP_DEBUG", false),

		SyncPageSize:    getInt("SYNC_PAGE_SIZE", 50),
		SyncRunTimeout:  getDuration("SYNC_RUN_TIMEOUT", 30*time.Minute),
		SyncCron:        getEnv("SYNC_CRON", "0 */30 * * * *"),
		SyncConcurrency: getInt("SYNC_CONCURRENCY", 3),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ==================== 读取工具 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logrus.Warnf("[Config] %s 取值无效，使用默认值 %d", key, defaultValue)
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		logrus.Warnf("[Config] %s 取值无效，使用默认值 %v", key, defaultValue)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		logrus.Warnf("[Config] %s 取值无效，使用默认值 %s", key, defaultValue)
	}
	return defaultValue
}
