package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"trailer_host_v1_202610/internal/i18n"
)

// Config 服务配置
type Config struct {
	ServerPort string

	ListingsBaseURL string // Listings REST API
	PlacesBaseURL   string // 自动补全 / 地点详情
	HTTPTimeout     time.Duration
	HTTPDebug       bool

	DatabaseDSN string // 为空时不记录提交日志
	DBDebug     bool

	JWTSecret string
	JWTTTL    time.Duration

	EditorIdleTTL           time.Duration
	SubmissionRetentionDays int
	DefaultLocale           language.Tag
	MaxImageBytes           int64 // 单张上传图片上限
}

// Load 读取 .env（可选）与环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] 无法加载 .env: %v", err)
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		ListingsBaseURL: getEnv("LISTINGS_BASE_URL", "http://localhost:5000/api"),
		PlacesBaseURL:   getEnv("PLACES_BASE_URL", "http://localhost:5000/api/places"),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPDebug:       getBool("HTTP_DEBUG", false),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		DBDebug:     getBool("DB_DEBUG", false),

		JWTSecret: getEnv("JWT_SECRET", "trailer-host-secret-key-change-in-production"),
		JWTTTL:    getDuration("JWT_TTL", 2*time.Hour),

		EditorIdleTTL:           getDuration("EDITOR_IDLE_TTL", 2*time.Hour),
		SubmissionRetentionDays: getInt("SUBMISSION_RETENTION_DAYS", 90),
		DefaultLocale:           i18n.ParseLocale(getEnv("DEFAULT_LOCALE", "fr")),
		MaxImageBytes:           int64(getInt("MAX_IMAGE_MB", 10)) << 20,
	}
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("[Config] %s=%q 无法解析，使用默认值 %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
