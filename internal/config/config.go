package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server     ServerConfig
	Sheets     SheetsConfig
	Cloudinary CloudinaryConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Cache      CacheConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SheetsConfig はGoogleスプレッドシート設定
// 読み取りはAPIキー、書き込みはサービスアカウントJSONを使う
type SheetsConfig struct {
	SpreadsheetID   string
	ReadRange       string
	WriteRange      string
	APIKey          string
	CredentialsJSON string // サービスアカウントJSONファイルのパス
}

// CloudinaryConfig はポスター画像ストレージ設定
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RateLimitConfig は投稿レート制限の設定
type RateLimitConfig struct {
	MaxSubmissions int
	Window         time.Duration
	UseRedis       bool // 共有ストアに差し替える場合はtrue
}

// CacheConfig はイベント一覧キャッシュの設定
type CacheConfig struct {
	TTL time.Duration
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("SHEET_ID", ""),
			ReadRange:       getEnv("SHEET_READ_RANGE", "Sheet1!A2:L"),
			WriteRange:      getEnv("SHEET_WRITE_RANGE", "Sheet2!A:M"),
			APIKey:          getEnv("GOOGLE_API_KEY", ""),
			CredentialsJSON: getEnv("GOOGLE_SERVICE_CREDENTIALS", ""),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "fetes"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			MaxSubmissions: getIntEnv("RATE_LIMIT_MAX", 3),
			Window:         getDurationEnv("RATE_LIMIT_WINDOW", time.Hour),
			UseRedis:       getBoolEnv("RATE_LIMIT_USE_REDIS", false),
		},
		Cache: CacheConfig{
			TTL: getDurationEnv("CACHE_TTL", 15*time.Minute),
		},
	}
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
