// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Scrape
	BaseURL            string
	UserAgent          string
	MaxPages           int
	AccountConcurrency int
	ScrapeInterval     time.Duration
	AccountsFile       string
	SkipUnchanged      bool

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64
	ScrapeRPS    float64

	// Enrich
	EnrichYears         bool
	EnrichMaxConcurrent int

	// Ops
	OpsPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.BaseURL = getEnvString("SCRAPE_BASE_URL", "https://letterboxd.com")
	cfg.UserAgent = getEnvString("USER_AGENT", "Mozilla/5.0 (compatible; cinepool/1.0)")
	cfg.MaxPages = getEnvInt("MAX_PAGES", 50)
	cfg.AccountConcurrency = getEnvInt("ACCOUNT_CONCURRENCY", 1)
	cfg.ScrapeInterval = getEnvDuration("SCRAPE_INTERVAL", 24*time.Hour)
	cfg.AccountsFile = getEnvString("ACCOUNTS_FILE", "")
	cfg.SkipUnchanged = getEnvBool("SKIP_UNCHANGED", false)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.ScrapeRPS = getEnvFloat64("SCRAPE_RPS", 4.0)
	cfg.EnrichYears = getEnvBool("ENRICH_YEARS", false)
	cfg.EnrichMaxConcurrent = getEnvInt("ENRICH_MAX_CONCURRENT", 20)
	cfg.OpsPort = getEnvString("OPS_PORT", "9090")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat64(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
