package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DatabaseURL string
	Port        string
	LogLevel    string
	LogFormat   string
	CORSOrigin  string

	// 访客令牌有效期
	VisitorTokenExpiry time.Duration

	// TMDB
	TMDBAPIKey    string
	TMDBBaseURL   string
	TMDBLanguage  string
	TMDBCacheTTL  time.Duration
	TMDBRateLimit float64

	// TheSportsDB
	SportsDBAPIKey  string
	SportsDBBaseURL string
	SportsLeagues   []string

	// 海报图片服务
	PosterBaseURL string

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// 定时清理
	CleanupCron          string
	VisitorRetentionDays int
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "cinestream")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	env := getEnv("APP_ENV", "development")
	appSecret := getEnv("APP_SECRET", defaultSecret)
	if env == "production" && appSecret == defaultSecret {
		log.Warn().Msg("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:                  env,
		AppSecret:            appSecret,
		DatabaseURL:          getEnv("DATABASE_URL", dbURL),
		Port:                 getEnv("PORT", "5007"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", ""),
		CORSOrigin:           getEnv("CORS_ORIGIN", ""),
		VisitorTokenExpiry:   time.Duration(cast.ToInt(getEnv("VISITOR_TOKEN_DAYS", "365"))) * 24 * time.Hour,
		TMDBAPIKey:           getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:          strings.TrimRight(getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"), "/"),
		TMDBLanguage:         getEnv("TMDB_LANGUAGE", "en-US"),
		TMDBCacheTTL:         time.Duration(cast.ToInt(getEnv("TMDB_CACHE_MINUTES", "10"))) * time.Minute,
		TMDBRateLimit:        cast.ToFloat64(getEnv("TMDB_RATE_LIMIT", "40")),
		SportsDBAPIKey:       getEnv("SPORTSDB_API_KEY", "3"),
		SportsDBBaseURL:      strings.TrimRight(getEnv("SPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json"), "/"),
		SportsLeagues:        splitList(getEnv("SPORTS_LEAGUES", "4328,4387,4391,4424,4380,4335")),
		PosterBaseURL:        strings.TrimRight(getEnv("POSTER_BASE_URL", "https://image.tmdb.org/t/p"), "/"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:        strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		CleanupCron:          getEnv("CLEANUP_CRON", "0 3 * * *"),
		VisitorRetentionDays: cast.ToInt(getEnv("VISITOR_RETENTION_DAYS", "180")),
	}
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList 解析逗号分隔的列表，忽略空项
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
