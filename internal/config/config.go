// Package config holds the runtime configuration and the static report
// taxonomy for the Tulum Reporta backend.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// Priority is derived from the reporter's severity answer once, at
	// submission time, and never recomputed.
	PriorityMultiplier = 2

	// Edit links stay valid for this long after a report is submitted.
	EditTokenTTL = 24 * time.Hour

	// Window during which a repeated transport delivery id is ignored.
	DeliveryDedupWindow = 5 * time.Minute
)

// TulumBounds is the service region. Coordinates outside this box are
// rejected both at the conversation step and at the edit endpoint.
var TulumBounds = BoundingBox{
	MinLat: 19.776048,
	MaxLat: 20.519093,
	MinLon: -87.998068,
	MaxLon: -87.299769,
}

// BoundingBox is a latitude/longitude rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point falls inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Config holds application configuration loaded from the environment.
type Config struct {
	Port          string
	PublicBaseURL string
	MapBaseURL    string
	AdminPanelURL string

	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string

	TelegramBotToken string
	AdminChatID      int64
	AdminModToken    string

	EditTokenSecret string

	OpenCageAPIKey string

	S3Bucket        string
	S3PublicBaseURL string
	AWSRegion       string

	UpstreamTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3000"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "https://bot.tulumreporta.com"),
		MapBaseURL:    getEnv("PUBLIC_MAP_BASE_URL", "https://bot.tulumreporta.com/mapa"),
		AdminPanelURL: getEnv("ADMIN_PANEL_URL", ""),

		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=user password=password dbname=tulumreporta port=5432 sslmode=disable"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		AdminChatID:      getEnvAsInt64("ADMIN_CHAT_ID", 0),
		AdminModToken:    getEnv("ADMIN_MOD_TOKEN", ""),

		EditTokenSecret: getEnv("EDIT_TOKEN_SECRET", "CAMBIA_ESTE_SECRET_EN_PROD"),

		OpenCageAPIKey: getEnv("OPENCAGE_API_KEY", ""),

		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
