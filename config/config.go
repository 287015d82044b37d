package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Primary backend configuration
	PrimaryBaseURL string
	PrimaryTimeout time.Duration

	// Supabase fallback configuration
	SupabaseURL string
	SupabaseKey string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Cache configuration
	EventListTTL       time.Duration
	EventCacheTTL      time.Duration
	CacheSweepInterval time.Duration

	// Session configuration
	SessionTTL time.Duration

	// Order store configuration
	OrderDBPath string

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Primary backend
		PrimaryBaseURL: getEnv("PRIMARY_BASE_URL", "http://localhost:3000"),
		PrimaryTimeout: getEnvAsDuration("PRIMARY_TIMEOUT", "8s"),

		// Supabase fallback
		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_KEY", ""),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Caches
		EventListTTL:       getEnvAsDuration("EVENT_LIST_TTL", "5m"),
		EventCacheTTL:      getEnvAsDuration("EVENT_CACHE_TTL", "30m"),
		CacheSweepInterval: getEnvAsDuration("CACHE_SWEEP_INTERVAL", "10m"),

		// Sessions
		SessionTTL: getEnvAsDuration("SESSION_TTL", "24h"),

		// Orders
		OrderDBPath: getEnv("ORDER_DB_PATH", "data/orders.db"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
