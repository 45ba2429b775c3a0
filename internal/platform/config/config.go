package config

import (
	"os"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr            string
	UpstreamBaseURL string

	// CacheTTL bounds how long a resolved verification result stays fresh.
	CacheTTL time.Duration
	// ClientTimeout bounds every outbound profile/application fetch.
	ClientTimeout time.Duration
	// PollInterval drives the background status poller; zero disables it.
	PollInterval time.Duration

	// DataDir holds the durable key-value file (auth token, manual override).
	DataDir string

	// AdminKeyHash is a bcrypt hash guarding override and invalidation
	// endpoints. Empty disables those endpoints.
	AdminKeyHash string

	RedisURL    string
	PostgresDSN string

	RedisPoolSize     int
	RedisMinIdleConns int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisWriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("PLATEWISE_ADDR", ":8080"),
		UpstreamBaseURL:   envOr("PLATEWISE_UPSTREAM_URL", "http://localhost:8000"),
		CacheTTL:          durationOr("PLATEWISE_CACHE_TTL", 5*time.Minute),
		ClientTimeout:     durationOr("PLATEWISE_CLIENT_TIMEOUT", 6*time.Second),
		PollInterval:      durationOr("PLATEWISE_POLL_INTERVAL", 0),
		DataDir:           envOr("PLATEWISE_DATA_DIR", ".platewise"),
		AdminKeyHash:      os.Getenv("PLATEWISE_ADMIN_KEY_HASH"),
		RedisURL:          os.Getenv("PLATEWISE_REDIS_URL"),
		PostgresDSN:       os.Getenv("PLATEWISE_POSTGRES_DSN"),
		RedisPoolSize:     10,
		RedisMinIdleConns: 2,
		RedisDialTimeout:  5 * time.Second,
		RedisReadTimeout:  3 * time.Second,
		RedisWriteTimeout: 3 * time.Second,
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
