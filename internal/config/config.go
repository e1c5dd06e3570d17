package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// Service identity announced to the registry.
	DropletID   string
	DropletName string
	Version     string

	RegistryURL     string
	OrchestratorURL string

	HeartbeatInterval  time.Duration
	StatusPollInterval time.Duration
	CacheTTL           time.Duration
	SessionTTLHours    int
	SessionSweepEvery  time.Duration

	RateLimitPerMinute int
	AllowedOrigins     []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8002),

		DBURL: buildDBURL(),

		DropletID:   getEnv("DROPLET_ID", "dashboard"),
		DropletName: getEnv("DROPLET_NAME", "Dashboard"),
		Version:     getEnv("VERSION", "1.0.0"),

		RegistryURL:     getEnv("REGISTRY_URL", "http://127.0.0.1:8000"),
		OrchestratorURL: getEnv("ORCHESTRATOR_URL", "http://127.0.0.1:8001"),

		HeartbeatInterval:  getEnvDuration("HEARTBEAT_INTERVAL", 60*time.Second),
		StatusPollInterval: getEnvDuration("STATUS_POLL_INTERVAL", 30*time.Second),
		CacheTTL:           getEnvDuration("CACHE_TTL", 25*time.Second),
		SessionTTLHours:    getEnvInt("SESSION_TTL_HOURS", 24),
		SessionSweepEvery:  getEnvDuration("SESSION_SWEEP_INTERVAL", time.Hour),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"*"}),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	// Serving directory data older than the poll interval would mean every
	// poll sees guaranteed-stale entries, so the TTL is clamped.
	if cfg.CacheTTL > cfg.StatusPollInterval {
		cfg.CacheTTL = cfg.StatusPollInterval
	}

	return cfg
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "dashboard")
	pass := getEnv("DB_PASSWORD", "dashboard")
	name := getEnv("DB_NAME", "dashboard")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			log.Printf("config: ignoring %s=%q: %v", key, v, err)
			return fallback
		}

		return num
	}
	return fallback
}

// getEnvDuration accepts either a Go duration string ("30s") or a bare
// number of seconds, which is what the deployment scripts historically set.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	if d, err := time.ParseDuration(v); err == nil {
		return d
	}

	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}

	log.Printf("config: ignoring %s=%q", key, v)
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}
