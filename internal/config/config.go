package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	Env   string
	Port  int
	DBURL string

	// Store selects the persistence backend: "postgres" or "memory".
	Store string

	JWTSecret   string
	JWTTTLHours int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	LoginRateLimit     int

	SnowflakeNode int64

	WorkerConcurrency int
	WorkerPollMS      int
	WorkerMetricsPort int

	// NotifierDelayMS and NotifierFailAll simulate a slow or failing
	// notification provider in local runs.
	NotifierDelayMS int
	NotifierFailAll bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "err", err)
	}

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: getEnv("DATABASE_URL", buildDBURL()),
		Store: getEnv("STORE", "postgres"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		LoginRateLimit:     getEnvInt("LOGIN_RATE_LIMIT", 10),

		SnowflakeNode: int64(getEnvInt("SNOWFLAKE_NODE", 1)),

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerPollMS:      getEnvInt("WORKER_POLL_MS", 250),
		WorkerMetricsPort: getEnvInt("WORKER_METRICS_PORT", 9091),

		NotifierDelayMS: getEnvInt("NOTIFIER_DELAY_MS", 0),
		NotifierFailAll: strings.EqualFold(os.Getenv("NOTIFIER_FAIL_ALL"), "true"),
	}
}

// Validate rejects configurations the API must not start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" && c.Env != "test" {
		return ErrMissingJWTSecret
	}
	return nil
}

func (c Config) JWTTTL() time.Duration {
	if c.JWTTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "taskhub")
	pass := getEnv("DB_PASSWORD", "taskhub")
	name := getEnv("DB_NAME", "taskhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a unit of work. A nil parent means context.Background.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
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
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
