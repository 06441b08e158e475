package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MinJWTSecretBytes is the minimum secret length accepted for HS256 signing,
// 256 bits as required for the chosen algorithm.
const MinJWTSecretBytes = 32

// DefaultJWTLifetimeMillis is the default token lifetime (24 hours).
const DefaultJWTLifetimeMillis = 86_400_000

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort        string
	Env               string
	MySQLDSN          string
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	JWTSecret         string
	JWTLifetimeMillis int64
	SwaggerHost       string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is honored when present. Load fails when the JWT
// secret is shorter than MinJWTSecretBytes so the process refuses to start
// rather than sign tokens with a weak key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	lifetime, err := getEnvInt64("JWT_LIFETIME_MS", DefaultJWTLifetimeMillis)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		Env:               getEnv("APP_ENV", "development"),
		MySQLDSN:          getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/appointments?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           redisDB,
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-only-secret-change-me-at-least-256-bits-long"),
		JWTLifetimeMillis: lifetime,
		SwaggerHost:       os.Getenv("SWAGGER_HOST"),
	}

	if len(cfg.JWTSecret) < MinJWTSecretBytes {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", MinJWTSecretBytes, len(cfg.JWTSecret))
	}
	if cfg.JWTLifetimeMillis <= 0 {
		return nil, fmt.Errorf("JWT_LIFETIME_MS must be positive, got %d", cfg.JWTLifetimeMillis)
	}

	return cfg, nil
}

// JWTLifetime returns the configured token lifetime as a duration.
func (c *Config) JWTLifetime() time.Duration {
	return time.Duration(c.JWTLifetimeMillis) * time.Millisecond
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt and getEnvInt64 reject malformed values instead of falling back
// to the default, so a typo in a numeric variable refuses startup the same
// way an invalid secret does.
func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return parsed, nil
}

func getEnvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return parsed, nil
}
