// Package config loads all process configuration from the environment once
// at startup. Nothing else in the codebase reads env vars directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret []byte
	TokenTTL  time.Duration

	ResponderURL     string
	ResponderTimeout time.Duration

	AllowedOrigins  string
	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimitBytes  int

	BcryptCost int
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Load reads .env (if present) and the environment. JWT_SECRET and
// RESPONDER_URL have no usable defaults and must be set.
func Load() (*Config, error) {
	// Missing .env is fine in containers where env vars come from the runtime.
	_ = godotenv.Load()

	cfg := &Config{
		Port: envStr("PORT", "8080"),

		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envStr("DB_PORT", "5432"),
		DBUser:     envStr("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envStr("DB_NAME", "campusgpt"),
		DBSSLMode:  envStr("DB_SSLMODE", "disable"),

		TokenTTL: envDuration("TOKEN_TTL", 24*time.Hour),

		ResponderURL:     os.Getenv("RESPONDER_URL"),
		ResponderTimeout: envDuration("RESPONDER_TIMEOUT", 15*time.Second),

		AllowedOrigins:  envStr("ALLOWED_ORIGINS", "*"),
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow: time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		BcryptCost: envInt("BCRYPT_COST", 12),
	}

	// Fiber default BodyLimit is 4 MiB if unset; allow overriding with
	// BODY_LIMIT_BYTES or BODY_LIMIT_MB.
	cfg.BodyLimitBytes = envInt("BODY_LIMIT_BYTES", 0)
	if cfg.BodyLimitBytes <= 0 {
		cfg.BodyLimitBytes = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET_KEY")
	}
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not configured (set JWT_SECRET or JWT_SECRET_KEY)")
	}
	cfg.JWTSecret = []byte(secret)

	if cfg.ResponderURL == "" {
		return nil, fmt.Errorf("RESPONDER_URL not configured")
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}
