package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL         string
	Port                string
	Env                 string
	Location            *time.Location
	AllowedOrigins      []string
	ComplianceSweep     time.Duration
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	ShutdownGracePeriod time.Duration
}

// Load reads a .env file if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Port:                GetEnv("PORT", "8080"),
		Env:                 GetEnv("APP_ENV", "production"),
		AllowedOrigins:      splitList(GetEnv("CORS_ALLOWED_ORIGINS", "*")),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		ShutdownGracePeriod: 10 * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	loc, err := time.LoadLocation(GetEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.ComplianceSweep, err = time.ParseDuration(GetEnv("COMPLIANCE_SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMPLIANCE_SWEEP_INTERVAL: %w", err)
	}
	if cfg.ComplianceSweep < 0 {
		return nil, fmt.Errorf("COMPLIANCE_SWEEP_INTERVAL must not be negative")
	}

	cfg.RedisDB, err = strconv.Atoi(GetEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return cfg, nil
}

// Now returns the current time in the configured location.
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location)
}

// GetEnv gets an environment variable or returns a default value if not present
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
