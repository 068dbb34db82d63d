// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetAPIRateLimitPerMinute() int
}

// RedisConfig provides settings for the shared Redis instance.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq worker and scheduler.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetGeocodeWarmCron() string
	GetGeocodeWarmInterval() time.Duration
}

// GeocodingConfig provides settings for coordinate resolution.
type GeocodingConfig interface {
	GetNominatimURL() string
	GetNominatimUserAgent() string
	GetGeocodeCountry() string
	GetGeocodeTimeout() time.Duration
	GetGeocodeMinInterval() time.Duration
	GetGeocodeNegativeTTL() time.Duration
	GetGeocodeRedisTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	CORSAllowAll          bool
	CORSOrigins           []string
	APIRateLimitPerMinute int
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	GeocodeWarmCron       string
	GeocodeWarmInterval   time.Duration
	NominatimURL          string
	NominatimUserAgent    string
	GeocodeCountry        string
	GeocodeTimeout        time.Duration
	GeocodeMinInterval    time.Duration
	GeocodeNegativeTTL    time.Duration
	GeocodeRedisTTL       time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string           { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool         { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string      { return c.CORSOrigins }
func (c *Config) GetAPIRateLimitPerMinute() int { return c.APIRateLimitPerMinute }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }
func (c *Config) GetGeocodeWarmCron() string             { return c.GeocodeWarmCron }
func (c *Config) GetGeocodeWarmInterval() time.Duration { return c.GeocodeWarmInterval }

// GeocodingConfig implementation
func (c *Config) GetNominatimURL() string              { return c.NominatimURL }
func (c *Config) GetNominatimUserAgent() string        { return c.NominatimUserAgent }
func (c *Config) GetGeocodeCountry() string            { return c.GeocodeCountry }
func (c *Config) GetGeocodeTimeout() time.Duration     { return c.GeocodeTimeout }
func (c *Config) GetGeocodeMinInterval() time.Duration { return c.GeocodeMinInterval }
func (c *Config) GetGeocodeNegativeTTL() time.Duration { return c.GeocodeNegativeTTL }
func (c *Config) GetGeocodeRedisTTL() time.Duration    { return c.GeocodeRedisTTL }

// Load reads configuration from the environment, falling back to a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		APIRateLimitPerMinute: mustInt(getEnv("API_RATE_LIMIT_PER_MIN", "30")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "2")),
		GeocodeWarmCron:       getEnv("GEOCODE_WARM_CRON", "@hourly"),
		GeocodeWarmInterval:   mustDuration(getEnv("GEOCODE_WARM_INTERVAL", "1h")),
		NominatimURL:          getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"),
		NominatimUserAgent:    getEnv("NOMINATIM_USER_AGENT", "LandMatchingPlatform/1.0"),
		GeocodeCountry:        getEnv("GEOCODE_COUNTRY", "Belgium"),
		GeocodeTimeout:        mustDuration(getEnv("GEOCODE_TIMEOUT", "10s")),
		GeocodeMinInterval:    mustDuration(getEnv("GEOCODE_MIN_INTERVAL", "1s")),
		GeocodeNegativeTTL:    mustDuration(getEnv("GEOCODE_NEGATIVE_TTL", "0s")),
		GeocodeRedisTTL:       mustDuration(getEnv("GEOCODE_REDIS_TTL", "720h")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.NominatimUserAgent == "" {
		return nil, fmt.Errorf("NOMINATIM_USER_AGENT must not be empty")
	}
	if cfg.GeocodeTimeout <= 0 {
		return nil, fmt.Errorf("GEOCODE_TIMEOUT must be a positive duration")
	}
	if cfg.GeocodeMinInterval <= 0 {
		return nil, fmt.Errorf("GEOCODE_MIN_INTERVAL must be a positive duration")
	}
	if cfg.GeocodeWarmInterval <= 0 {
		return nil, fmt.Errorf("GEOCODE_WARM_INTERVAL must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
