package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nobetci/eczane/internal/ratelimit"
	"github.com/nobetci/eczane/internal/validation"
)

const (
	// PharmacySourceFile serves pharmacies from a YAML dataset on disk
	PharmacySourceFile = "file"
	// PharmacySourcePostgres serves pharmacies from PostgreSQL
	PharmacySourcePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	ServerPort       string `validate:"required,numeric"`
	BaseURL          string `validate:"required,url"`
	APIPrefix        string
	RateLimit        ratelimit.Config
	RateLimitSweep   time.Duration
	RateLimitReload  time.Duration
	EnableHSTS       bool
	AllowedOrigins   []string
	ServerDebugMode  bool
	PharmacySource   string
	PharmacyDataPath string
	DatabaseURL      string
	RedisURL         string `validate:"omitempty,url"`
	CacheTTL         time.Duration
	RequestTimeout   time.Duration
	OTELEnabled      bool
	OTELEndpoint     string  `validate:"required_if=OTELEnabled true"`
	OTELSampleRatio  float64 `validate:"gte=0,lte=1"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		BaseURL:          strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		APIPrefix:        getEnv("API_PREFIX", "/api/"),
		RateLimitSweep:   getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", ratelimit.DefaultSweepInterval),
		RateLimitReload:  getEnvDuration("RATE_LIMIT_RELOAD_INTERVAL", 30*time.Second),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		PharmacySource:   strings.ToLower(getEnv("PHARMACY_SOURCE", PharmacySourceFile)),
		PharmacyDataPath: getEnv("PHARMACY_DATA_PATH", "data/pharmacies.yaml"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		CacheTTL:         getEnvDuration("CACHE_TTL", 5*time.Minute),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELSampleRatio:  getEnvFloat("OTEL_SAMPLE_RATIO", 1),
	}

	if err := validation.Validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rl, err := loadRateLimit()
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = rl

	if !strings.HasPrefix(cfg.APIPrefix, "/") {
		return nil, fmt.Errorf("API_PREFIX must start with '/': %q", cfg.APIPrefix)
	}

	switch cfg.PharmacySource {
	case PharmacySourceFile:
		if cfg.PharmacyDataPath == "" {
			return nil, fmt.Errorf("PHARMACY_DATA_PATH is required when PHARMACY_SOURCE=file")
		}
	case PharmacySourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when PHARMACY_SOURCE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown PHARMACY_SOURCE %q (must be 'file' or 'postgres')", cfg.PharmacySource)
	}

	return cfg, nil
}

// loadRateLimit reads RATE_LIMIT (e.g. "100-M") if set, otherwise the window/max pair.
func loadRateLimit() (ratelimit.Config, error) {
	if formatted := getEnv("RATE_LIMIT", ""); formatted != "" {
		rl, err := ratelimit.ParseRate(formatted)
		if err != nil {
			return ratelimit.Config{}, fmt.Errorf("RATE_LIMIT: %w", err)
		}
		return rl, nil
	}

	windowMs := getEnvInt("RATE_LIMIT_WINDOW_MS", int(ratelimit.DefaultWindow/time.Millisecond))
	maxRequests := getEnvInt("RATE_LIMIT_MAX_REQUESTS", ratelimit.DefaultMaxRequests)
	if windowMs <= 0 {
		return ratelimit.Config{}, fmt.Errorf("RATE_LIMIT_WINDOW_MS must be positive, got %d", windowMs)
	}
	if maxRequests <= 0 {
		return ratelimit.Config{}, fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive, got %d", maxRequests)
	}
	return ratelimit.Config{
		Window:      time.Duration(windowMs) * time.Millisecond,
		MaxRequests: maxRequests,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// splitList splits a comma-separated value, trimming and de-duplicating entries.
func splitList(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(raw, ",") {
		s := strings.TrimSpace(p)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
