package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSupabase = "supabase"
)

type Config struct {
	// Storage
	StoreDriver      string
	DatabaseURL      string
	RunMigrations    bool
	DegradedFallback bool

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseJWTSecret     string
	SupabaseStorageBucket string

	// Locking
	RedisAddress  string
	RedisPassword string

	// Business rules
	UnitPrice         decimal.Decimal
	MaxBarcodeBatch   int
	StagingSessionTTL time.Duration

	// Server
	Port               string
	Environment        string
	LogLevel           string
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	unitPrice, err := decimal.NewFromString(getEnv("UNIT_PRICE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: UNIT_PRICE: %w", err)
	}
	maxBatch, err := strconv.Atoi(getEnv("MAX_BARCODE_BATCH", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: MAX_BARCODE_BATCH: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("STAGING_SESSION_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: STAGING_SESSION_TTL: %w", err)
	}

	cfg := &Config{
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RunMigrations:    getBool("RUN_MIGRATIONS", true),
		DegradedFallback: getBool("DEGRADED_FALLBACK", false),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "attachments"),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		UnitPrice:         unitPrice,
		MaxBarcodeBatch:   maxBatch,
		StagingSessionTTL: ttl,

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the supabase store")
		}
		if c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required for the supabase store")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, postgres, supabase (got %q)", c.StoreDriver)
	}
	if c.UnitPrice.IsNegative() {
		return fmt.Errorf("UNIT_PRICE must not be negative")
	}
	if c.MaxBarcodeBatch < 1 {
		return fmt.Errorf("MAX_BARCODE_BATCH must be at least 1")
	}
	if c.StagingSessionTTL <= 0 {
		return fmt.Errorf("STAGING_SESSION_TTL must be positive")
	}
	return nil
}

// StorageEnabled reports whether attachment uploads can be served.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList splits a comma-separated variable, dropping empty entries.
func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}
