package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Cart storage backends
const (
	CartStoragePostgres = "postgres"
	CartStorageFile     = "file"
	CartStorageMemory   = "memory"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	AuthJWTSecret string // Shared secret of the hosted auth service (HS256)
	AllowedOrigin string
	FrontendURL   string // Storefront origin used for sitemap links
	Currency      string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// Cache
	SettingsCacheTTL time.Duration
	CacheCatalogTTL  time.Duration
	CacheRatesTTL    time.Duration
	CacheSitemapTTL  time.Duration
	// Cart
	CartStorage     string
	CartStorageDir  string
	MaxCartQuantity int
	// Pricing
	PriceRoundingPlaces int32
	ApplyTaxAtCheckout  bool
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadConfig() (*Config, error) {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env is optional, containers rely on system env vars.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
		Currency:      getEnv("CURRENCY", "TND"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		// Settings are cached for 5m, catalog pages 10m, public rate lists 15m, sitemap 6h
		SettingsCacheTTL: getDurationEnv("SETTINGS_CACHE_TTL", 5*time.Minute),
		CacheCatalogTTL:  getDurationEnv("CACHE_CATALOG_TTL", 10*time.Minute),
		CacheRatesTTL:    getDurationEnv("CACHE_RATES_TTL", 15*time.Minute),
		CacheSitemapTTL:  getDurationEnv("CACHE_SITEMAP_TTL", 6*time.Hour),

		CartStorage:     getEnv("CART_STORAGE", CartStoragePostgres),
		CartStorageDir:  getEnv("CART_STORAGE_DIR", ""),
		MaxCartQuantity: getIntEnv("MAX_CART_QUANTITY", 99),

		PriceRoundingPlaces: getInt32Env("PRICE_ROUNDING_PLACES", 0),
		ApplyTaxAtCheckout:  getBoolEnv("APPLY_TAX_AT_CHECKOUT", false),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DBUrl == "" {
		errs = append(errs, errors.New("DB_DSN environment variable is required"))
	}
	if c.AuthJWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET environment variable is required"))
	}
	switch c.CartStorage {
	case CartStoragePostgres, CartStorageMemory:
	case CartStorageFile:
		if c.CartStorageDir == "" {
			errs = append(errs, errors.New("CART_STORAGE_DIR is required when CART_STORAGE=file"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CART_STORAGE %q", c.CartStorage))
	}
	if c.MaxCartQuantity < 1 {
		errs = append(errs, errors.New("MAX_CART_QUANTITY must be at least 1"))
	}
	if c.PriceRoundingPlaces < 0 {
		errs = append(errs, errors.New("PRICE_ROUNDING_PLACES cannot be negative"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Invalid bool for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
