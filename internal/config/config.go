package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendRest     = "rest"
)

type Config struct {
	Port     string
	LogLevel string

	StoreBackend string

	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	StoreURL     string
	StoreAnonKey string

	JWTSecret   string
	JWTAudience string

	RedisAddr string
	RedisPass string
	RedisDB   int

	QueryTimeout     time.Duration
	DefaultPageSize  int
	MaxPageSize      int
	FacetSampleSize  int
	FacetCacheTTL    time.Duration
	FacetRefreshSpec string
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:     getEnvString("PORT", "8080"),
		LogLevel: getEnvString("LOG_LEVEL", "info"),

		StoreBackend: strings.ToLower(getEnvString("STORE_BACKEND", BackendPostgres)),

		DBHost:    getEnvString("DB_HOST", "localhost"),
		DBPort:    getEnvString("DB_PORT", "5432"),
		DBUser:    getEnvString("DB_USER", "postgres"),
		DBPass:    getEnvString("DB_PASS", ""),
		DBName:    getEnvString("DB_NAME", "growindia"),
		DBSSLMode: getEnvString("DB_SSLMODE", "disable"),

		StoreURL:     strings.TrimSpace(getEnvString("STORE_URL", "")),
		StoreAnonKey: strings.TrimSpace(getEnvString("STORE_ANON_KEY", "")),

		JWTSecret:   getEnvString("JWT_SECRET", ""),
		JWTAudience: getEnvString("JWT_AUDIENCE", "authenticated"),

		RedisAddr: getEnvString("REDIS_ADDR", ""),
		RedisPass: getEnvString("REDIS_PASS", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		QueryTimeout:     getEnvDuration("QUERY_TIMEOUT", 10*time.Second),
		DefaultPageSize:  getEnvInt("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:      getEnvInt("MAX_PAGE_SIZE", 100),
		FacetSampleSize:  getEnvInt("FACET_SAMPLE_SIZE", 500),
		FacetCacheTTL:    getEnvDuration("FACET_CACHE_TTL", 5*time.Minute),
		FacetRefreshSpec: getEnvString("FACET_REFRESH_SPEC", "@every 10m"),
	}

	return cfg, cfg.Validate()
}

// Validate reports settings the selected backend cannot run without
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendPostgres:
		if c.DBHost == "" || c.DBName == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for the postgres backend"))
		}
	case BackendRest:
		if c.StoreURL == "" || c.StoreAnonKey == "" {
			errs = append(errs, errors.New("STORE_URL and STORE_ANON_KEY are required for the rest backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.QueryTimeout <= 0 {
		errs = append(errs, errors.New("QUERY_TIMEOUT must be positive"))
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		errs = append(errs, errors.New("page sizes must satisfy 1 <= DEFAULT_PAGE_SIZE <= MAX_PAGE_SIZE"))
	}

	return errors.Join(errs...)
}

// PostgresDSN builds the lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName, c.DBSSLMode)
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
