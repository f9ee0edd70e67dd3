package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 500, cfg.FacetSampleSize)
	assert.Equal(t, 5*time.Minute, cfg.FacetCacheTTL)
	assert.Equal(t, "@every 10m", cfg.FacetRefreshSpec)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_BACKEND", "REST")
	t.Setenv("STORE_URL", "  https://project.example.co  ")
	t.Setenv("STORE_ANON_KEY", " anon ")
	t.Setenv("QUERY_TIMEOUT", "3s")
	t.Setenv("MAX_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRest, cfg.StoreBackend)
	assert.Equal(t, "https://project.example.co", cfg.StoreURL)
	assert.Equal(t, "anon", cfg.StoreAnonKey)
	assert.Equal(t, 3*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 100, cfg.MaxPageSize, "unparsable values keep the default")
}

func TestValidate(t *testing.T) {
	base := Config{
		StoreBackend:    BackendPostgres,
		DBHost:          "localhost",
		DBName:          "growindia",
		JWTSecret:       "secret",
		QueryTimeout:    time.Second,
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"rest without url", func(c *Config) { c.StoreBackend = BackendRest }},
		{"unknown backend", func(c *Config) { c.StoreBackend = "mongo" }},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"zero timeout", func(c *Config) { c.QueryTimeout = 0 }},
		{"max below default", func(c *Config) { c.MaxPageSize = 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPass: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.PostgresDSN())
}
