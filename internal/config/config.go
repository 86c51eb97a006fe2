// Package config provides configuration management for the RaceRadar service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Catalog   CatalogConfig   `mapstructure:"catalog" validate:"required"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Search    SearchConfig    `mapstructure:"search" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Health    HealthConfig    `mapstructure:"health"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// CatalogConfig selects and tunes the race catalog provider
type CatalogConfig struct {
	Source       string        `mapstructure:"source" validate:"required,catalogsource"`
	StaticPath   string        `mapstructure:"static_path"`
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" validate:"omitempty,gt=0"`
	CacheMaxSize int           `mapstructure:"cache_max_size" validate:"omitempty,gt=0"`
}

// SupabaseConfig represents the hosted PostgREST catalog endpoint
type SupabaseConfig struct {
	URL               string        `mapstructure:"url" validate:"omitempty,url"`
	AnonKey           string        `mapstructure:"anon_key"`
	Table             string        `mapstructure:"table"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"omitempty,gt=0"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit         float64       `mapstructure:"rate_limit" validate:"gte=0"`
	CircuitBreakerMax int           `mapstructure:"circuit_breaker_max" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// SearchConfig holds engine defaults exposed through the API
type SearchConfig struct {
	DefaultSort     string `mapstructure:"default_sort" validate:"omitempty,sortorder"`
	DefaultPageSize int    `mapstructure:"default_page_size" validate:"gte=0"`
	MaxPageSize     int    `mapstructure:"max_page_size" validate:"required,gt=0"`
	// ServerSideFilter pushes facet filters down to the catalog source.
	// Facet counts then only cover the selected values.
	ServerSideFilter bool `mapstructure:"server_side_filter"`
}

// ServerConfig represents the HTTP API listener
type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"omitempty,gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"omitempty,gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"omitempty,gt=0"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig lists the browser origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         int      `mapstructure:"max_age" validate:"gte=0"`
}

// HealthConfig represents the liveness/readiness listener
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SchedulerConfig represents scheduled catalog maintenance
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CatalogRefresh  string `mapstructure:"catalog_refresh" validate:"omitempty,cronspec"`
	CatalogValidate string `mapstructure:"catalog_validate" validate:"omitempty,cronspec"`
}

// SecretsConfig points at an optional AWS Secrets Manager secret
type SecretsConfig struct {
	AWSRegion  string `mapstructure:"aws_region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
