package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/EaziLuizi/raceradar/internal/search"
)

// Catalog source names accepted in catalog.source
const (
	SourceStatic   = "static"
	SourceSupabase = "supabase"
	SourcePostgres = "postgres"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("catalogsource", validateCatalogSource)
	_ = v.RegisterValidation("sortorder", validateSortOrder)
	_ = v.RegisterValidation("cronspec", validateCron)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateCatalogSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case SourceStatic, SourceSupabase, SourcePostgres:
		return true
	default:
		return false
	}
}

func validateSortOrder(fl validator.FieldLevel) bool {
	return search.SortOrder(fl.Field().String()).IsValid()
}

func validateCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	switch cfg.Catalog.Source {
	case SourceSupabase:
		if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
			return fmt.Errorf("supabase catalog requires supabase.url and supabase.anon_key")
		}
	case SourcePostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("postgres catalog requires database.host, database.name and database.user")
		}
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
	}

	if cfg.Search.DefaultPageSize > cfg.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size cannot exceed search.max_page_size")
	}

	if cfg.Catalog.CacheEnabled && cfg.Catalog.CacheTTL <= 0 {
		return fmt.Errorf("catalog.cache_ttl must be positive when the cache is enabled")
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.CatalogRefresh != "" && !cfg.Catalog.CacheEnabled {
		return fmt.Errorf("scheduler.catalog_refresh requires catalog.cache_enabled")
	}

	if cfg.IsProduction() {
		if cfg.Catalog.Source == SourcePostgres && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
		for _, origin := range cfg.Server.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("production environment must list explicit CORS origins")
			}
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "catalogsource":
			fmt.Fprintf(&b, "- Field '%s' must be one of: static, supabase, postgres\n", field)
		case "sortorder":
			fmt.Fprintf(&b, "- Field '%s' has unknown sort order '%v'\n", field, value)
		case "cronspec":
			fmt.Fprintf(&b, "- Field '%s' is not a valid cron expression: '%v'\n", field, value)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}

// isTestCredential checks if a credential looks like a placeholder
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() && cfg.Catalog.Source == SourceSupabase && isTestCredential(cfg.Supabase.AnonKey) {
		return fmt.Errorf("production environment should not use a placeholder Supabase key")
	}
	if cfg.IsProduction() && cfg.Catalog.Source == SourceStatic && cfg.Catalog.StaticPath == "" {
		return fmt.Errorf("production environment should not serve the bundled demo catalog")
	}
	return nil
}
