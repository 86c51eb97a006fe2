package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	invalidYAMLConfigPath = "testdata/invalid_yaml.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
	raceradarName         = "raceradar"
	testSupabaseKey       = "TEST_SUPABASE_KEY"
	testDBPassword        = "TEST_DB_PASSWORD"
	expandedSecretValue   = "expanded_secret_value"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	t.Setenv(testSupabaseKey, "anon-key-123")
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg := loadValid(t)

	assert.Equal(t, raceradarName, cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, SourceSupabase, cfg.Catalog.Source)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Supabase.Timeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORS.AllowedOrigins)
	assert.Equal(t, 60, cfg.Search.MaxPageSize)
	assert.Equal(t, "postgres://raceradar:@localhost:5432/raceradar?sslmode=disable", cfg.GetDatabaseDSN())
}

// TestLoadConfigExpandsEnvironment tests ${VAR} placeholder expansion
func TestLoadConfigExpandsEnvironment(t *testing.T) {
	t.Setenv(testDBPassword, expandedSecretValue)
	cfg := loadValid(t)

	assert.Equal(t, expandedSecretValue, cfg.Database.Password)
	assert.Equal(t, "anon-key-123", cfg.Supabase.AnonKey)
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	assert.Error(t, err)
}

// TestLoadConfigInvalidYAML tests handling of unparsable files
func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := Load(invalidYAMLConfigPath)
	assert.Error(t, err)
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("RACERADAR_APP_NAME", "test-app")
	cfg := loadValid(t)

	assert.Equal(t, "test-app", cfg.App.Name)
}

// TestLoadWithDefaults tests that a missing file falls back to defaults
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)

	assert.Equal(t, SourceStatic, cfg.Catalog.Source)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 100, cfg.Search.MaxPageSize)
	assert.Equal(t, "*/5 * * * *", cfg.Scheduler.CatalogRefresh)
	require.NoError(t, Validate(cfg))
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg := loadValid(t)
	assert.NoError(t, Validate(cfg))
}

// TestValidateRules tests field and cross-field rules
func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		errPart string
	}{
		{"invalid environment", func(c *Config) { c.App.Environment = "invalid" }, "development, staging, production"},
		{"invalid log level", func(c *Config) { c.App.LogLevel = "trace" }, "debug, info, warn, error"},
		{"unknown catalog source", func(c *Config) { c.Catalog.Source = "csv" }, "static, supabase, postgres"},
		{"unknown sort", func(c *Config) { c.Search.DefaultSort = "popularity" }, "unknown sort order"},
		{"bad cron", func(c *Config) { c.Scheduler.CatalogRefresh = "every minute" }, "cron"},
		{"supabase without key", func(c *Config) { c.Supabase.AnonKey = "" }, "supabase.anon_key"},
		{"postgres without host", func(c *Config) {
			c.Catalog.Source = SourcePostgres
			c.Database.Host = ""
		}, "database.host"},
		{"page size above max", func(c *Config) { c.Search.DefaultPageSize = 500 }, "default_page_size"},
		{"production wildcard cors", func(c *Config) {
			c.App.Environment = "production"
			c.Server.CORS.AllowedOrigins = []string{"*"}
		}, "CORS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

// TestValidateEnvironment tests environment-specific checks
func TestValidateEnvironment(t *testing.T) {
	cfg := loadValid(t)
	cfg.App.Environment = "production"
	cfg.Supabase.AnonKey = "YOUR_ANON_KEY"
	assert.Error(t, ValidateEnvironment(cfg))

	cfg.Supabase.AnonKey = "eyJhbGciOi"
	assert.NoError(t, ValidateEnvironment(cfg))
}

type fakeSecrets struct {
	out *secretsmanager.GetSecretValueOutput
	err error
}

func (f fakeSecrets) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return f.out, f.err
}

// TestApplySecrets tests the Secrets Manager overlay
func TestApplySecrets(t *testing.T) {
	cfg := loadValid(t)
	cfg.Secrets.SecretName = "raceradar/prod"

	client := fakeSecrets{out: &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"supabase_anon_key":"from-secrets","database_password":"pw"}`),
	}}
	require.NoError(t, ApplySecrets(context.Background(), cfg, client))
	assert.Equal(t, "from-secrets", cfg.Supabase.AnonKey)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.Equal(t, "https://example.supabase.co", cfg.Supabase.URL)

	err := ApplySecrets(context.Background(), cfg, fakeSecrets{out: &secretsmanager.GetSecretValueOutput{}})
	assert.ErrorIs(t, err, errNoSecretDataFound)

	err = ApplySecrets(context.Background(), cfg, fakeSecrets{err: errors.New("denied")})
	assert.ErrorContains(t, err, "denied")
}

// TestLoadSecretsFromAWSNoSecret tests the no-op path
func TestLoadSecretsFromAWSNoSecret(t *testing.T) {
	cfg := loadValid(t)
	assert.NoError(t, LoadSecretsFromAWS(context.Background(), cfg))
}
