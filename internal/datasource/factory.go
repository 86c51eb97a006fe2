package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/config"
)

// Factory creates CatalogSource implementations based on configuration
type Factory struct {
	config *config.Config
	logger logrus.FieldLogger
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger logrus.FieldLogger) *Factory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Factory{
		config: cfg,
		logger: logger,
	}
}

// NewCatalogSource builds the configured HTTP or file-backed source, wrapped in
// the catalog cache when enabled. The postgres source needs a database pool and
// is built by the caller; pass it as fallback to have it wrapped the same way.
func (f *Factory) NewCatalogSource(fallback CatalogSource) (CatalogSource, error) {
	var (
		source CatalogSource
		err    error
	)

	switch f.config.Catalog.Source {
	case config.SourceSupabase:
		source, err = f.newSupabaseSource()
	case config.SourceStatic:
		source, err = f.newStaticSource()
	case config.SourcePostgres:
		if fallback == nil {
			return nil, fmt.Errorf("postgres catalog requires a repository")
		}
		source = fallback
	default:
		return nil, fmt.Errorf("unknown catalog source: %s", f.config.Catalog.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog source %s: %w", f.config.Catalog.Source, err)
	}

	f.logger.WithField("source", source.Name()).Info("Created catalog source")

	if f.config.Catalog.CacheEnabled {
		return NewCachedSource(source, f.config.Catalog.CacheTTL, f.config.Catalog.CacheMaxSize, f.logger), nil
	}
	return source, nil
}

func (f *Factory) newSupabaseSource() (CatalogSource, error) {
	sc := f.config.Supabase
	if sc.URL == "" || sc.AnonKey == "" {
		return nil, fmt.Errorf("supabase url and anon key are required")
	}

	httpCfg := DefaultHTTPClientConfig()
	if sc.Timeout > 0 {
		httpCfg.Timeout = sc.Timeout
	}
	if sc.MaxRetries > 0 {
		httpCfg.MaxRetries = sc.MaxRetries
	}
	if sc.RateLimit > 0 {
		httpCfg.RateLimit = sc.RateLimit
	}
	if sc.CircuitBreakerMax > 0 {
		httpCfg.CircuitBreakerMax = sc.CircuitBreakerMax
	}

	client := NewRateLimitedHTTPClient(httpCfg, f.logger)
	return NewSupabaseSource(client, sc.URL, sc.Table, sc.AnonKey, f.logger), nil
}

func (f *Factory) newStaticSource() (CatalogSource, error) {
	var (
		source *StaticSource
		err    error
	)
	if f.config.Catalog.StaticPath == "" {
		f.logger.Warn("No static catalog path configured, serving bundled demo catalog")
		source, err = NewDemoSource()
	} else {
		source, err = LoadStaticSource(f.config.Catalog.StaticPath)
	}
	if err != nil {
		return nil, err
	}
	if n := source.RepairedRows(); n > 0 {
		f.logger.WithField("rows", n).Warn("Static catalog has rows with undecodable fields")
	}
	return source, nil
}
