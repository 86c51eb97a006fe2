package datasource

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/metrics"
	"github.com/EaziLuizi/raceradar/internal/models"
)

// CachedSource wraps a CatalogSource with a TTL cache
type CachedSource struct {
	source CatalogSource
	cache  *CatalogCache
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewCachedSource creates a caching wrapper around source
func NewCachedSource(source CatalogSource, ttl time.Duration, maxSize int, logger logrus.FieldLogger) *CachedSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachedSource{
		source: source,
		cache:  NewCatalogCache(ttl, maxSize),
		logger: logger,
		now:    time.Now,
	}
}

// FetchRaces returns cached races for the filter, fetching on a miss
func (c *CachedSource) FetchRaces(ctx context.Context, filter CatalogFilter) ([]models.RaceRecord, error) {
	if races, ok := c.cache.GetRaces(filter); ok {
		c.logger.WithField("filter", filter.Key()).Debug("Cache hit for race list")
		return races, nil
	}

	c.logger.WithField("filter", filter.Key()).Debug("Cache miss, fetching race list")
	races, err := c.source.FetchRaces(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.cache.SetRaces(filter, races)
	return races, nil
}

// FetchRaceBySlug returns a cached race detail, fetching on a miss.
// Not-found results are not cached.
func (c *CachedSource) FetchRaceBySlug(ctx context.Context, slug string) (*models.RaceRecord, error) {
	if race, ok := c.cache.GetRace(slug); ok {
		return race, nil
	}

	race, err := c.source.FetchRaceBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.cache.SetRace(race)
	return race, nil
}

// Refresh drops every cached entry and re-warms the unfiltered upcoming list
func (c *CachedSource) Refresh(ctx context.Context) (int, error) {
	today := models.DateOf(c.now())
	filter := CatalogFilter{UpcomingFrom: &today}

	start := time.Now()
	races, err := c.source.FetchRaces(ctx, filter)
	if err != nil {
		metrics.RecordCatalogRefresh("failure")
		return 0, err
	}

	c.cache.Clear()
	c.cache.SetRaces(filter, races)
	for i := range races {
		c.cache.SetRace(&races[i])
	}

	metrics.RecordCatalogRefresh("success")
	metrics.UpdateCatalogSize(c.source.Name(), len(races))
	c.logger.WithFields(logrus.Fields{
		"source":      c.source.Name(),
		"races":       len(races),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Catalog cache refreshed")
	return len(races), nil
}

// Cache exposes the underlying cache for statistics
func (c *CachedSource) Cache() *CatalogCache {
	return c.cache
}

// Name returns the wrapped source name
func (c *CachedSource) Name() string {
	return c.source.Name()
}
