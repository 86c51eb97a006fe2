package datasource

import (
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/EaziLuizi/raceradar/internal/metrics"
	"github.com/EaziLuizi/raceradar/internal/models"
)

// CatalogCache provides in-memory caching for fetched race lists and details
type CatalogCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache(ttl time.Duration, maxSize int) *CatalogCache {
	return &CatalogCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// GetRaces retrieves a cached race list for a filter
func (cc *CatalogCache) GetRaces(filter CatalogFilter) ([]models.RaceRecord, bool) {
	if v, found := cc.cache.Get(listKey(filter)); found {
		if races, ok := v.([]models.RaceRecord); ok {
			cc.hit()
			return races, true
		}
	}
	cc.miss()
	return nil, false
}

// SetRaces stores a race list for a filter
func (cc *CatalogCache) SetRaces(filter CatalogFilter, races []models.RaceRecord) {
	cc.set(listKey(filter), races)
}

// GetRace retrieves a cached race detail by slug
func (cc *CatalogCache) GetRace(slug string) (*models.RaceRecord, bool) {
	if v, found := cc.cache.Get(slugKey(slug)); found {
		if race, ok := v.(models.RaceRecord); ok {
			cc.hit()
			return &race, true
		}
	}
	cc.miss()
	return nil, false
}

// SetRace stores a race detail by slug
func (cc *CatalogCache) SetRace(race *models.RaceRecord) {
	cc.set(slugKey(race.Slug), *race)
}

// Clear flushes the entire cache
func (cc *CatalogCache) Clear() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.cache.Flush()
	cc.hitCount.Store(0)
	cc.missCount.Store(0)
}

// Stats returns cache statistics
func (cc *CatalogCache) Stats() (hits, misses uint64, ratio float64) {
	hits = cc.hitCount.Load()
	misses = cc.missCount.Load()
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (cc *CatalogCache) ItemCount() int {
	return cc.cache.ItemCount()
}

func (cc *CatalogCache) set(key string, v interface{}) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.maxSize > 0 && cc.cache.ItemCount() >= cc.maxSize {
		cc.cache.DeleteExpired()
		if cc.cache.ItemCount() >= cc.maxSize {
			// still full: start over rather than grow without bound
			cc.cache.Flush()
		}
	}
	cc.cache.Set(key, v, cc.ttl)
}

func (cc *CatalogCache) hit() {
	cc.hitCount.Add(1)
	cc.updateMetrics()
}

func (cc *CatalogCache) miss() {
	cc.missCount.Add(1)
	cc.updateMetrics()
}

func (cc *CatalogCache) updateMetrics() {
	_, _, ratio := cc.Stats()
	metrics.UpdateCatalogCacheHitRatio(ratio)
}

func listKey(f CatalogFilter) string { return "races:" + f.Key() }
func slugKey(slug string) string     { return "race:" + slug }
