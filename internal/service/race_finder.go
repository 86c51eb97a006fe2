// Package service wires the catalog sources to the search engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/logger"
	"github.com/EaziLuizi/raceradar/internal/metrics"
	"github.com/EaziLuizi/raceradar/internal/models"
	"github.com/EaziLuizi/raceradar/internal/search"
)

// ErrCatalogUnavailable is returned when the catalog source cannot be read.
// The caller should show an error state, not an empty result.
var ErrCatalogUnavailable = errors.New("race catalog unavailable")

// Searcher evaluates queries against the current catalog
type Searcher interface {
	Search(ctx context.Context, q search.Query) (search.ResultView, error)
}

// RaceFinderConfig tunes a RaceFinder
type RaceFinderConfig struct {
	// MaxPageSize caps Query.Page.Size, unpaged queries included; zero means no cap
	MaxPageSize int
	// ServerSideFilter pushes facet filters down to the source
	ServerSideFilter bool
	// Now is the clock used for "today"; defaults to time.Now
	Now func() time.Time
}

// RaceFinder runs search queries against a catalog source
type RaceFinder struct {
	source        datasource.CatalogSource
	config        RaceFinderConfig
	searchLogger  *logger.SearchLogger
	catalogLogger *logger.CatalogLogger
}

// NewRaceFinder creates a new race finder
func NewRaceFinder(source datasource.CatalogSource, cfg RaceFinderConfig, baseLogger *logrus.Logger) *RaceFinder {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if baseLogger == nil {
		baseLogger = logrus.StandardLogger()
	}
	return &RaceFinder{
		source:        source,
		config:        cfg,
		searchLogger:  logger.NewSearchLogger(baseLogger),
		catalogLogger: logger.NewCatalogLogger(baseLogger),
	}
}

// Search fetches the catalog and evaluates q against it
func (f *RaceFinder) Search(ctx context.Context, q search.Query) (search.ResultView, error) {
	now := f.config.Now()
	if f.config.MaxPageSize > 0 && (!q.Page.Enabled() || q.Page.Size > f.config.MaxPageSize) {
		q.Page.Size = f.config.MaxPageSize
	}

	races, err := f.fetch(ctx, f.catalogFilterFor(q, now))
	if err != nil {
		return search.ResultView{}, err
	}

	start := time.Now()
	view := search.Evaluate(races, q, now)
	elapsed := time.Since(start)

	metrics.RecordSearchEvaluation(string(q.Sort.Normalize()), q.IsFiltered(), elapsed.Seconds(), view.TotalCount, view.Skipped)
	if view.Skipped > 0 {
		f.searchLogger.LogSkippedRecords(f.source.Name(), view.Skipped)
	}
	f.searchLogger.LogEvaluation(q.SearchText, q.Province, q.RaceType, q.Difficulty, string(q.Sort),
		len(races), view.TotalCount, len(view.Items), float64(elapsed.Microseconds())/1000)

	return view, nil
}

// RaceBySlug returns one active race. Missing or inactive races yield models.ErrNotFound.
func (f *RaceFinder) RaceBySlug(ctx context.Context, slug string) (*models.RaceRecord, error) {
	start := time.Now()
	race, err := f.source.FetchRaceBySlug(ctx, slug)
	if errors.Is(err, models.ErrNotFound) {
		metrics.RecordCatalogFetch(f.source.Name(), "not_found", time.Since(start).Seconds())
		return nil, models.ErrNotFound
	}
	if err != nil {
		metrics.RecordCatalogFetch(f.source.Name(), "error", time.Since(start).Seconds())
		f.catalogLogger.LogFetchError(f.source.Name(), datasource.ErrorCode(err), err)
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	metrics.RecordCatalogFetch(f.source.Name(), "success", time.Since(start).Seconds())

	if !race.IsActive() || !race.HasRequiredFields() {
		return nil, models.ErrNotFound
	}
	return race, nil
}

// Source returns the underlying catalog source
func (f *RaceFinder) Source() datasource.CatalogSource {
	return f.source
}

func (f *RaceFinder) fetch(ctx context.Context, filter datasource.CatalogFilter) ([]models.RaceRecord, error) {
	start := time.Now()
	races, err := f.source.FetchRaces(ctx, filter)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordCatalogFetch(f.source.Name(), "error", elapsed.Seconds())
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.catalogLogger.LogFetchError(f.source.Name(), datasource.ErrorCode(err), err)
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	metrics.RecordCatalogFetch(f.source.Name(), "success", elapsed.Seconds())
	f.catalogLogger.LogFetch(f.source.Name(), len(races), float64(elapsed.Microseconds())/1000)
	return races, nil
}

func (f *RaceFinder) catalogFilterFor(q search.Query, now time.Time) datasource.CatalogFilter {
	var filter datasource.CatalogFilter
	if q.OnlyUpcoming {
		today := models.DateOf(now)
		filter.UpcomingFrom = &today
	}
	if f.config.ServerSideFilter {
		filter.Province = q.ProvinceFilter()
		filter.RaceType = q.RaceTypeFilter()
		filter.Difficulty = q.DifficultyFilter()
	}
	return filter
}
