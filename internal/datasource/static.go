package datasource

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/EaziLuizi/raceradar/internal/models"
)

const staticSourceName = "static"

//go:embed demo_catalog.json
var demoCatalog []byte

// StaticSource serves a fixed in-memory catalog
type StaticSource struct {
	races    []models.RaceRecord
	repaired int
}

// NewStaticSource creates a source over the given records. The slice is copied.
func NewStaticSource(races []models.RaceRecord) *StaticSource {
	return &StaticSource{races: append([]models.RaceRecord(nil), races...)}
}

// NewDemoSource creates a source over the bundled demo catalog
func NewDemoSource() (*StaticSource, error) {
	return parseStaticCatalog(demoCatalog)
}

// LoadStaticSource reads a JSON array of races from path
func LoadStaticSource(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return parseStaticCatalog(data)
}

// parseStaticCatalog decodes each row on its own; only a file that is not a
// JSON array is rejected.
func parseStaticCatalog(data []byte) (*StaticSource, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, NewDataSourceError(staticSourceName, ErrCodeInvalidData, "failed to parse catalog", err)
	}

	s := &StaticSource{races: make([]models.RaceRecord, 0, len(rows))}
	for _, raw := range rows {
		race, dropped := decodeRace(raw)
		if len(dropped) > 0 {
			s.repaired++
		}
		s.races = append(s.races, race)
	}
	return s, nil
}

// RepairedRows returns how many rows lost at least one undecodable field
func (s *StaticSource) RepairedRows() int {
	return s.repaired
}

// FetchRaces returns active races matching the filter in catalog order.
// Malformed records are included so the caller can count them.
func (s *StaticSource) FetchRaces(ctx context.Context, filter CatalogFilter) ([]models.RaceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.RaceRecord, 0, len(s.races))
	for i := range s.races {
		if filter.Matches(&s.races[i]) {
			out = append(out, s.races[i])
		}
	}
	return out, nil
}

// FetchRaceBySlug returns the active race with the given slug
func (s *StaticSource) FetchRaceBySlug(ctx context.Context, slug string) (*models.RaceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := range s.races {
		if s.races[i].Slug == slug && s.races[i].IsActive() {
			race := s.races[i]
			return &race, nil
		}
	}
	return nil, NewDataSourceError(staticSourceName, ErrCodeNotFound, "race not found: "+slug, models.ErrNotFound)
}

// All returns every record including inactive and malformed ones
func (s *StaticSource) All() []models.RaceRecord {
	return append([]models.RaceRecord(nil), s.races...)
}

// Name returns the data source name
func (s *StaticSource) Name() string {
	return staticSourceName
}
