package repository

import (
	"context"

	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/models"
)

// RaceRepository defines the interface for race data access.
// It doubles as a catalog source so the search service can read from Postgres directly.
type RaceRepository interface {
	datasource.CatalogSource
	Upsert(ctx context.Context, race *models.RaceRecord) error
	Count(ctx context.Context) (int, error)
}
