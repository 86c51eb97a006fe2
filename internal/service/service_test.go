package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/models"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func testRace(name string, province models.Province, raceType models.RaceType, difficulty models.Difficulty, date string) models.RaceRecord {
	return models.RaceRecord{
		ID:               uuid.New(),
		Name:             name,
		Slug:             strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		RaceDate:         models.MustParseDate(date),
		LocationCity:     "Cape Town",
		LocationProvince: province,
		RaceType:         raceType,
		Difficulty:       difficulty,
		Status:           models.StatusActive,
	}
}

func testCatalog() []models.RaceRecord {
	fee := decimal.NewFromInt(450)
	otter := testRace("Otter Trail Run", models.ProvinceWesternCape, models.RaceTypeTrail, models.DifficultyHard, "2026-05-10")
	otter.Distances = []models.Distance{{Label: "42km", EntryFee: &fee}}

	inactive := testRace("Retired Classic", models.ProvinceWesternCape, models.RaceTypeRoad, models.DifficultyEasy, "2026-01-01")
	inactive.Status = models.StatusInactive

	malformed := testRace("", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2026-03-01")
	malformed.Slug = "nameless"

	return []models.RaceRecord{
		testRace("Midmar Mile", models.ProvinceKwaZuluNatal, models.RaceTypeSwimming, models.DifficultyEasy, "2026-02-08"),
		otter,
		testRace("Old Race", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2020-01-01"),
		testRace("Soweto Marathon", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyModerate, "2025-11-02"),
		inactive,
		malformed,
	}
}

// failingSource always fails with err
type failingSource struct {
	err error
}

func (f failingSource) FetchRaces(ctx context.Context, filter datasource.CatalogFilter) ([]models.RaceRecord, error) {
	return nil, f.err
}

func (f failingSource) FetchRaceBySlug(ctx context.Context, slug string) (*models.RaceRecord, error) {
	return nil, f.err
}

func (f failingSource) Name() string { return "failing" }

// recordingSource captures the filters it was asked for
type recordingSource struct {
	*datasource.StaticSource
	filters []datasource.CatalogFilter
}

func (r *recordingSource) FetchRaces(ctx context.Context, filter datasource.CatalogFilter) ([]models.RaceRecord, error) {
	r.filters = append(r.filters, filter)
	return r.StaticSource.FetchRaces(ctx, filter)
}
