package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/database"
	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/models"
)

const (
	postgresSourceName = "postgres"
	racesTable         = "races"
	errScanRace        = "failed to scan race: %w"
)

var raceColumns = []string{
	"id", "name", "slug", "description", "race_date", "entry_opens_date", "entry_closes_date",
	"location_city", "location_province", "location_venue", "race_type", "terrain",
	"elevation_gain", "difficulty", "distances", "website_url", "entry_url",
	"organizer_name", "organizer_email", "organizer_phone", "image_url", "status",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	q      database.Querier
	logger logrus.FieldLogger
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(q database.Querier, logger logrus.FieldLogger) *PostgresRaceRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PostgresRaceRepository{
		q:      q,
		logger: logger.WithField("source", postgresSourceName),
	}
}

// Name returns the data source name
func (r *PostgresRaceRepository) Name() string {
	return postgresSourceName
}

// FetchRaces retrieves active races matching the filter ordered by date
func (r *PostgresRaceRepository) FetchRaces(ctx context.Context, filter datasource.CatalogFilter) ([]models.RaceRecord, error) {
	query := psql.Select(raceColumns...).
		From(racesTable).
		Where(squirrel.Eq{"status": string(models.StatusActive)})

	if filter.Province != "" {
		query = query.Where(squirrel.Eq{"location_province": string(filter.Province)})
	}
	if filter.RaceType != "" {
		query = query.Where(squirrel.Eq{"race_type": string(filter.RaceType)})
	}
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Eq{"difficulty": string(filter.Difficulty)})
	}
	if filter.UpcomingFrom != nil {
		query = query.Where(squirrel.GtOrEq{"race_date": filter.UpcomingFrom.Time()})
	}

	sql, args, err := query.OrderBy("race_date ASC", "name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build races query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, datasource.NewDataSourceError(postgresSourceName, datasource.ErrCodeNetworkError, "failed to query races", err)
	}
	defer rows.Close()

	var races []models.RaceRecord
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			// a zero record is reported as skipped by the search engine
			r.logger.WithError(err).Warn("Unreadable race row")
			races = append(races, models.RaceRecord{})
			continue
		}
		races = append(races, *race)
	}
	if err := rows.Err(); err != nil {
		return nil, datasource.NewDataSourceError(postgresSourceName, datasource.ErrCodeNetworkError, "failed to read races", err)
	}

	return races, nil
}

// FetchRaceBySlug retrieves a single active race
func (r *PostgresRaceRepository) FetchRaceBySlug(ctx context.Context, slug string) (*models.RaceRecord, error) {
	sql, args, err := psql.Select(raceColumns...).
		From(racesTable).
		Where(squirrel.Eq{"slug": slug}).
		Where(squirrel.Eq{"status": string(models.StatusActive)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build race query: %w", err)
	}

	race, err := scanRace(r.q.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, datasource.NewDataSourceError(postgresSourceName, datasource.ErrCodeNotFound, "race not found: "+slug, models.ErrNotFound)
	}
	if err != nil {
		return nil, datasource.NewDataSourceError(postgresSourceName, datasource.ErrCodeInvalidData, "failed to get race", err)
	}

	return race, nil
}

// Upsert inserts a race or replaces the row with the same slug
func (r *PostgresRaceRepository) Upsert(ctx context.Context, race *models.RaceRecord) error {
	if race.ID == uuid.Nil {
		race.ID = uuid.New()
	}
	if race.Status == "" {
		race.Status = models.StatusActive
	}

	distances, err := json.Marshal(race.Distances)
	if err != nil {
		return fmt.Errorf("failed to encode distances: %w", err)
	}
	if race.Distances == nil {
		distances = []byte("[]")
	}

	sql, args, err := psql.Insert(racesTable).
		Columns(raceColumns...).
		Values(
			race.ID, race.Name, race.Slug, race.Description, race.RaceDate.Time(),
			dateArg(race.EntryOpensDate), dateArg(race.EntryClosesDate),
			race.LocationCity, string(race.LocationProvince), race.LocationVenue,
			string(race.RaceType), race.Terrain, race.ElevationGain, string(race.Difficulty),
			string(distances), race.WebsiteURL, race.EntryURL,
			race.OrganizerName, race.OrganizerEmail, race.OrganizerPhone, race.ImageURL,
			string(race.Status),
		).
		Suffix(`ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, race_date = EXCLUDED.race_date,
			entry_opens_date = EXCLUDED.entry_opens_date, entry_closes_date = EXCLUDED.entry_closes_date,
			location_city = EXCLUDED.location_city, location_province = EXCLUDED.location_province,
			location_venue = EXCLUDED.location_venue, race_type = EXCLUDED.race_type, terrain = EXCLUDED.terrain,
			elevation_gain = EXCLUDED.elevation_gain, difficulty = EXCLUDED.difficulty, distances = EXCLUDED.distances,
			website_url = EXCLUDED.website_url, entry_url = EXCLUDED.entry_url, organizer_name = EXCLUDED.organizer_name,
			organizer_email = EXCLUDED.organizer_email, organizer_phone = EXCLUDED.organizer_phone,
			image_url = EXCLUDED.image_url, status = EXCLUDED.status, updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to upsert race %s: %w", race.Slug, err)
	}
	return nil
}

// Count returns the number of stored races, active or not
func (r *PostgresRaceRepository) Count(ctx context.Context) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").From(racesTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count races: %w", err)
	}
	return count, nil
}

func scanRace(row pgx.Row) (*models.RaceRecord, error) {
	var (
		race        models.RaceRecord
		raceDate    time.Time
		opens       *time.Time
		closes      *time.Time
		province    string
		raceType    string
		difficulty  string
		status      string
		distanceRaw []byte
	)

	err := row.Scan(
		&race.ID, &race.Name, &race.Slug, &race.Description, &raceDate, &opens, &closes,
		&race.LocationCity, &province, &race.LocationVenue, &raceType, &race.Terrain,
		&race.ElevationGain, &difficulty, &distanceRaw, &race.WebsiteURL, &race.EntryURL,
		&race.OrganizerName, &race.OrganizerEmail, &race.OrganizerPhone, &race.ImageURL, &status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf(errScanRace, err)
	}

	if len(distanceRaw) > 0 {
		if err := json.Unmarshal(distanceRaw, &race.Distances); err != nil {
			return nil, fmt.Errorf("failed to decode distances for %s: %w", race.Slug, err)
		}
	}

	race.RaceDate = models.DateOf(raceDate)
	race.EntryOpensDate = nullableDate(opens)
	race.EntryClosesDate = nullableDate(closes)
	race.LocationProvince = models.Province(province)
	race.RaceType = models.RaceType(raceType)
	race.Difficulty = models.Difficulty(difficulty)
	race.Status = models.Status(status)

	return &race, nil
}

func nullableDate(t *time.Time) *models.Date {
	if t == nil {
		return nil
	}
	d := models.DateOf(*t)
	return &d
}

func dateArg(d *models.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}
