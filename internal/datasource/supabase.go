package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/models"
)

const supabaseSourceName = "supabase"

// SupabaseSource implements CatalogSource over a Supabase PostgREST endpoint
type SupabaseSource struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	table      string
	anonKey    string
	logger     logrus.FieldLogger
}

// NewSupabaseSource creates a new Supabase catalog client
func NewSupabaseSource(httpClient *RateLimitedHTTPClient, baseURL, table, anonKey string, logger logrus.FieldLogger) *SupabaseSource {
	if table == "" {
		table = "races"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SupabaseSource{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		table:      table,
		anonKey:    anonKey,
		logger:     logger.WithField("source", supabaseSourceName),
	}
}

// FetchRaces retrieves active races ordered by date, pre-filtered by PostgREST
func (s *SupabaseSource) FetchRaces(ctx context.Context, filter CatalogFilter) ([]models.RaceRecord, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("status", "eq."+string(models.StatusActive))
	params.Set("order", "race_date.asc")
	if filter.UpcomingFrom != nil {
		params.Set("race_date", "gte."+filter.UpcomingFrom.String())
	}
	if filter.Province != "" {
		params.Set("location_province", "eq."+string(filter.Province))
	}
	if filter.RaceType != "" {
		params.Set("race_type", "eq."+string(filter.RaceType))
	}
	if filter.Difficulty != "" {
		params.Set("difficulty", "eq."+string(filter.Difficulty))
	}

	rows, err := s.query(ctx, params, "failed to fetch races")
	if err != nil {
		return nil, err
	}

	races := make([]models.RaceRecord, 0, len(rows))
	for i, raw := range rows {
		race, dropped := decodeRace(raw)
		if len(dropped) > 0 {
			s.logger.WithFields(logrus.Fields{
				"row":     i,
				"slug":    race.Slug,
				"dropped": dropped,
			}).Warn("Race row had undecodable fields")
		}
		races = append(races, race)
	}

	return races, nil
}

// FetchRaceBySlug retrieves a single active race
func (s *SupabaseSource) FetchRaceBySlug(ctx context.Context, slug string) (*models.RaceRecord, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("slug", "eq."+slug)
	params.Set("status", "eq."+string(models.StatusActive))
	params.Set("limit", "1")

	rows, err := s.query(ctx, params, "failed to fetch race details")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NewDataSourceError(supabaseSourceName, ErrCodeNotFound, "race not found: "+slug, models.ErrNotFound)
	}

	race, _ := decodeRace(rows[0])
	if !race.HasRequiredFields() {
		return nil, NewDataSourceError(supabaseSourceName, ErrCodeInvalidData, "race row is malformed: "+slug, nil)
	}
	return &race, nil
}

// Name returns the data source name
func (s *SupabaseSource) Name() string {
	return supabaseSourceName
}

func (s *SupabaseSource) query(ctx context.Context, params url.Values, action string) ([]json.RawMessage, error) {
	// PostgREST wants %20 rather than + for spaces in filter values
	query := strings.ReplaceAll(params.Encode(), "+", "%20")
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, s.table, query)

	headers := http.Header{}
	headers.Set("apikey", s.anonKey)
	headers.Set("Authorization", "Bearer "+s.anonKey)
	headers.Set("Accept", "application/json")

	resp, err := s.httpClient.Get(ctx, endpoint, headers)
	if err != nil {
		return nil, NewDataSourceError(supabaseSourceName, ErrCodeNetworkError, action, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewDataSourceError(supabaseSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(supabaseSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(supabaseSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var rows []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, NewDataSourceError(supabaseSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return rows, nil
}
