package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/EaziLuizi/raceradar/internal/models"
)

// CatalogSource defines the interface for fetching the race catalog from a provider
type CatalogSource interface {
	// FetchRaces retrieves active races matching the server-side pre-filter
	FetchRaces(ctx context.Context, filter CatalogFilter) ([]models.RaceRecord, error)

	// FetchRaceBySlug retrieves one active race; missing or inactive races yield models.ErrNotFound
	FetchRaceBySlug(ctx context.Context, slug string) (*models.RaceRecord, error)

	// Name returns the name of the data source
	Name() string
}

// CatalogFilter narrows a fetch on the provider side. Zero fields do not filter.
type CatalogFilter struct {
	Province     models.Province
	RaceType     models.RaceType
	Difficulty   models.Difficulty
	UpcomingFrom *models.Date
}

// Key returns a stable cache key for the filter
func (f CatalogFilter) Key() string {
	from := ""
	if f.UpcomingFrom != nil {
		from = f.UpcomingFrom.String()
	}
	return fmt.Sprintf("p=%s|t=%s|d=%s|from=%s", f.Province, f.RaceType, f.Difficulty, from)
}

// Matches reports whether a record passes the filter and is active.
// Malformed records always match; the search engine reports them as skipped.
func (f CatalogFilter) Matches(r *models.RaceRecord) bool {
	if !r.HasRequiredFields() {
		return true
	}
	if !r.IsActive() {
		return false
	}
	if f.Province != "" && r.LocationProvince != f.Province {
		return false
	}
	if f.RaceType != "" && r.RaceType != f.RaceType {
		return false
	}
	if f.Difficulty != "" && r.Difficulty != f.Difficulty {
		return false
	}
	if f.UpcomingFrom != nil && r.RaceDate.Before(*f.UpcomingFrom) {
		return false
	}
	return true
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, models.ErrNotFound) succeed for not-found responses
func (e DataSourceError) Is(target error) bool {
	return e.Code == ErrCodeNotFound && target == models.ErrNotFound
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// ErrCircuitOpen is returned while the HTTP client refuses requests after repeated failures
var ErrCircuitOpen = errors.New("circuit breaker open")

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the DataSourceError code from err, or ErrCodeUnknown
func ErrorCode(err error) string {
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code
	}
	return ErrCodeUnknown
}
