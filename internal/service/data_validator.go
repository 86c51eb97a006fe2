package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/logger"
	"github.com/EaziLuizi/raceradar/internal/metrics"
	"github.com/EaziLuizi/raceradar/internal/models"
)

// Issue kinds reported by DataValidator
const (
	IssueMissingRequired = "missing_required"
	IssueInvalidField    = "invalid_field"
	IssueEntryWindow     = "entry_window"
	IssueDuplicateID     = "duplicate_id"
	IssueDuplicateSlug   = "duplicate_slug"
)

var issueKinds = []string{IssueMissingRequired, IssueInvalidField, IssueEntryWindow, IssueDuplicateID, IssueDuplicateSlug}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// RecordIssue is one data-quality problem found in a catalog record
type RecordIssue struct {
	Index   int    `json:"index"`
	Slug    string `json:"slug"`
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// DataQualityReport summarises a catalog validation run. Records are never dropped.
type DataQualityReport struct {
	Source string         `json:"source"`
	Total  int            `json:"total"`
	Valid  int            `json:"valid"`
	Issues []RecordIssue  `json:"issues"`
	ByKind map[string]int `json:"by_kind"`
}

// HasIssues reports whether any record failed validation
func (r *DataQualityReport) HasIssues() bool {
	return len(r.Issues) > 0
}

// DataValidator validates catalog records
type DataValidator struct {
	validate *validator.Validate
	logger   *logger.CatalogLogger
}

// NewDataValidator creates a new data validator
func NewDataValidator(baseLogger *logrus.Logger) *DataValidator {
	if baseLogger == nil {
		baseLogger = logrus.StandardLogger()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("province", func(fl validator.FieldLevel) bool {
		return models.Province(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("racetype", func(fl validator.FieldLevel) bool {
		return models.RaceType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return models.Difficulty(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	return &DataValidator{
		validate: v,
		logger:   logger.NewCatalogLogger(baseLogger),
	}
}

// ValidateRace returns the problems found in a single record
func (v *DataValidator) ValidateRace(race *models.RaceRecord) []RecordIssue {
	var issues []RecordIssue
	add := func(field, kind, msg string) {
		issues = append(issues, RecordIssue{Slug: race.Slug, Field: field, Kind: kind, Message: msg})
	}

	if strings.TrimSpace(race.Name) == "" {
		add("name", IssueMissingRequired, "name is required")
	}
	if race.RaceDate.IsZero() {
		add("race_date", IssueMissingRequired, "race_date is required")
	}

	if err := v.validate.Struct(race); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			add("", IssueInvalidField, err.Error())
		}
		for _, fe := range validationErrors {
			field := strings.TrimPrefix(fe.Namespace(), "RaceRecord.")
			if field == "name" && fe.Tag() == "required" {
				// already reported above
				continue
			}
			add(field, IssueInvalidField, describeFieldError(field, fe))
		}
	}

	opens, closes := race.EntryOpensDate, race.EntryClosesDate
	if opens != nil && closes != nil && !opens.IsZero() && !closes.IsZero() && opens.After(*closes) {
		add("entry_opens_date", IssueEntryWindow,
			fmt.Sprintf("entries open %s after they close %s", opens, closes))
	}
	if closes != nil && !closes.IsZero() && !race.RaceDate.IsZero() && closes.After(race.RaceDate) {
		add("entry_closes_date", IssueEntryWindow,
			fmt.Sprintf("entries close %s after the race on %s", closes, race.RaceDate))
	}

	return issues
}

// ValidateCatalog validates every record and checks id and slug uniqueness
func (v *DataValidator) ValidateCatalog(source string, races []models.RaceRecord) *DataQualityReport {
	report := &DataQualityReport{
		Source: source,
		Total:  len(races),
		ByKind: make(map[string]int, len(issueKinds)),
	}
	for _, kind := range issueKinds {
		report.ByKind[kind] = 0
	}

	seenIDs := make(map[string]int, len(races))
	seenSlugs := make(map[string]int, len(races))

	for i := range races {
		race := &races[i]
		issues := v.ValidateRace(race)

		if race.ID != uuid.Nil {
			id := race.ID.String()
			if first, ok := seenIDs[id]; ok {
				issues = append(issues, RecordIssue{Slug: race.Slug, Field: "id", Kind: IssueDuplicateID,
					Message: fmt.Sprintf("id %s already used by record %d", id, first)})
			} else {
				seenIDs[id] = i
			}
		}
		if race.Slug != "" {
			if first, ok := seenSlugs[race.Slug]; ok {
				issues = append(issues, RecordIssue{Slug: race.Slug, Field: "slug", Kind: IssueDuplicateSlug,
					Message: fmt.Sprintf("slug already used by record %d", first)})
			} else {
				seenSlugs[race.Slug] = i
			}
		}

		if len(issues) == 0 {
			report.Valid++
			continue
		}
		for j := range issues {
			issues[j].Index = i
			report.ByKind[issues[j].Kind]++
		}
		report.Issues = append(report.Issues, issues...)
	}

	return report
}

// AuditSource fetches the whole active catalog from source and validates it.
// Results are logged and exported as data-quality gauges.
func (v *DataValidator) AuditSource(ctx context.Context, source datasource.CatalogSource) (*DataQualityReport, error) {
	races, err := source.FetchRaces(ctx, datasource.CatalogFilter{})
	if err != nil {
		v.logger.LogFetchError(source.Name(), datasource.ErrorCode(err), err)
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	report := v.ValidateCatalog(source.Name(), races)
	for kind, count := range report.ByKind {
		metrics.UpdateDataQualityIssues(kind, count)
	}
	v.logger.LogDataQuality(report.Source, report.Total, report.Valid, report.ByKind)

	return report, nil
}

func describeFieldError(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "province", "racetype", "difficulty":
		return fmt.Sprintf("%s has unknown %s code %q", field, fe.Tag(), fe.Value())
	case "slug":
		return fmt.Sprintf("%s %q is not a lowercase hyphenated slug", field, fe.Value())
	case "url", "email":
		return fmt.Sprintf("%s %q is not a valid %s", field, fe.Value(), fe.Tag())
	case "oneof":
		return fmt.Sprintf("%s has invalid value %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
