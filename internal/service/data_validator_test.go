package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EaziLuizi/raceradar/internal/datasource"
	"github.com/EaziLuizi/raceradar/internal/models"
)

const expectedIssuesMsg = "expected validation issues"

func strPtr(s string) *string { return &s }

func datePtr(s string) *models.Date {
	d := models.MustParseDate(s)
	return &d
}

func validRace() models.RaceRecord {
	return testRace("Otter Trail Run", models.ProvinceWesternCape, models.RaceTypeTrail, models.DifficultyHard, "2026-05-10")
}

func hasIssue(issues []RecordIssue, field, kind string) bool {
	for _, issue := range issues {
		if issue.Field == field && issue.Kind == kind {
			return true
		}
	}
	return false
}

// TestRaceDataValidation tests record validation rules
func TestRaceDataValidation(t *testing.T) {
	validator := NewDataValidator(testLogger())

	tests := []struct {
		name      string
		mutate    func(r *models.RaceRecord)
		wantField string
		wantKind  string
	}{
		{
			name:   "valid race",
			mutate: func(r *models.RaceRecord) {},
		},
		{
			name:      "blank name",
			mutate:    func(r *models.RaceRecord) { r.Name = "   " },
			wantField: "name",
			wantKind:  IssueMissingRequired,
		},
		{
			name:      "missing date",
			mutate:    func(r *models.RaceRecord) { r.RaceDate = models.Date{} },
			wantField: "race_date",
			wantKind:  IssueMissingRequired,
		},
		{
			name:      "unknown province",
			mutate:    func(r *models.RaceRecord) { r.LocationProvince = "Atlantis" },
			wantField: "location_province",
			wantKind:  IssueInvalidField,
		},
		{
			name:      "unknown race type",
			mutate:    func(r *models.RaceRecord) { r.RaceType = "parkour" },
			wantField: "race_type",
			wantKind:  IssueInvalidField,
		},
		{
			name:      "unknown difficulty",
			mutate:    func(r *models.RaceRecord) { r.Difficulty = "brutal" },
			wantField: "difficulty",
			wantKind:  IssueInvalidField,
		},
		{
			name:      "bad slug",
			mutate:    func(r *models.RaceRecord) { r.Slug = "Otter Trail" },
			wantField: "slug",
			wantKind:  IssueInvalidField,
		},
		{
			name:      "bad website",
			mutate:    func(r *models.RaceRecord) { r.WebsiteURL = strPtr("not a url") },
			wantField: "website_url",
			wantKind:  IssueInvalidField,
		},
		{
			name:      "distance without label",
			mutate:    func(r *models.RaceRecord) { r.Distances = []models.Distance{{Label: ""}} },
			wantField: "distances[0].distance",
			wantKind:  IssueInvalidField,
		},
		{
			name: "entries open after they close",
			mutate: func(r *models.RaceRecord) {
				r.EntryOpensDate = datePtr("2026-04-01")
				r.EntryClosesDate = datePtr("2026-03-01")
			},
			wantField: "entry_opens_date",
			wantKind:  IssueEntryWindow,
		},
		{
			name:      "entries close after race day",
			mutate:    func(r *models.RaceRecord) { r.EntryClosesDate = datePtr("2026-06-01") },
			wantField: "entry_closes_date",
			wantKind:  IssueEntryWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			race := validRace()
			tt.mutate(&race)

			issues := validator.ValidateRace(&race)
			if tt.wantKind == "" {
				assert.Empty(t, issues)
				return
			}
			require.NotEmpty(t, issues, expectedIssuesMsg)
			assert.True(t, hasIssue(issues, tt.wantField, tt.wantKind), "issues: %+v", issues)
		})
	}
}

func TestValidateCatalogUniqueness(t *testing.T) {
	validator := NewDataValidator(testLogger())

	first := validRace()
	sameID := testRace("Knysna Forest Marathon", models.ProvinceWesternCape, models.RaceTypeTrail, models.DifficultyModerate, "2026-07-11")
	sameID.ID = first.ID
	sameSlug := testRace("Otter Trail Run", models.ProvinceWesternCape, models.RaceTypeTrail, models.DifficultyHard, "2027-05-10")

	report := validator.ValidateCatalog("static", []models.RaceRecord{first, sameID, sameSlug})

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Valid)
	assert.True(t, report.HasIssues())
	assert.Equal(t, 1, report.ByKind[IssueDuplicateID])
	assert.Equal(t, 1, report.ByKind[IssueDuplicateSlug])
	assert.Zero(t, report.ByKind[IssueEntryWindow])

	require.Len(t, report.Issues, 2)
	assert.Equal(t, 1, report.Issues[0].Index)
	assert.Equal(t, 2, report.Issues[1].Index)
}

func TestAuditSource(t *testing.T) {
	validator := NewDataValidator(testLogger())

	report, err := validator.AuditSource(context.Background(), datasource.NewStaticSource(testCatalog()))
	require.NoError(t, err)

	// the inactive record is not served, the nameless one is reported
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 4, report.Valid)
	assert.Equal(t, 1, report.ByKind[IssueMissingRequired])
}

func TestAuditSourceFailure(t *testing.T) {
	validator := NewDataValidator(testLogger())

	_, err := validator.AuditSource(context.Background(), failingSource{err: errors.New("offline")})
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestDemoCatalogIsClean(t *testing.T) {
	source, err := datasource.NewDemoSource()
	require.NoError(t, err)

	report := NewDataValidator(testLogger()).ValidateCatalog(source.Name(), source.All())
	assert.False(t, report.HasIssues(), "issues: %+v", report.Issues)
}
