package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EaziLuizi/raceradar/internal/presenter"
	"github.com/EaziLuizi/raceradar/internal/search"
	"github.com/EaziLuizi/raceradar/internal/service"
)

// runCLI executes the root command against built-in defaults and the demo catalog
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", missing}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "raceradar dev")
}

func TestSearchCommandJSON(t *testing.T) {
	out, err := runCLI(t, "search", "-q", "COMRADES", "--upcoming=false", "--json")
	require.NoError(t, err)

	var cards []presenter.Card
	require.NoError(t, json.Unmarshal([]byte(out), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "comrades-marathon", cards[0].Slug)
}

func TestSearchCommandTable(t *testing.T) {
	out, err := runCLI(t, "search", "--province", "Gauteng", "--upcoming=false")
	require.NoError(t, err)

	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "Warrior Race Gauteng")
	assert.NotContains(t, out, "Soweto Marathon", "inactive races stay hidden")
	assert.Contains(t, out, "Showing 1 of 1 races")
}

func TestSearchCommandNoMatches(t *testing.T) {
	out, err := runCLI(t, "search", "-q", "zzz-no-such-race", "--upcoming=false")
	require.NoError(t, err)
	assert.Contains(t, out, "No races found")
	assert.Contains(t, out, "Showing 0 of 0 races")
}

func TestRaceCommand(t *testing.T) {
	out, err := runCLI(t, "race", "otter-trail-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Otter Trail Run")
	assert.Contains(t, out, "Monday, 10 May 2027")

	_, err = runCLI(t, "race", "soweto-marathon")
	assert.Error(t, err)
}

func TestValidateCatalogCommand(t *testing.T) {
	out, err := runCLI(t, "validate-catalog", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "Source: static")
	assert.Contains(t, out, "No issues found")
}

func TestSearchFlagsQuery(t *testing.T) {
	f := &searchFlags{
		text:       "otter",
		province:   search.All,
		raceType:   "trail",
		difficulty: search.All,
		upcoming:   true,
		page:       1,
		pageSize:   5,
	}

	q := f.query("name-asc")
	assert.Equal(t, search.SortNameAsc, q.Sort)
	assert.Equal(t, search.Page{Index: 1, Size: 5}, q.Page)
	assert.True(t, q.IsFiltered())

	f.sort = "popularity"
	assert.Equal(t, search.SortDateAsc, f.query("").Sort)
}

func TestPrintReport(t *testing.T) {
	report := &service.DataQualityReport{
		Source: "static",
		Total:  3,
		Valid:  1,
		ByKind: map[string]int{service.IssueMissingRequired: 2},
		Issues: []service.RecordIssue{
			{Index: 0, Slug: "a", Message: "name is required"},
			{Index: 2, Slug: "c", Message: "name is required"},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report, 1)
	out := buf.String()
	assert.Contains(t, out, "3 total, 1 valid")
	assert.Contains(t, out, "#0 a: name is required")
	assert.Contains(t, out, "... and 1 more")
}
