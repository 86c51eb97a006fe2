package search

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EaziLuizi/raceradar/internal/models"
)

var evalInstant = time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

func race(name string, province models.Province, raceType models.RaceType, difficulty models.Difficulty, date string) models.RaceRecord {
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

func scenarioCatalog() []models.RaceRecord {
	return []models.RaceRecord{
		race("Midmar Mile", models.ProvinceKwaZuluNatal, models.RaceTypeSwimming, models.DifficultyEasy, "2026-02-08"),
		race("Otter Trail Run", models.ProvinceWesternCape, models.RaceTypeTrail, models.DifficultyHard, "2026-05-10"),
		race("Old Race", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2020-01-01"),
	}
}

func names(items []models.RaceRecord) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.Name
	}
	return out
}

func allQuery() Query {
	return Query{Province: All, RaceType: All, Difficulty: All}
}

// TestEvaluateUpcomingScenario tests that past races drop out under the upcoming filter
func TestEvaluateUpcomingScenario(t *testing.T) {
	q := allQuery()
	q.OnlyUpcoming = true

	view := Evaluate(scenarioCatalog(), q, evalInstant)

	assert.Equal(t, []string{"Midmar Mile", "Otter Trail Run"}, names(view.Items))
	assert.Equal(t, 2, view.TotalCount)
	assert.Zero(t, view.Skipped)
}

// TestEvaluateFacetAndText tests a facet filter combined with a text search
func TestEvaluateFacetAndText(t *testing.T) {
	q := allQuery()
	q.RaceType = "trail"
	q.SearchText = "otter"

	view := Evaluate(scenarioCatalog(), q, evalInstant)

	assert.Equal(t, []string{"Otter Trail Run"}, names(view.Items))
	assert.Equal(t, 1, view.TotalCount)
}

// TestEvaluateMalformedRecords tests that malformed records are skipped and counted
func TestEvaluateMalformedRecords(t *testing.T) {
	catalog := scenarioCatalog()
	catalog = append(catalog, race("", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2026-01-01"))
	undated := race("Undated", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2026-01-01")
	undated.RaceDate = models.Date{}
	catalog = append(catalog, undated)

	var view ResultView
	require.NotPanics(t, func() {
		view = Evaluate(catalog, allQuery(), evalInstant)
	})

	assert.Equal(t, 2, view.Skipped)
	assert.Equal(t, []string{"Old Race", "Midmar Mile", "Otter Trail Run"}, names(view.Items))
}

// TestEvaluateEmptyQueryIdentity tests that an empty query returns all active records in date order
func TestEvaluateEmptyQueryIdentity(t *testing.T) {
	catalog := scenarioCatalog()
	hidden := race("Hidden Classic", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2026-03-01")
	hidden.Status = models.StatusInactive
	catalog = append(catalog, hidden)

	view := Evaluate(catalog, Query{SearchText: "", Province: All, RaceType: All, Difficulty: All}, evalInstant)

	assert.Equal(t, []string{"Old Race", "Midmar Mile", "Otter Trail Run"}, names(view.Items))
	assert.True(t, IsSorted(view.Items, SortDateAsc))
}

// TestEvaluateCaseInsensitiveText tests case folding on both name and city
func TestEvaluateCaseInsensitiveText(t *testing.T) {
	table := race("Table Mountain Challenge", models.ProvinceWesternCape, models.RaceTypeTrail, models.DifficultyHard, "2026-03-01")
	other := race("Comrades", models.ProvinceKwaZuluNatal, models.RaceTypeUltra, models.DifficultyExtreme, "2026-06-14")
	other.LocationCity = "Pietermaritzburg"
	catalog := []models.RaceRecord{table, other}

	tests := []struct {
		text string
		want []string
	}{
		{"table", []string{"Table Mountain Challenge"}},
		{"TABLE", []string{"Table Mountain Challenge"}},
		{"  TaBlE  ", []string{"Table Mountain Challenge"}},
		{"maritzburg", []string{"Comrades"}},
		{"   ", []string{"Table Mountain Challenge", "Comrades"}},
		{"durban", []string{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.text), func(t *testing.T) {
			q := allQuery()
			q.SearchText = tt.text
			view := Evaluate(catalog, q, evalInstant)
			assert.Equal(t, tt.want, names(view.Items))
		})
	}
}

// TestEvaluateUpcomingIgnoresTimeOfDay tests that a same-day race remains visible late in the day
func TestEvaluateUpcomingIgnoresTimeOfDay(t *testing.T) {
	today := race("Today Race", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2025-06-01")
	yesterday := race("Yesterday Race", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2025-05-31")

	q := allQuery()
	q.OnlyUpcoming = true
	late := time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)

	view := Evaluate([]models.RaceRecord{yesterday, today}, q, late)
	assert.Equal(t, []string{"Today Race"}, names(view.Items))
}

// TestEvaluateFacetsAreCaseSensitive tests exact matching on closed-set codes
func TestEvaluateFacetsAreCaseSensitive(t *testing.T) {
	q := allQuery()
	q.Province = "western cape"

	view := Evaluate(scenarioCatalog(), q, evalInstant)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalCount)
}

// TestEvaluateUnknownCodes tests that unknown codes pass through "all" and text search
func TestEvaluateUnknownCodes(t *testing.T) {
	odd := race("Parkrun Special", models.ProvinceGauteng, models.RaceType("parkrun"), models.Difficulty("gentle"), "2026-01-10")
	catalog := append(scenarioCatalog(), odd)

	view := Evaluate(catalog, allQuery(), evalInstant)
	assert.Contains(t, names(view.Items), "Parkrun Special")

	q := allQuery()
	q.SearchText = "parkrun"
	view = Evaluate(catalog, q, evalInstant)
	assert.Equal(t, []string{"Parkrun Special"}, names(view.Items))

	q = allQuery()
	q.Difficulty = string(models.DifficultyEasy)
	view = Evaluate(catalog, q, evalInstant)
	assert.NotContains(t, names(view.Items), "Parkrun Special")
}

// TestEvaluateTieBreaks tests name then slug ordering for same-day races
func TestEvaluateTieBreaks(t *testing.T) {
	b := race("beta", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2026-01-01")
	a := race("Alpha", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2026-01-01")
	z := race("Zulu", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2025-12-31")

	view := Evaluate([]models.RaceRecord{b, a, z}, allQuery(), evalInstant)

	// ordinal comparison puts upper case before lower case
	assert.Equal(t, []string{"Zulu", "Alpha", "beta"}, names(view.Items))

	resorted := append([]models.RaceRecord(nil), view.Items...)
	sortRecords(resorted, SortDateAsc)
	assert.Equal(t, view.Items, resorted)
}

// TestEvaluateSortOrders tests the extended sort keys
func TestEvaluateSortOrders(t *testing.T) {
	fee := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	cheap := race("Cheap", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyHard, "2026-03-01")
	cheap.Distances = []models.Distance{{Label: "10km", EntryFee: fee("150")}, {Label: "21km", EntryFee: fee("400")}}
	pricey := race("Pricey", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, "2026-01-01")
	pricey.Distances = []models.Distance{{Label: "42km", EntryFee: fee("950.00")}}
	free := race("No Fee", models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyExtreme, "2026-02-01")
	free.Distances = []models.Distance{{Label: "5km"}}
	weird := race("Weird", models.ProvinceGauteng, models.RaceTypeRoad, models.Difficulty("unknown"), "2025-12-01")

	catalog := []models.RaceRecord{cheap, pricey, free, weird}

	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortDateAsc, []string{"Weird", "Pricey", "No Fee", "Cheap"}},
		{"", []string{"Weird", "Pricey", "No Fee", "Cheap"}},
		{SortOrder("popularity"), []string{"Weird", "Pricey", "No Fee", "Cheap"}},
		{SortDateDesc, []string{"Cheap", "No Fee", "Pricey", "Weird"}},
		{SortNameAsc, []string{"Cheap", "No Fee", "Pricey", "Weird"}},
		{SortPriceAsc, []string{"Cheap", "Pricey", "Weird", "No Fee"}},
		{SortDifficultyAsc, []string{"Pricey", "Cheap", "No Fee", "Weird"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			q := allQuery()
			q.Sort = tt.order
			view := Evaluate(catalog, q, evalInstant)
			assert.Equal(t, tt.want, names(view.Items))
			assert.True(t, IsSorted(view.Items, tt.order))
		})
	}
}

// TestEvaluatePagination tests slicing and page accounting
func TestEvaluatePagination(t *testing.T) {
	var catalog []models.RaceRecord
	for i := 0; i < 7; i++ {
		catalog = append(catalog, race(fmt.Sprintf("Race %d", i), models.ProvinceGauteng, models.RaceTypeRoad, models.DifficultyEasy, fmt.Sprintf("2026-01-%02d", i+1)))
	}

	tests := []struct {
		name      string
		page      Page
		want      []string
		pageCount int
		index     int
	}{
		{"disabled", Page{}, []string{"Race 0", "Race 1", "Race 2", "Race 3", "Race 4", "Race 5", "Race 6"}, 1, 0},
		{"first page", Page{Index: 0, Size: 3}, []string{"Race 0", "Race 1", "Race 2"}, 3, 0},
		{"last partial page", Page{Index: 2, Size: 3}, []string{"Race 6"}, 3, 2},
		{"past the end", Page{Index: 5, Size: 3}, []string{}, 3, 5},
		{"negative index", Page{Index: -1, Size: 2}, []string{"Race 0", "Race 1"}, 4, 0},
		{"huge index", Page{Index: math.MaxInt/2 + 1, Size: 2}, []string{}, 4, math.MaxInt/2 + 1},
		{"max index", Page{Index: math.MaxInt, Size: math.MaxInt}, []string{}, 1, math.MaxInt},
		{"huge size", Page{Size: math.MaxInt}, []string{"Race 0", "Race 1", "Race 2", "Race 3", "Race 4", "Race 5", "Race 6"}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := allQuery()
			q.Page = tt.page
			view := Evaluate(catalog, q, evalInstant)
			assert.Equal(t, tt.want, names(view.Items))
			assert.Equal(t, 7, view.TotalCount)
			assert.Equal(t, tt.pageCount, view.PageCount)
			assert.Equal(t, tt.index, view.Page.Index)
		})
	}
}

// TestEvaluateFacetCounts tests counts are taken after status and upcoming filters only
func TestEvaluateFacetCounts(t *testing.T) {
	catalog := scenarioCatalog()
	inactive := race("Closed", models.ProvinceWesternCape, models.RaceTypeTrail, models.DifficultyHard, "2026-04-01")
	inactive.Status = models.StatusInactive
	catalog = append(catalog, inactive)

	q := allQuery()
	q.OnlyUpcoming = true
	q.Province = string(models.ProvinceWesternCape)
	q.SearchText = "otter"

	view := Evaluate(catalog, q, evalInstant)

	assert.Equal(t, map[string]int{"KwaZulu-Natal": 1, "Western Cape": 1}, view.Facets.Province)
	assert.Equal(t, map[string]int{"swimming": 1, "trail": 1}, view.Facets.RaceType)
	assert.Equal(t, map[string]int{"easy": 1, "hard": 1}, view.Facets.Difficulty)
	assert.Equal(t, 1, view.TotalCount)
}

// TestEvaluateDoesNotMutateCatalog tests that evaluation leaves its input untouched
func TestEvaluateDoesNotMutateCatalog(t *testing.T) {
	catalog := scenarioCatalog()
	snapshot := append([]models.RaceRecord(nil), catalog...)

	q := allQuery()
	q.Sort = SortNameAsc
	_ = Evaluate(catalog, q, evalInstant)

	assert.Equal(t, snapshot, catalog)
}

// TestEvaluateIdempotent tests identical inputs give identical outputs
func TestEvaluateIdempotent(t *testing.T) {
	catalog := randomCatalog(rand.New(rand.NewSource(7)), 200)
	q := allQuery()
	q.OnlyUpcoming = true
	q.SearchText = "ca"

	assert.Equal(t, Evaluate(catalog, q, evalInstant), Evaluate(catalog, q, evalInstant))
}

// TestEvaluateConcurrentCallers tests evaluation from many goroutines against a shared catalog
func TestEvaluateConcurrentCallers(t *testing.T) {
	catalog := randomCatalog(rand.New(rand.NewSource(11)), 300)
	q := allQuery()
	q.SearchText = "run"
	want := Evaluate(catalog, q, evalInstant)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Evaluate(catalog, q, evalInstant))
		}()
	}
	wg.Wait()
}

// TestEvaluateConjunctionAndCompleteness checks results against a brute-force oracle
func TestEvaluateConjunctionAndCompleteness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	catalog := randomCatalog(rng, 400)

	texts := []string{"", "cape", "RUN", "mile", "zzz"}
	provinces := []string{All, "", string(models.ProvinceWesternCape), string(models.ProvinceGauteng)}
	types := []string{All, string(models.RaceTypeTrail), string(models.RaceTypeRoad)}
	difficulties := []string{All, string(models.DifficultyEasy), string(models.DifficultyExtreme)}

	for i := 0; i < 60; i++ {
		q := Query{
			SearchText:   texts[rng.Intn(len(texts))],
			Province:     provinces[rng.Intn(len(provinces))],
			RaceType:     types[rng.Intn(len(types))],
			Difficulty:   difficulties[rng.Intn(len(difficulties))],
			OnlyUpcoming: rng.Intn(2) == 0,
		}

		view := Evaluate(catalog, q, evalInstant)

		wantIDs := map[uuid.UUID]bool{}
		for _, r := range catalog {
			if oracle(r, q) {
				wantIDs[r.ID] = true
			}
		}

		for _, r := range view.Items {
			assert.True(t, oracle(r, q), "record %q should not match %+v", r.Name, q)
		}
		assert.Equal(t, len(wantIDs), view.TotalCount, "query %+v", q)
		assert.True(t, IsSorted(view.Items, SortDateAsc))
	}
}

func oracle(r models.RaceRecord, q Query) bool {
	if strings.TrimSpace(r.Name) == "" || r.RaceDate.IsZero() {
		return false
	}
	if r.Status != models.StatusActive {
		return false
	}
	if q.OnlyUpcoming && r.RaceDate.Before(models.DateOf(evalInstant)) {
		return false
	}
	if q.Province != "" && q.Province != All && string(r.LocationProvince) != q.Province {
		return false
	}
	if q.RaceType != "" && q.RaceType != All && string(r.RaceType) != q.RaceType {
		return false
	}
	if q.Difficulty != "" && q.Difficulty != All && string(r.Difficulty) != q.Difficulty {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(q.SearchText))
	if text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), text) || strings.Contains(strings.ToLower(r.LocationCity), text)
}

func randomCatalog(rng *rand.Rand, n int) []models.RaceRecord {
	words := []string{"Cape", "Trail", "Run", "Mile", "Classic", "Ultra", "Dash", "Marathon"}
	cities := []string{"Cape Town", "Durban", "Pretoria", "Knysna", "Stellenbosch"}
	out := make([]models.RaceRecord, 0, n)
	for i := 0; i < n; i++ {
		r := models.RaceRecord{
			ID:               uuid.New(),
			Name:             words[rng.Intn(len(words))] + " " + words[rng.Intn(len(words))],
			Slug:             fmt.Sprintf("race-%d", i),
			RaceDate:         models.NewDate(2024+rng.Intn(3), time.Month(1+rng.Intn(12)), 1+rng.Intn(28)),
			LocationCity:     cities[rng.Intn(len(cities))],
			LocationProvince: models.Provinces[rng.Intn(len(models.Provinces))],
			RaceType:         models.RaceTypes[rng.Intn(len(models.RaceTypes))],
			Difficulty:       models.Difficulties[rng.Intn(len(models.Difficulties))],
			Status:           models.StatusActive,
		}
		switch rng.Intn(10) {
		case 0:
			r.Status = models.StatusInactive
		case 1:
			r.Name = ""
		}
		out = append(out, r)
	}
	return out
}

// TestQueryHelpers tests default query and filter detection
func TestQueryHelpers(t *testing.T) {
	q := DefaultQuery()
	assert.True(t, q.OnlyUpcoming)
	assert.False(t, q.IsFiltered())
	assert.Equal(t, models.Province(""), q.ProvinceFilter())

	q.Sort = SortPriceAsc
	q.Page = Page{Index: 2, Size: 10}
	assert.False(t, q.IsFiltered())

	q.Difficulty = "hard"
	assert.True(t, q.IsFiltered())
	assert.Equal(t, models.DifficultyHard, q.DifficultyFilter())

	assert.True(t, SortOrder("").IsValid())
	assert.False(t, SortOrder("popularity").IsValid())
}
