package search

import (
	"strings"

	"github.com/EaziLuizi/raceradar/internal/models"
)

// All is the facet sentinel meaning "do not filter on this dimension".
const All = "all"

// SortOrder selects the ordering of result items.
type SortOrder string

const (
	SortDateAsc       SortOrder = "date-asc"
	SortDateDesc      SortOrder = "date-desc"
	SortNameAsc       SortOrder = "name-asc"
	SortPriceAsc      SortOrder = "price-asc"
	SortDifficultyAsc SortOrder = "difficulty-asc"
)

// SortOrders lists the supported orders, default first.
var SortOrders = []SortOrder{SortDateAsc, SortDateDesc, SortNameAsc, SortPriceAsc, SortDifficultyAsc}

// IsValid reports whether s is a known sort order. The empty order is valid and means the default.
func (s SortOrder) IsValid() bool {
	if s == "" {
		return true
	}
	for _, o := range SortOrders {
		if o == s {
			return true
		}
	}
	return false
}

// Normalize maps the empty or an unknown order to the default date-asc.
func (s SortOrder) Normalize() SortOrder {
	if s == "" || !s.IsValid() {
		return SortDateAsc
	}
	return s
}

// Page selects a window of the sorted results. Index is zero-based.
// A Size of zero or less disables pagination.
type Page struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// Enabled reports whether the page slices results.
func (p Page) Enabled() bool { return p.Size > 0 }

// Query is one immutable evaluation request from the UI.
type Query struct {
	SearchText   string    `json:"search_text"`
	Province     string    `json:"province"`
	RaceType     string    `json:"race_type"`
	Difficulty   string    `json:"difficulty"`
	OnlyUpcoming bool      `json:"only_upcoming"`
	Sort         SortOrder `json:"sort"`
	Page         Page      `json:"page"`
}

// DefaultQuery is the cleared-filters state of the race browser.
func DefaultQuery() Query {
	return Query{
		Province:     All,
		RaceType:     All,
		Difficulty:   All,
		OnlyUpcoming: true,
		Sort:         SortDateAsc,
	}
}

// IsFiltered reports whether any user-controlled filter narrows the catalog.
// Sorting, paging and the upcoming toggle do not count.
func (q Query) IsFiltered() bool {
	return strings.TrimSpace(q.SearchText) != "" ||
		facetActive(q.Province) ||
		facetActive(q.RaceType) ||
		facetActive(q.Difficulty)
}

// WithPage returns a copy of q selecting the given page.
func (q Query) WithPage(index, size int) Query {
	q.Page = Page{Index: index, Size: size}
	return q
}

// ProvinceFilter returns the province facet value, or "" when unfiltered.
func (q Query) ProvinceFilter() models.Province {
	if !facetActive(q.Province) {
		return ""
	}
	return models.Province(q.Province)
}

// RaceTypeFilter returns the race type facet value, or "" when unfiltered.
func (q Query) RaceTypeFilter() models.RaceType {
	if !facetActive(q.RaceType) {
		return ""
	}
	return models.RaceType(q.RaceType)
}

// DifficultyFilter returns the difficulty facet value, or "" when unfiltered.
func (q Query) DifficultyFilter() models.Difficulty {
	if !facetActive(q.Difficulty) {
		return ""
	}
	return models.Difficulty(q.Difficulty)
}

func facetActive(v string) bool {
	return v != "" && v != All
}
