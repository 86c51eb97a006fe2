// Package search filters, sorts and pages a race catalog for display.
//
// Evaluate is a pure function of its inputs: it performs no I/O, keeps no state
// between calls and never modifies the catalog, so it may be called concurrently.
package search

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/EaziLuizi/raceradar/internal/models"
)

// ResultView is the display-ready outcome of one evaluation.
type ResultView struct {
	Items      []models.RaceRecord `json:"items"`
	TotalCount int                 `json:"total_count"`
	Skipped    int                 `json:"skipped"`
	Facets     FacetCounts         `json:"facets"`
	Page       Page                `json:"page"`
	PageCount  int                 `json:"page_count"`
}

// Evaluate applies q to catalog as of now.
//
// Records missing a name or race date are excluded and counted in Skipped.
// Remaining records pass, in order, the active-status filter, the upcoming filter,
// the facet filters and the free-text filter, then are sorted and paged.
// TotalCount is the number of matches before paging.
func Evaluate(catalog []models.RaceRecord, q Query, now time.Time) ResultView {
	today := models.DateOf(now)
	view := ResultView{
		Items:  []models.RaceRecord{},
		Facets: newFacetCounts(),
		Page:   q.Page,
	}
	if view.Page.Index < 0 {
		view.Page.Index = 0
	}

	// cases.Caser is stateful; one per evaluation keeps Evaluate safe for concurrent use.
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.SearchText))

	matched := make([]models.RaceRecord, 0, len(catalog))
	for i := range catalog {
		r := &catalog[i]
		if !r.HasRequiredFields() {
			view.Skipped++
			continue
		}
		if !r.IsActive() {
			continue
		}
		if q.OnlyUpcoming && r.RaceDate.Before(today) {
			continue
		}

		view.Facets.add(r)

		if !matchesFacets(r, q) {
			continue
		}
		if needle != "" && !matchesText(r, needle, fold) {
			continue
		}
		matched = append(matched, *r)
	}

	sortRecords(matched, q.Sort)

	view.TotalCount = len(matched)
	view.PageCount = pageCount(view.TotalCount, q.Page)
	view.Items = paginate(matched, q.Page)
	return view
}

func matchesFacets(r *models.RaceRecord, q Query) bool {
	if facetActive(q.Province) && string(r.LocationProvince) != q.Province {
		return false
	}
	if facetActive(q.RaceType) && string(r.RaceType) != q.RaceType {
		return false
	}
	if facetActive(q.Difficulty) && string(r.Difficulty) != q.Difficulty {
		return false
	}
	return true
}

func matchesText(r *models.RaceRecord, needle string, fold cases.Caser) bool {
	return strings.Contains(fold.String(r.Name), needle) ||
		strings.Contains(fold.String(r.LocationCity), needle)
}

func paginate(items []models.RaceRecord, p Page) []models.RaceRecord {
	if !p.Enabled() {
		return items
	}
	index := p.Index
	if index < 0 {
		index = 0
	}
	// compare page indexes rather than offsets so huge values cannot overflow
	if index >= pageCount(len(items), p) {
		return []models.RaceRecord{}
	}
	start := index * p.Size
	end := len(items)
	if p.Size < end-start {
		end = start + p.Size
	}
	return items[start:end]
}

func pageCount(total int, p Page) int {
	if total == 0 {
		return 0
	}
	if !p.Enabled() {
		return 1
	}
	pages := total / p.Size
	if total%p.Size != 0 {
		pages++
	}
	return pages
}
