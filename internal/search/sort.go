package search

import (
	"sort"
	"strings"

	"github.com/EaziLuizi/raceradar/internal/models"
)

type lessFunc func(a, b *models.RaceRecord) int

// byDateNameSlug is the total order every sort falls back to.
func byDateNameSlug(a, b *models.RaceRecord) int {
	if c := a.RaceDate.Compare(b.RaceDate); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Slug, b.Slug)
}

func byPrice(a, b *models.RaceRecord) int {
	fa, fb := a.CheapestEntryFee(), b.CheapestEntryFee()
	switch {
	case fa == nil && fb == nil:
		return 0
	case fa == nil:
		return 1
	case fb == nil:
		return -1
	}
	return fa.Cmp(*fb)
}

func byDifficulty(a, b *models.RaceRecord) int {
	return a.Difficulty.Rank() - b.Difficulty.Rank()
}

func comparatorFor(order SortOrder) lessFunc {
	var primary lessFunc
	switch order.Normalize() {
	case SortDateDesc:
		primary = func(a, b *models.RaceRecord) int { return b.RaceDate.Compare(a.RaceDate) }
	case SortNameAsc:
		primary = func(a, b *models.RaceRecord) int { return strings.Compare(a.Name, b.Name) }
	case SortPriceAsc:
		primary = byPrice
	case SortDifficultyAsc:
		primary = byDifficulty
	default:
		return byDateNameSlug
	}
	return func(a, b *models.RaceRecord) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return byDateNameSlug(a, b)
	}
}

func sortRecords(items []models.RaceRecord, order SortOrder) {
	cmp := comparatorFor(order)
	sort.SliceStable(items, func(i, j int) bool {
		return cmp(&items[i], &items[j]) < 0
	})
}

// IsSorted reports whether items already follow the given order.
func IsSorted(items []models.RaceRecord, order SortOrder) bool {
	cmp := comparatorFor(order)
	return sort.SliceIsSorted(items, func(i, j int) bool {
		return cmp(&items[i], &items[j]) < 0
	})
}
