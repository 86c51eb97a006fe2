package search

import "github.com/EaziLuizi/raceradar/internal/models"

// FacetCounts maps each facet value present in the browsable set to its record count.
// Counts are informational: they are taken before facet and text filters apply,
// so a dimension's counts do not react to the other dimensions' selections.
type FacetCounts struct {
	Province   map[string]int `json:"province"`
	RaceType   map[string]int `json:"race_type"`
	Difficulty map[string]int `json:"difficulty"`
}

func newFacetCounts() FacetCounts {
	return FacetCounts{
		Province:   make(map[string]int),
		RaceType:   make(map[string]int),
		Difficulty: make(map[string]int),
	}
}

func (f FacetCounts) add(r *models.RaceRecord) {
	f.Province[string(r.LocationProvince)]++
	f.RaceType[string(r.RaceType)]++
	f.Difficulty[string(r.Difficulty)]++
}
