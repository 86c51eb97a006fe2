package service

import (
	"github.com/EaziLuizi/raceradar/internal/models"
	"github.com/EaziLuizi/raceradar/internal/search"
)

// Option is one entry of a filter dropdown
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions lists the closed-set values the browser can filter and sort by.
// Each facet list starts with the "all" sentinel.
type FilterOptions struct {
	Provinces    []Option `json:"provinces"`
	RaceTypes    []Option `json:"race_types"`
	Difficulties []Option `json:"difficulties"`
	SortOrders   []Option `json:"sort_orders"`
}

var sortLabels = map[search.SortOrder]string{
	search.SortDateAsc:       "Date (soonest first)",
	search.SortDateDesc:      "Date (latest first)",
	search.SortNameAsc:       "Name (A-Z)",
	search.SortPriceAsc:      "Entry fee (lowest first)",
	search.SortDifficultyAsc: "Difficulty (easiest first)",
}

// FilterOptions returns the dropdown contents for the race browser
func (f *RaceFinder) FilterOptions() FilterOptions {
	return NewFilterOptions()
}

// NewFilterOptions builds the option lists from the model enums
func NewFilterOptions() FilterOptions {
	opts := FilterOptions{
		Provinces:    []Option{{Value: search.All, Label: "All provinces"}},
		RaceTypes:    []Option{{Value: search.All, Label: "All race types"}},
		Difficulties: []Option{{Value: search.All, Label: "All difficulties"}},
	}

	for _, p := range models.Provinces {
		opts.Provinces = append(opts.Provinces, Option{Value: string(p), Label: string(p)})
	}
	for _, t := range models.RaceTypes {
		opts.RaceTypes = append(opts.RaceTypes, Option{Value: string(t), Label: t.Label()})
	}
	for _, d := range models.Difficulties {
		opts.Difficulties = append(opts.Difficulties, Option{Value: string(d), Label: d.Label()})
	}
	for _, s := range search.SortOrders {
		opts.SortOrders = append(opts.SortOrders, Option{Value: string(s), Label: sortLabels[s]})
	}

	return opts
}
