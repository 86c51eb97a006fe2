package models

import "strings"

// Province is a South African province name as stored on a race.
type Province string

const (
	ProvinceWesternCape  Province = "Western Cape"
	ProvinceGauteng      Province = "Gauteng"
	ProvinceKwaZuluNatal Province = "KwaZulu-Natal"
	ProvinceEasternCape  Province = "Eastern Cape"
	ProvinceMpumalanga   Province = "Mpumalanga"
	ProvinceLimpopo      Province = "Limpopo"
	ProvinceNorthWest    Province = "North West"
	ProvinceFreeState    Province = "Free State"
	ProvinceNorthernCape Province = "Northern Cape"
)

// Provinces lists the closed province set in filter-menu order.
var Provinces = []Province{
	ProvinceWesternCape,
	ProvinceGauteng,
	ProvinceKwaZuluNatal,
	ProvinceEasternCape,
	ProvinceMpumalanga,
	ProvinceLimpopo,
	ProvinceNorthWest,
	ProvinceFreeState,
	ProvinceNorthernCape,
}

// IsValid reports membership in the closed province set.
func (p Province) IsValid() bool {
	for _, v := range Provinces {
		if v == p {
			return true
		}
	}
	return false
}

// RaceType is the sport code of a race.
type RaceType string

const (
	RaceTypeTrail     RaceType = "trail"
	RaceTypeRoad      RaceType = "road"
	RaceTypeUltra     RaceType = "ultra"
	RaceTypeCycling   RaceType = "cycling"
	RaceTypeMTB       RaceType = "mtb"
	RaceTypeTriathlon RaceType = "triathlon"
	RaceTypeObstacle  RaceType = "obstacle"
	RaceTypeDuathlon  RaceType = "duathlon"
	RaceTypeSwimming  RaceType = "swimming"
)

// RaceTypes lists the closed race type set in filter-menu order.
var RaceTypes = []RaceType{
	RaceTypeTrail,
	RaceTypeRoad,
	RaceTypeUltra,
	RaceTypeCycling,
	RaceTypeMTB,
	RaceTypeTriathlon,
	RaceTypeObstacle,
	RaceTypeDuathlon,
	RaceTypeSwimming,
}

type raceTypeLabels struct {
	short string
	long  string
}

var raceTypeLabelSet = map[RaceType]raceTypeLabels{
	RaceTypeTrail:     {"Trail", "Trail Running"},
	RaceTypeRoad:      {"Road", "Road Running"},
	RaceTypeUltra:     {"Ultra", "Ultra Marathon"},
	RaceTypeCycling:   {"Cycling", "Road Cycling"},
	RaceTypeMTB:       {"MTB", "Mountain Biking"},
	RaceTypeTriathlon: {"Triathlon", "Triathlon"},
	RaceTypeObstacle:  {"OCR", "Obstacle Course"},
	RaceTypeDuathlon:  {"Duathlon", "Duathlon"},
	RaceTypeSwimming:  {"Swim", "Swimming"},
}

// IsValid reports membership in the closed race type set.
func (t RaceType) IsValid() bool {
	_, ok := raceTypeLabelSet[t]
	return ok
}

// ShortLabel is the badge text used on race cards. Unknown codes label as themselves.
func (t RaceType) ShortLabel() string {
	if l, ok := raceTypeLabelSet[t]; ok {
		return l.short
	}
	return string(t)
}

// Label is the full display name used on detail pages and filter menus.
func (t RaceType) Label() string {
	if l, ok := raceTypeLabelSet[t]; ok {
		return l.long
	}
	return string(t)
}

// Difficulty is an ordered race difficulty grade.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
	DifficultyExtreme  Difficulty = "extreme"
)

// Difficulties lists the grades from easiest to hardest.
var Difficulties = []Difficulty{
	DifficultyEasy,
	DifficultyModerate,
	DifficultyHard,
	DifficultyExtreme,
}

// Rank orders difficulties; unknown codes rank after extreme.
func (d Difficulty) Rank() int {
	for i, v := range Difficulties {
		if v == d {
			return i
		}
	}
	return len(Difficulties)
}

// IsValid reports membership in the closed difficulty set.
func (d Difficulty) IsValid() bool {
	return d.Rank() < len(Difficulties)
}

// Label capitalises the code ("hard" -> "Hard").
func (d Difficulty) Label() string {
	if d == "" {
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Status is the publication state of a race.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)
