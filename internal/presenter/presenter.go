// Package presenter turns race records into display-ready view models for the UI.
package presenter

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/EaziLuizi/raceradar/internal/models"
)

const (
	cardDateLayout   = "Mon, 02 Jan 2006"
	detailDateLayout = "Monday, 02 January 2006"

	// maxCardDistances is how many distance chips a card shows before "+N more"
	maxCardDistances = 3

	fallbackBadgeColor = "#C2B280"
)

var badgeColors = map[models.Difficulty]string{
	models.DifficultyEasy:     "#5A7247",
	models.DifficultyModerate: "#CC7722",
	models.DifficultyHard:     "#E67E22",
	models.DifficultyExtreme:  "#D4526E",
}

// Badge is a coloured label
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Card is the summary shown in the race grid
type Card struct {
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Date          string   `json:"date"`
	ISODate       string   `json:"iso_date"`
	Location      string   `json:"location"`
	TypeLabel     string   `json:"type_label"`
	Difficulty    Badge    `json:"difficulty"`
	Distances     []string `json:"distances"`
	MoreDistances string   `json:"more_distances,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	DaysUntil     int      `json:"days_until"`
}

// DistanceView is one entry option on the detail page
type DistanceView struct {
	Label string `json:"label"`
	Fee   string `json:"fee,omitempty"`
	Slots string `json:"slots,omitempty"`
}

// Organizer holds the contact details shown on the detail page
type Organizer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Detail is the full race page
type Detail struct {
	Card
	Description   string         `json:"description,omitempty"`
	LongDate      string         `json:"long_date"`
	LongTypeLabel string         `json:"long_type_label"`
	Venue         string         `json:"venue,omitempty"`
	Terrain       string         `json:"terrain,omitempty"`
	Elevation     string         `json:"elevation,omitempty"`
	EntryOpens    string         `json:"entry_opens,omitempty"`
	EntryCloses   string         `json:"entry_closes,omitempty"`
	EntryOpen     bool           `json:"entry_open"`
	FromPrice     string         `json:"from_price,omitempty"`
	AllDistances  []DistanceView `json:"all_distances"`
	WebsiteURL    string         `json:"website_url,omitempty"`
	EntryURL      string         `json:"entry_url,omitempty"`
	Organizer     *Organizer     `json:"organizer,omitempty"`
}

// NewCard builds the grid card for r as of now
func NewCard(r *models.RaceRecord, now time.Time) Card {
	card := Card{
		Slug:       r.Slug,
		Name:       r.Name,
		Date:       r.RaceDate.Format(cardDateLayout),
		ISODate:    r.RaceDate.String(),
		Location:   location(r.LocationCity, string(r.LocationProvince)),
		TypeLabel:  r.RaceType.ShortLabel(),
		Difficulty: DifficultyBadge(r.Difficulty),
		Distances:  []string{},
		ImageURL:   deref(r.ImageURL),
		DaysUntil:  r.RaceDate.DaysUntil(now),
	}

	for i, d := range r.Distances {
		if i == maxCardDistances {
			card.MoreDistances = numberPrinter().Sprintf("+%d more", len(r.Distances)-maxCardDistances)
			break
		}
		card.Distances = append(card.Distances, d.Label)
	}

	return card
}

// NewCards builds cards for a result page, preserving order
func NewCards(races []models.RaceRecord, now time.Time) []Card {
	cards := make([]Card, len(races))
	for i := range races {
		cards[i] = NewCard(&races[i], now)
	}
	return cards
}

// NewDetail builds the detail page for r as of now
func NewDetail(r *models.RaceRecord, now time.Time) Detail {
	p := numberPrinter()
	detail := Detail{
		Card:          NewCard(r, now),
		Description:   deref(r.Description),
		LongDate:      r.RaceDate.Format(detailDateLayout),
		LongTypeLabel: r.RaceType.Label(),
		Venue:         deref(r.LocationVenue),
		Terrain:       r.Terrain,
		EntryOpen:     r.IsEntryOpen(now),
		AllDistances:  make([]DistanceView, 0, len(r.Distances)),
		WebsiteURL:    deref(r.WebsiteURL),
		EntryURL:      deref(r.EntryURL),
	}

	if r.ElevationGain != nil {
		detail.Elevation = p.Sprintf("%dm", *r.ElevationGain)
	}
	if r.EntryOpensDate != nil {
		detail.EntryOpens = r.EntryOpensDate.Format(detailDateLayout)
	}
	if r.EntryClosesDate != nil {
		detail.EntryCloses = r.EntryClosesDate.Format(detailDateLayout)
	}
	if fee := r.CheapestEntryFee(); fee != nil {
		detail.FromPrice = FormatRand(*fee)
	}

	for _, d := range r.Distances {
		view := DistanceView{Label: d.Label}
		if d.EntryFee != nil {
			view.Fee = FormatRand(*d.EntryFee)
		}
		if d.Slots != nil {
			view.Slots = p.Sprintf("%d slots available", *d.Slots)
		}
		detail.AllDistances = append(detail.AllDistances, view)
	}

	if r.OrganizerName != nil || r.OrganizerEmail != nil || r.OrganizerPhone != nil {
		detail.Organizer = &Organizer{
			Name:  deref(r.OrganizerName),
			Email: deref(r.OrganizerEmail),
			Phone: deref(r.OrganizerPhone),
		}
	}

	return detail
}

// DifficultyBadge returns the label and colour for a difficulty code.
// Unknown codes get the neutral sand colour.
func DifficultyBadge(d models.Difficulty) Badge {
	color, ok := badgeColors[d]
	if !ok {
		color = fallbackBadgeColor
	}
	return Badge{Label: d.Label(), Color: color}
}

// FormatRand formats an amount in South African rand with thousands separators,
// e.g. R1,250 or R99.50
func FormatRand(amount decimal.Decimal) string {
	p := numberPrinter()
	if amount.IsInteger() {
		return p.Sprintf("R%d", amount.IntPart())
	}
	return p.Sprintf("R%.2f", amount.Round(2).InexactFloat64())
}

func numberPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

func location(city, province string) string {
	switch {
	case city == "":
		return province
	case province == "":
		return city
	default:
		return city + ", " + province
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
