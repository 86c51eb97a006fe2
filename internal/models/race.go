package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RaceRecord represents a race event listed in the catalog
type RaceRecord struct {
	ID               uuid.UUID  `db:"id" json:"id" validate:"required"`
	Name             string     `db:"name" json:"name" validate:"required"`
	Slug             string     `db:"slug" json:"slug" validate:"required,slug"`
	Description      *string    `db:"description" json:"description"`
	RaceDate         Date       `db:"race_date" json:"race_date"`
	EntryOpensDate   *Date      `db:"entry_opens_date" json:"entry_opens_date"`
	EntryClosesDate  *Date      `db:"entry_closes_date" json:"entry_closes_date"`
	LocationCity     string     `db:"location_city" json:"location_city" validate:"required"`
	LocationProvince Province   `db:"location_province" json:"location_province" validate:"required,province"`
	LocationVenue    *string    `db:"location_venue" json:"location_venue"`
	RaceType         RaceType   `db:"race_type" json:"race_type" validate:"required,racetype"`
	Terrain          string     `db:"terrain" json:"terrain"`
	ElevationGain    *int       `db:"elevation_gain" json:"elevation_gain" validate:"omitempty,gte=0"`
	Difficulty       Difficulty `db:"difficulty" json:"difficulty" validate:"required,difficulty"`
	Distances        []Distance `db:"distances" json:"distances" validate:"dive"`
	WebsiteURL       *string    `db:"website_url" json:"website_url" validate:"omitempty,url"`
	EntryURL         *string    `db:"entry_url" json:"entry_url" validate:"omitempty,url"`
	OrganizerName    *string    `db:"organizer_name" json:"organizer_name"`
	OrganizerEmail   *string    `db:"organizer_email" json:"organizer_email" validate:"omitempty,email"`
	OrganizerPhone   *string    `db:"organizer_phone" json:"organizer_phone"`
	ImageURL         *string    `db:"image_url" json:"image_url" validate:"omitempty,url"`
	Status           Status     `db:"status" json:"status" validate:"oneof=active inactive"`
}

// Distance is one entry option of a race, e.g. "21km" with its fee and field size
type Distance struct {
	Label    string           `json:"distance" validate:"required"`
	EntryFee *decimal.Decimal `json:"entry_fee,omitempty"`
	Slots    *int             `json:"slots,omitempty" validate:"omitempty,gte=0"`
}

// IsActive checks if the race may be browsed
func (r *RaceRecord) IsActive() bool {
	return r.Status == StatusActive
}

// HasRequiredFields reports whether the record carries a name and a race date.
// Records failing this are unusable for listing.
func (r *RaceRecord) HasRequiredFields() bool {
	return strings.TrimSpace(r.Name) != "" && !r.RaceDate.IsZero()
}

// IsUpcoming checks if the race date is today or later relative to now's UTC date
func (r *RaceRecord) IsUpcoming(now time.Time) bool {
	return !r.RaceDate.Before(DateOf(now))
}

// IsEntryOpen reports whether entries are open on now's date.
// Missing bounds are treated as unbounded on that side.
func (r *RaceRecord) IsEntryOpen(now time.Time) bool {
	today := DateOf(now)
	if r.EntryOpensDate != nil && !r.EntryOpensDate.IsZero() && today.Before(*r.EntryOpensDate) {
		return false
	}
	if r.EntryClosesDate != nil && !r.EntryClosesDate.IsZero() && today.After(*r.EntryClosesDate) {
		return false
	}
	return true
}

// CheapestEntryFee returns the lowest fee across distances, or nil when no distance lists one.
func (r *RaceRecord) CheapestEntryFee() *decimal.Decimal {
	var min *decimal.Decimal
	for i := range r.Distances {
		fee := r.Distances[i].EntryFee
		if fee == nil {
			continue
		}
		if min == nil || fee.LessThan(*min) {
			f := *fee
			min = &f
		}
	}
	return min
}
