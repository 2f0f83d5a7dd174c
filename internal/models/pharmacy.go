package models

import "time"

// Pharmacy is an on-duty pharmacy record as returned by a data source.
// Distance is supplied by the source in kilometres; zero means unknown.
type Pharmacy struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Address   string    `json:"address" yaml:"address"`
	District  string    `json:"district" yaml:"district"`
	City      string    `json:"city" yaml:"city"`
	CitySlug  string    `json:"city_slug" yaml:"city_slug"`
	Phone     string    `json:"phone" yaml:"phone"`
	Lat       float64   `json:"lat" yaml:"lat"`
	Lng       float64   `json:"lng" yaml:"lng"`
	Distance  float64   `json:"distance,omitempty" yaml:"distance,omitempty"`
	DutyDate  string    `json:"duty_date,omitempty" yaml:"duty_date,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// HasCoordinates reports whether the pharmacy carries a usable location.
func (p Pharmacy) HasCoordinates() bool {
	return p.Lat != 0 || p.Lng != 0
}

// City is a province that has pharmacy pages.
type City struct {
	Slug      string   `json:"slug" yaml:"slug"`
	Name      string   `json:"name" yaml:"name"`
	Districts []string `json:"districts,omitempty" yaml:"districts,omitempty"`
}

// PharmacyView is a pharmacy enriched with deep links for clients.
type PharmacyView struct {
	Pharmacy
	DirectionsURL string `json:"directions_url"`
	TelURL        string `json:"tel_url,omitempty"`
}
