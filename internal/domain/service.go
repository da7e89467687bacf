package domain

import "time"

// Service is a catalog entry, e.g. plumbing or electrical work. Prices are
// snapshotted onto bookings at creation and never recomputed.
type Service struct {
	ID              string
	Title           string
	Description     string
	Category        string
	BasePriceCents  int64
	Currency        string
	DurationMinutes int
	Features        []string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Provider struct {
	ID              string
	Name            string
	Latitude        float64
	Longitude       float64
	ServiceRadiusKM float64
	Rating          float64
	Available       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
