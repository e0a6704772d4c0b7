package models

import "time"

type Court struct {
	CourtID        string    `json:"court_id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	SurfaceType    string    `json:"surface_type"`
	NumberOfCourts int       `json:"number_of_courts"`
	IsIndoor       bool      `json:"is_indoor"`
	GoogleMapsLink *string   `json:"google_maps_link,omitempty"`
	CostPerHour    *float64  `json:"cost_per_hour,omitempty"`
	PhotoKey       *string   `json:"-"`
	PhotoURL       *string   `json:"photo_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
