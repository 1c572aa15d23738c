package entity

import "time"

// LocationSample is an ephemeral capture of the employee's coordinates.
// It is never persisted as-is; only a derived reference string (address
// or map link) crosses into the attendance collection.
type LocationSample struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}
