// Package lookup defines the wire contract between the rating service and
// the vehicle data provider. It is a separate module so the mock provider
// and the service share one source of truth for the JSON shapes.
package lookup

import "time"

// VehicleFacts is the decoded identity of a VIN.
type VehicleFacts struct {
	VIN       string    `json:"vin"`
	Year      int       `json:"year"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	BodyStyle string    `json:"body_style,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ValueEstimate is the provider's current market value for a vehicle,
// in whole dollars.
type ValueEstimate struct {
	VIN       string    `json:"vin"`
	Value     int       `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SafetyRecord is the crash-test rating for a year/make/model, on a
// 1 to 5 scale.
type SafetyRecord struct {
	Year      int       `json:"year"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Rating    int       `json:"rating"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ErrorResponse is the provider's error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
