package domain

import "time"

// Bus is the current-state record for one vehicle. Location fields are
// overwritten in place on every accepted sample; last write wins.
type Bus struct {
	BusID       int64      `json:"bus_id"`
	BusNumber   string     `json:"bus_number"`
	RouteID     *int64     `json:"route_id"`
	Status      string     `json:"status"` // active | inactive
	IsTracking  bool       `json:"is_tracking"`
	CurrentLat  *float64   `json:"current_lat"`
	CurrentLng  *float64   `json:"current_lng"`
	LastUpdated *time.Time `json:"last_updated"`
}

// LiveBus is a tracked bus joined with its route for snapshot queries.
type LiveBus struct {
	Bus
	RouteName  string `json:"route_name"`
	StartPoint string `json:"start_point"`
	EndPoint   string `json:"end_point"`
}

// LocationSample is one appended history row. Immutable once written.
type LocationSample struct {
	LocationID int64     `json:"location_id"`
	BusID      int64     `json:"bus_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`
	Timestamp  time.Time `json:"timestamp"`
}

// Route is read-only from the tracking side; the CRUD layer owns it.
type Route struct {
	RouteID    int64    `json:"route_id"`
	RouteName  string   `json:"route_name"`
	StartPoint string   `json:"start_point"`
	EndPoint   string   `json:"end_point"`
	DistanceKm *float64 `json:"distance_km"`
	Fare       *float64 `json:"fare"`
	Active     bool     `json:"active"`
}

// LocationUpdate is the payload broadcast to subscribers and relayed to
// the message broker after an accepted ingest.
type LocationUpdate struct {
	BusID     int64     `json:"busId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
	RouteID   *int64    `json:"route_id,omitempty"`
}
