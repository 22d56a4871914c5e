package domain

import "time"

// DerivedPosition is the computed summary of where a Sample places the
// traveler relative to the itinerary. A fresh instance is produced on
// every derivation; the most recent one is kept only as context for the
// next derivation's movement detection.
type DerivedPosition struct {
	// Visible is false when the sample lies too far off-route (or no
	// derivation was possible) and the position should not be shown.
	Visible bool `json:"visible"`
	// NearestWaypointIndex indexes the waypoint slice of the itinerary.
	NearestWaypointIndex int `json:"nearest_waypoint_index"`
	// Progress is the normalised position in [0,1] between the nearest
	// waypoint (0) and the next one in itinerary order (1).
	Progress float64 `json:"progress"`
	// Moving is derived by comparing against the previous result and the
	// elapsed time; inconclusive situations report false.
	Moving     bool      `json:"moving"`
	ObservedAt time.Time `json:"observed_at"`
}
