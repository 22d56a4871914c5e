package domain

// Waypoint is one stop on a predefined trip itinerary. The order of the
// waypoint slice is the itinerary order and is significant; a waypoint
// without coordinates is excluded from distance ranking.
type Waypoint struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	Name        string       `json:"name" bson:"name"`
	Ordinal     int          `json:"ordinal" bson:"ordinal"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// HasCoordinates reports whether the waypoint can participate in
// distance ranking.
func (w Waypoint) HasCoordinates() bool {
	return w.Coordinates != nil
}
