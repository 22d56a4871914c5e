package handler

// submitPositionRequest is the wire form produced by the device agent:
// decimal-string coordinates, whole-meter accuracy, ISO-8601 capture
// timestamp.
type submitPositionRequest struct {
	DeviceID   string `json:"device_id"   validate:"required"`
	Latitude   string `json:"latitude"    validate:"required"`
	Longitude  string `json:"longitude"   validate:"required"`
	AccuracyM  int    `json:"accuracy_m"  validate:"gte=0"`
	CapturedAt string `json:"captured_at" validate:"required"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

type positionResponse struct {
	Visible              bool    `json:"visible"`
	NearestWaypointIndex int     `json:"nearest_waypoint_index"`
	Progress             float64 `json:"progress"`
	Moving               bool    `json:"moving"`
	ObservedAt           string  `json:"observed_at"`
}
