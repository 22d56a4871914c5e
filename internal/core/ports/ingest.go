package ports

import (
	"context"
	"time"
)

// PositionInput is the DTO passed from the transport layer to the
// IngestService for one submitted position sample.
type PositionInput struct {
	DeviceID   string
	TripID     string
	Latitude   float64
	Longitude  float64
	AccuracyM  int
	CapturedAt time.Time
}

// IngestService processes submitted position samples on the server side.
type IngestService interface {
	Process(ctx context.Context, in PositionInput) error
}
