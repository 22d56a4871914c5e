package ports

import (
	"context"

	"github.com/triplog/tracking-system/internal/core/domain"
)

// StoredSample is a persisted position sample bound to a trip.
type StoredSample struct {
	TripID string        `json:"trip_id" bson:"trip_id"`
	Sample domain.Sample `json:"sample" bson:"sample"`
}

// SampleRepository persists submitted samples and serves the latest one
// per trip for live-position derivation.
type SampleRepository interface {
	Insert(ctx context.Context, s StoredSample) error
	// LatestByTrip returns the most recent sample for the trip by
	// captured_at, or domain.ErrNoSamples when none exist.
	LatestByTrip(ctx context.Context, tripID string) (*StoredSample, error)
}

// WaypointRepository owns persisted trip itineraries.
type WaypointRepository interface {
	// ByTrip returns the trip's waypoints ordered by ordinal, or
	// domain.ErrTripNotFound when the trip has no itinerary.
	ByTrip(ctx context.Context, tripID string) ([]domain.Waypoint, error)
	// Replace swaps the trip's entire itinerary for the given sequence.
	Replace(ctx context.Context, tripID string, waypoints []domain.Waypoint) error
}

// DeviceRepository persists registered devices.
type DeviceRepository interface {
	Create(ctx context.Context, d *domain.Device) (*domain.Device, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*domain.Device, error)
}
