package ports

import (
	"context"

	"github.com/triplog/tracking-system/internal/core/domain"
)

// WaypointSource supplies the ordered itinerary the progress engine
// derives against. It is read fresh on every derivation call and never
// cached by the engine.
type WaypointSource interface {
	Waypoints(ctx context.Context) ([]domain.Waypoint, error)
}
