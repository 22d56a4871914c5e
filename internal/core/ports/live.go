package ports

import (
	"context"

	"github.com/triplog/tracking-system/internal/core/domain"
)

// LivePositionService computes the current route-progress view of a trip
// from its latest stored sample and its itinerary.
type LivePositionService interface {
	CurrentPosition(ctx context.Context, tripID string) (domain.DerivedPosition, error)
}
