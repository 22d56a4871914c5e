package ports

import (
	"context"

	"github.com/triplog/tracking-system/internal/core/domain"
)

// PositionPublisher pushes freshly derived positions to live consumers
// (map renderers). Publishing is best-effort; failures must not affect
// the derivation path.
type PositionPublisher interface {
	PublishPosition(ctx context.Context, tripID string, pos domain.DerivedPosition) error
}
