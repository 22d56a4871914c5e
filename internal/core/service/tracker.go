package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// ProgressTracker wraps the pure Derive function with the single-slot
// "previous result" state. The itinerary is read fresh from the source on
// every observation and never cached here.
type ProgressTracker struct {
	source    ports.WaypointSource
	publisher ports.PositionPublisher // optional
	tripID    string
	log       zerolog.Logger

	mu   sync.Mutex
	last *domain.DerivedPosition
}

func NewProgressTracker(source ports.WaypointSource, publisher ports.PositionPublisher, tripID string, log zerolog.Logger) *ProgressTracker {
	return &ProgressTracker{
		source:    source,
		publisher: publisher,
		tripID:    tripID,
		log:       log,
	}
}

// Observe derives a new position for the sample, retains it as context
// for the next call, and pushes it to the live publisher when one is
// configured. A failing waypoint source degrades to the hidden default
// rather than failing the observation.
func (t *ProgressTracker) Observe(ctx context.Context, sample domain.Sample) domain.DerivedPosition {
	waypoints, err := t.source.Waypoints(ctx)
	if err != nil {
		t.log.Warn().Err(err).Msg("waypoint source unavailable, deriving without itinerary")
		waypoints = nil
	}

	t.mu.Lock()
	pos := Derive(&sample, waypoints, t.last)
	t.last = &pos
	t.mu.Unlock()

	if t.publisher != nil {
		if err := t.publisher.PublishPosition(ctx, t.tripID, pos); err != nil {
			t.log.Debug().Err(err).Msg("live position publish failed")
		}
	}

	return pos
}

// LastDerivedPosition returns a copy of the most recent result, or nil
// when nothing has been derived yet.
func (t *ProgressTracker) LastDerivedPosition() *domain.DerivedPosition {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return nil
	}
	cp := *t.last
	return &cp
}
