package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// LivePositionService runs the progress engine server-side: the latest
// stored sample for a trip plus its itinerary yield the position shown to
// blog readers. The previous result per trip is retained in memory as
// movement-detection context, mirroring the client-side tracker.
type LivePositionService struct {
	samples   ports.SampleRepository
	waypoints ports.WaypointRepository
	log       zerolog.Logger

	mu   sync.Mutex
	last map[string]*domain.DerivedPosition
}

func NewLivePositionService(samples ports.SampleRepository, waypoints ports.WaypointRepository, log zerolog.Logger) *LivePositionService {
	return &LivePositionService{
		samples:   samples,
		waypoints: waypoints,
		log:       log,
		last:      make(map[string]*domain.DerivedPosition),
	}
}

// CurrentPosition derives the trip's current route-progress view.
// A trip without an itinerary degrades to the hidden default; a trip
// without any samples is domain.ErrNoSamples.
func (s *LivePositionService) CurrentPosition(ctx context.Context, tripID string) (domain.DerivedPosition, error) {
	stored, err := s.samples.LatestByTrip(ctx, tripID)
	if err != nil {
		return domain.DerivedPosition{}, err
	}

	waypoints, err := s.waypoints.ByTrip(ctx, tripID)
	if err != nil && !errors.Is(err, domain.ErrTripNotFound) {
		return domain.DerivedPosition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := Derive(&stored.Sample, waypoints, s.last[tripID])
	cp := pos
	s.last[tripID] = &cp
	return pos, nil
}
