package gps

import (
	"context"
	"sync"
	"time"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// SimulatedProvider replays a fixed route as location fixes, advancing
// one route point per acquisition and holding the last point once the
// route is exhausted. Useful for exercising the full sampling pipeline
// without a receiver attached.
type SimulatedProvider struct {
	route []domain.Coordinates

	mu   sync.Mutex
	next int
}

func NewSimulatedProvider(route []domain.Coordinates) *SimulatedProvider {
	return &SimulatedProvider{route: route}
}

func (p *SimulatedProvider) Available() bool {
	return len(p.route) > 0
}

func (p *SimulatedProvider) Acquire(_ context.Context, _ ports.AcquireRequest) (domain.Sample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.route) == 0 {
		return domain.Sample{}, domain.ErrCapabilityUnavailable
	}

	coords := p.route[p.next]
	if p.next < len(p.route)-1 {
		p.next++
	}

	return domain.Sample{
		Coordinates: coords,
		AccuracyM:   5,
		CapturedAt:  time.Now().UTC(),
	}, nil
}
