package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

type stubProvider struct {
	mu        sync.Mutex
	available bool
	sample    domain.Sample
	err       error
	calls     int
}

func (p *stubProvider) Available() bool { return p.available }

func (p *stubProvider) Acquire(_ context.Context, _ ports.AcquireRequest) (domain.Sample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return domain.Sample{}, p.err
	}
	return p.sample, nil
}

func (p *stubProvider) acquireCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// blockingProvider parks Acquire until released, so tests can interleave
// calls with an acquisition still in flight.
type blockingProvider struct {
	sample  domain.Sample
	entered chan struct{}
	release chan struct{}
}

func (p *blockingProvider) Available() bool { return true }

func (p *blockingProvider) Acquire(ctx context.Context, _ ports.AcquireRequest) (domain.Sample, error) {
	p.entered <- struct{}{}
	select {
	case <-p.release:
		return p.sample, nil
	case <-ctx.Done():
		return domain.Sample{}, ctx.Err()
	}
}

func fixAt(lat, lng float64) domain.Sample {
	return domain.Sample{
		Coordinates: domain.Coordinates{Lat: lat, Lng: lng},
		AccuracyM:   12.4,
		CapturedAt:  time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func newTestSampler(p ports.LocationProvider, sub ports.SampleSubmitter, opts SamplerOptions) (*Sampler, *OfflineQueue) {
	q := NewOfflineQueue(newMemStore(), 10, zerolog.Nop())
	return NewSampler(p, sub, q, nil, "dev-test-01", opts, zerolog.Nop()), q
}

func TestRequestTracking_NotAvailable(t *testing.T) {
	p := &stubProvider{available: false}
	s, _ := newTestSampler(p, &stubSubmitter{}, SamplerOptions{})

	res := s.RequestTracking(context.Background())
	if res.Outcome != StartNotAvailable {
		t.Errorf("expected %s, got %s", StartNotAvailable, res.Outcome)
	}
	if s.Tracking() {
		t.Error("sampler must stay idle when capability is missing")
	}
	if p.acquireCalls() != 0 {
		t.Error("no acquisition should be attempted without the capability")
	}
}

func TestRequestTracking_PermissionDenied(t *testing.T) {
	p := &stubProvider{available: true, err: domain.ErrPermissionDenied}
	s, _ := newTestSampler(p, &stubSubmitter{}, SamplerOptions{})

	res := s.RequestTracking(context.Background())
	if res.Outcome != StartPermissionDenied {
		t.Errorf("expected %s, got %s", StartPermissionDenied, res.Outcome)
	}
	if res.Message == "" {
		t.Error("start failures must carry a displayable message")
	}
	if s.Tracking() {
		t.Error("sampler must stay idle after a denied permission")
	}
}

func TestRequestTracking_Timeout(t *testing.T) {
	p := &stubProvider{available: true, err: domain.ErrAcquisitionTimeout}
	s, _ := newTestSampler(p, &stubSubmitter{}, SamplerOptions{})

	if res := s.RequestTracking(context.Background()); res.Outcome != StartTimeout {
		t.Errorf("expected %s, got %s", StartTimeout, res.Outcome)
	}
}

func TestRequestTracking_UnknownErrorIsPositionUnavailable(t *testing.T) {
	p := &stubProvider{available: true, err: errors.New("gps cold start")}
	s, _ := newTestSampler(p, &stubSubmitter{}, SamplerOptions{})

	if res := s.RequestTracking(context.Background()); res.Outcome != StartPositionUnavailable {
		t.Errorf("expected %s, got %s", StartPositionUnavailable, res.Outcome)
	}
}

func TestRequestTracking_SuccessSubmitsStampedPayload(t *testing.T) {
	p := &stubProvider{available: true, sample: fixAt(48.85, 2.35)}
	sub := &stubSubmitter{}
	s, _ := newTestSampler(p, sub, SamplerOptions{Interval: time.Hour})
	defer s.StopTracking()

	res := s.RequestTracking(context.Background())
	if res.Outcome != StartStarted {
		t.Fatalf("expected %s, got %s (%s)", StartStarted, res.Outcome, res.Message)
	}
	if !s.Tracking() {
		t.Error("sampler must report tracking after a successful start")
	}

	got := sub.submitted()
	if len(got) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(got))
	}
	if got[0].DeviceID != "dev-test-01" {
		t.Errorf("payload must carry the stable device id, got %q", got[0].DeviceID)
	}
	if got[0].Latitude != "48.85" || got[0].Longitude != "2.35" {
		t.Errorf("unexpected coordinates: %s,%s", got[0].Latitude, got[0].Longitude)
	}
	if got[0].AccuracyM != 12 {
		t.Errorf("accuracy must be rounded to whole meters, got %d", got[0].AccuracyM)
	}
	if got[0].CapturedAt != "2026-05-10T12:00:00Z" {
		t.Errorf("unexpected capture timestamp: %s", got[0].CapturedAt)
	}

	last := s.LastKnownSample()
	if last == nil || last.DeviceID != "dev-test-01" {
		t.Errorf("last known sample not retained: %+v", last)
	}
}

func TestRequestTracking_SubmitFailureQueuesButStillStarts(t *testing.T) {
	p := &stubProvider{available: true, sample: fixAt(48.85, 2.35)}
	sub := &stubSubmitter{failFn: func(ports.SamplePayload) error {
		return errors.New("collector unreachable")
	}}
	s, q := newTestSampler(p, sub, SamplerOptions{Interval: time.Hour})
	defer s.StopTracking()

	res := s.RequestTracking(context.Background())
	if res.Outcome != StartStarted {
		t.Fatalf("a failed submission must not fail the start, got %s", res.Outcome)
	}
	if q.Len() != 1 {
		t.Errorf("failed submission must land in the offline queue, got %d entries", q.Len())
	}
}

func TestStopTracking_Idempotent(t *testing.T) {
	p := &stubProvider{available: true, sample: fixAt(48.85, 2.35)}
	s, _ := newTestSampler(p, &stubSubmitter{}, SamplerOptions{Interval: time.Hour})

	// stopping while idle is a no-op
	s.StopTracking()

	if res := s.RequestTracking(context.Background()); res.Outcome != StartStarted {
		t.Fatalf("start failed: %s", res.Outcome)
	}

	s.StopTracking()
	if s.Tracking() {
		t.Error("sampler must be idle after stop")
	}
	s.StopTracking()
	s.StopTracking()
	if s.Tracking() {
		t.Error("repeated stops must stay idle")
	}
}

func TestStopTracking_DuringInitialAcquisitionArmsNothing(t *testing.T) {
	p := &blockingProvider{
		sample:  fixAt(48.85, 2.35),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s, _ := newTestSampler(p, &stubSubmitter{}, SamplerOptions{
		Interval:       time.Hour,
		AcquireTimeout: time.Second,
	})

	results := make(chan StartResult, 1)
	go func() { results <- s.RequestTracking(context.Background()) }()

	// stop lands while the first acquisition is still blocked
	<-p.entered
	s.StopTracking()
	close(p.release)

	res := <-results
	if res.Outcome == StartStarted {
		t.Fatalf("a stop during the in-flight acquisition must not start tracking, got %s", res.Outcome)
	}
	if res.Message == "" {
		t.Error("the stopped request must still carry a displayable message")
	}
	if s.Tracking() {
		t.Error("the periodic loop must not be armed after a mid-acquisition stop")
	}

	// a later request must start cleanly despite the earlier stop
	go func() { results <- s.RequestTracking(context.Background()) }()
	<-p.entered
	res = <-results
	if res.Outcome != StartStarted {
		t.Fatalf("restart after a mid-acquisition stop failed: %s", res.Outcome)
	}
	s.StopTracking()
}

func TestTick_FailureIsSilentlySkipped(t *testing.T) {
	p := &stubProvider{available: true, err: domain.ErrPositionUnavailable}
	sub := &stubSubmitter{}
	s, q := newTestSampler(p, sub, SamplerOptions{})

	s.tick(context.Background())

	if len(sub.submitted()) != 0 {
		t.Error("a failed tick must not submit anything")
	}
	if q.Len() != 0 {
		t.Error("a failed tick must not queue anything")
	}
	if s.LastKnownSample() != nil {
		t.Error("a failed tick must not update the last known sample")
	}
}

func TestTick_FlushesPendingAfterDelivery(t *testing.T) {
	p := &stubProvider{available: true, sample: fixAt(45.75, 4.85)}
	sub := &stubSubmitter{}
	s, q := newTestSampler(p, sub, SamplerOptions{})

	q.Enqueue(payloadN(0))
	q.Enqueue(payloadN(1))

	s.tick(context.Background())

	if q.Len() != 0 {
		t.Errorf("tick must flush the offline queue, %d entries left", q.Len())
	}
	// fresh sample first, then the two retried payloads
	if got := sub.submitted(); len(got) != 3 {
		t.Errorf("expected 3 submissions (1 fresh + 2 retried), got %d", len(got))
	}
}

func TestSampler_PeriodicLoopSamplesWithoutOverlap(t *testing.T) {
	p := &stubProvider{available: true, sample: fixAt(45.75, 4.85)}
	sub := &stubSubmitter{}
	s, _ := newTestSampler(p, sub, SamplerOptions{Interval: 20 * time.Millisecond})

	if res := s.RequestTracking(context.Background()); res.Outcome != StartStarted {
		t.Fatalf("start failed: %s", res.Outcome)
	}

	time.Sleep(150 * time.Millisecond)
	s.StopTracking()

	ticks := p.acquireCalls()
	if ticks < 3 {
		t.Errorf("expected several periodic acquisitions, got %d", ticks)
	}

	// after stop, the loop must be disarmed
	settled := p.acquireCalls()
	time.Sleep(100 * time.Millisecond)
	if p.acquireCalls() != settled {
		t.Error("acquisitions continued after stop")
	}
}

func TestRequestTracking_RestartReplacesRunningLoop(t *testing.T) {
	p := &stubProvider{available: true, sample: fixAt(45.75, 4.85)}
	s, _ := newTestSampler(p, &stubSubmitter{}, SamplerOptions{Interval: time.Hour})
	defer s.StopTracking()

	if res := s.RequestTracking(context.Background()); res.Outcome != StartStarted {
		t.Fatalf("first start failed: %s", res.Outcome)
	}
	if res := s.RequestTracking(context.Background()); res.Outcome != StartStarted {
		t.Fatalf("second start failed: %s", res.Outcome)
	}
	if !s.Tracking() {
		t.Error("sampler must be tracking after the restart")
	}
}
