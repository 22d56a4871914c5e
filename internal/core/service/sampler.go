package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// Sampler schedule defaults.
const (
	DefaultSampleInterval = 30 * time.Minute
	DefaultAcquireTimeout = 10 * time.Second
	DefaultMaxFixAge      = 5 * time.Minute
)

type samplerState int

const (
	stateIdle samplerState = iota
	stateRequesting
	stateTracking
)

// StartOutcome classifies the result of RequestTracking.
type StartOutcome string

const (
	StartStarted             StartOutcome = "started"
	StartNotAvailable        StartOutcome = "not_available"
	StartPermissionDenied    StartOutcome = "permission_denied"
	StartPositionUnavailable StartOutcome = "position_unavailable"
	StartTimeout             StartOutcome = "timeout"
)

// StartResult is the only sampler outcome ever surfaced to a human. The
// message is an explanation suitable for display, never a raw error:
// tracking is an optional feature and must stay inert on failure.
type StartResult struct {
	Outcome StartOutcome `json:"outcome"`
	Message string       `json:"message"`
}

// SamplerOptions tunes the acquisition schedule. Zero values fall back
// to the defaults above.
type SamplerOptions struct {
	Interval       time.Duration
	AcquireTimeout time.Duration
	MaxFixAge      time.Duration
}

// Sampler owns the tracking lifecycle: a capability check and one initial
// acquisition on request, then periodic re-sampling with delivery and
// offline-queue retry until stopped. The periodic timer is re-armed only
// after the current tick has settled, so ticks never overlap.
type Sampler struct {
	provider  ports.LocationProvider
	submitter ports.SampleSubmitter
	queue     *OfflineQueue
	tracker   *ProgressTracker // optional
	deviceID  string
	opts      SamplerOptions
	log       zerolog.Logger

	mu            sync.Mutex
	state         samplerState
	lastSample    *domain.Sample
	cancel        context.CancelFunc
	stopRequested bool
}

func NewSampler(
	provider ports.LocationProvider,
	submitter ports.SampleSubmitter,
	queue *OfflineQueue,
	tracker *ProgressTracker,
	deviceID string,
	opts SamplerOptions,
	log zerolog.Logger,
) *Sampler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultSampleInterval
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = DefaultAcquireTimeout
	}
	if opts.MaxFixAge <= 0 {
		opts.MaxFixAge = DefaultMaxFixAge
	}
	return &Sampler{
		provider:  provider,
		submitter: submitter,
		queue:     queue,
		tracker:   tracker,
		deviceID:  deviceID,
		opts:      opts,
		log:       log,
	}
}

// RequestTracking checks the location capability, performs one bounded
// acquisition, and on success starts the periodic loop. This is the only
// moment a human is waiting for a result, so failures come back as
// classified, displayable outcomes. Requesting while already tracking
// first disarms the existing loop so two samplers never run at once.
func (s *Sampler) RequestTracking(ctx context.Context) StartResult {
	if !s.provider.Available() {
		return StartResult{
			Outcome: StartNotAvailable,
			Message: "Live tracking is not available on this device.",
		}
	}

	s.mu.Lock()
	if s.state == stateRequesting {
		s.mu.Unlock()
		return StartResult{
			Outcome: StartPositionUnavailable,
			Message: "A tracking request is already in progress.",
		}
	}
	if s.state == stateTracking {
		s.stopLocked()
	}
	s.state = stateRequesting
	s.stopRequested = false
	s.mu.Unlock()

	sample, err := s.acquire(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = stateIdle
		s.stopRequested = false
		s.mu.Unlock()
		s.log.Info().Err(err).Msg("tracking request failed")
		return classifyStartFailure(err)
	}

	if s.tracker != nil {
		s.tracker.Observe(ctx, sample)
	}
	s.deliver(ctx, sample)

	runCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	// a StopTracking that landed while the acquisition was in flight wins:
	// the settled fix was delivered above, but the loop stays disarmed
	if s.stopRequested {
		s.stopRequested = false
		s.state = stateIdle
		s.mu.Unlock()
		cancel()
		s.log.Info().Msg("tracking stopped during the initial acquisition")
		return StartResult{
			Outcome: StartPositionUnavailable,
			Message: "Live tracking was switched off before it could start.",
		}
	}
	s.lastSample = &sample
	s.state = stateTracking
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(runCtx)

	s.log.Info().Str("device_id", s.deviceID).Msg("tracking started")
	return StartResult{Outcome: StartStarted, Message: "Live tracking is on."}
}

// StopTracking disarms the periodic loop and returns to Idle. Safe to
// call at any point and idempotent; an in-flight acquisition may still
// complete, but its result re-arms nothing.
func (s *Sampler) StopTracking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked is called with s.mu held.
func (s *Sampler) stopLocked() {
	switch s.state {
	case stateTracking:
		s.cancel()
		s.cancel = nil
		s.state = stateIdle
		s.log.Info().Msg("tracking stopped")
	case stateRequesting:
		// the in-flight acquisition settles on its own; RequestTracking
		// checks this flag before arming the loop
		s.stopRequested = true
	}
}

// Tracking reports whether the periodic loop is armed.
func (s *Sampler) Tracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateTracking
}

// LastKnownSample returns a copy of the most recently acquired sample,
// or nil when nothing has been acquired yet.
func (s *Sampler) LastKnownSample() *domain.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSample == nil {
		return nil
	}
	cp := *s.lastSample
	return &cp
}

func (s *Sampler) run(ctx context.Context) {
	timer := time.NewTimer(s.opts.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.tick(ctx)
			// re-arm only after the tick has settled
			timer.Reset(s.opts.Interval)
		}
	}
}

// tick performs one background sampling round. Every failure here is
// non-fatal: the round is skipped silently and the timer stays armed for
// the next interval.
func (s *Sampler) tick(ctx context.Context) {
	sample, err := s.acquire(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("periodic sample skipped")
		return
	}

	s.mu.Lock()
	s.lastSample = &sample
	s.mu.Unlock()

	if s.tracker != nil {
		s.tracker.Observe(ctx, sample)
	}
	s.deliver(ctx, sample)

	if n := s.queue.Flush(ctx, s.submitter); n > 0 {
		s.log.Info().Int("delivered", n).Msg("flushed pending submissions")
	}
}

// acquire performs one bounded acquisition attempt and stamps the sample
// with the stable device identity.
func (s *Sampler) acquire(ctx context.Context) (domain.Sample, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.opts.AcquireTimeout)
	defer cancel()

	sample, err := s.provider.Acquire(acquireCtx, ports.AcquireRequest{
		Timeout: s.opts.AcquireTimeout,
		MaxAge:  s.opts.MaxFixAge,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Sample{}, domain.ErrAcquisitionTimeout
		}
		return domain.Sample{}, err
	}

	sample.DeviceID = s.deviceID
	return sample, nil
}

// deliver submits the sample, parking it in the offline queue on failure.
// Submission failures are never surfaced to the user.
func (s *Sampler) deliver(ctx context.Context, sample domain.Sample) {
	payload := ports.NewSamplePayload(sample)
	if err := s.submitter.Submit(ctx, payload); err != nil {
		s.log.Warn().Err(err).Msg("sample submission failed, queued for retry")
		s.queue.Enqueue(payload)
	}
}

func classifyStartFailure(err error) StartResult {
	switch {
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		return StartResult{
			Outcome: StartNotAvailable,
			Message: "Live tracking is not available on this device.",
		}
	case errors.Is(err, domain.ErrPermissionDenied):
		return StartResult{
			Outcome: StartPermissionDenied,
			Message: "Location permission was declined, so live tracking stays off.",
		}
	case errors.Is(err, domain.ErrAcquisitionTimeout):
		return StartResult{
			Outcome: StartTimeout,
			Message: "Finding your position took too long. Please try again in the open.",
		}
	default:
		return StartResult{
			Outcome: StartPositionUnavailable,
			Message: "Your position could not be determined right now.",
		}
	}
}
