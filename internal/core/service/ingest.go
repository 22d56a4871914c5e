package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis). Retried
// submissions from the client's offline queue must not produce duplicate
// samples.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, deviceID string, capturedAt time.Time) (bool, error)
	Mark(ctx context.Context, deviceID string, capturedAt time.Time) error
}

type ingestService struct {
	samples ports.SampleRepository
	dedup   DedupChecker
	log     zerolog.Logger
}

// NewIngestService returns an IngestService implementation.
func NewIngestService(samples ports.SampleRepository, dedup DedupChecker, log zerolog.Logger) ports.IngestService {
	return &ingestService{samples: samples, dedup: dedup, log: log}
}

// Process validates, deduplicates, and persists a single submitted
// position sample.
func (s *ingestService) Process(ctx context.Context, in ports.PositionInput) error {
	sample, err := domain.NewSample(
		in.DeviceID,
		domain.Coordinates{Lat: in.Latitude, Lng: in.Longitude},
		float64(in.AccuracyM),
		in.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("process position: %w", err)
	}

	// A dedup store outage must not lose samples: warn and process anyway.
	isDup, err := s.dedup.IsDuplicate(ctx, in.DeviceID, in.CapturedAt)
	if err != nil {
		s.log.Warn().Err(err).Str("device_id", in.DeviceID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().
			Str("device_id", in.DeviceID).
			Time("captured_at", in.CapturedAt).
			Msg("duplicate sample skipped")
		return nil
	}

	if markErr := s.dedup.Mark(ctx, in.DeviceID, in.CapturedAt); markErr != nil {
		s.log.Warn().Err(markErr).Str("device_id", in.DeviceID).Msg("failed to set dedup key")
	}

	if err := s.samples.Insert(ctx, ports.StoredSample{TripID: in.TripID, Sample: sample}); err != nil {
		return fmt.Errorf("process position: insert: %w", err)
	}

	s.log.Info().
		Str("device_id", in.DeviceID).
		Str("trip_id", in.TripID).
		Time("captured_at", in.CapturedAt).
		Msg("position stored")

	return nil
}
