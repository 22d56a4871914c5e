package ports

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/triplog/tracking-system/internal/core/domain"
)

// SamplePayload is the serialized wire form of a Sample accepted by the
// submission endpoint: decimal-string coordinates, rounded-integer
// accuracy in meters, and an ISO-8601 capture timestamp.
type SamplePayload struct {
	DeviceID   string `json:"device_id"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	AccuracyM  int    `json:"accuracy_m"`
	CapturedAt string `json:"captured_at"`
}

// NewSamplePayload serializes a Sample for submission.
func NewSamplePayload(s domain.Sample) SamplePayload {
	return SamplePayload{
		DeviceID:   s.DeviceID,
		Latitude:   strconv.FormatFloat(s.Coordinates.Lat, 'f', -1, 64),
		Longitude:  strconv.FormatFloat(s.Coordinates.Lng, 'f', -1, 64),
		AccuracyM:  int(math.Round(s.AccuracyM)),
		CapturedAt: s.CapturedAt.UTC().Format(time.RFC3339),
	}
}

// PendingSubmission is a payload that failed remote delivery, held in the
// bounded offline queue for later retry.
type PendingSubmission struct {
	Payload    SamplePayload `json:"payload"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// SampleSubmitter delivers a serialized sample to the remote collector.
// The transport only needs to be idempotent-safe enough for eventual
// retry; a failure is never surfaced to the user.
type SampleSubmitter interface {
	Submit(ctx context.Context, payload SamplePayload) error
}
