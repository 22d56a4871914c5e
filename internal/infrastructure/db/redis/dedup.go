package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/triplog/tracking-system/internal/api/metrics"
)

const dedupTTL = 2 * time.Hour

// DedupChecker provides idempotency checks backed by Redis. Retried
// submissions from a device's offline queue carry the original capture
// timestamp, so (device_id, captured_at) identifies a sample exactly.
// Key format: dedup:<device_id>:<captured_at unix>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact sample has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, deviceID string, capturedAt time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(deviceID, capturedAt)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if n > 0 {
		metrics.SamplesDedupTotal.WithLabelValues("hit").Inc()
		return true, nil
	}
	metrics.SamplesDedupTotal.WithLabelValues("miss").Inc()
	return false, nil
}

// Mark records that this sample has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, deviceID string, capturedAt time.Time) error {
	return d.client.Set(ctx, d.key(deviceID, capturedAt), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(deviceID string, capturedAt time.Time) string {
	return fmt.Sprintf("dedup:%s:%d", deviceID, capturedAt.Unix())
}
