package ports

import (
	"context"
	"time"

	"github.com/triplog/tracking-system/internal/core/domain"
)

// AcquireRequest bounds a single location acquisition attempt.
type AcquireRequest struct {
	// Timeout is the maximum time the provider may spend obtaining a fix.
	Timeout time.Duration
	// MaxAge allows the provider to return a cached fix up to this old
	// instead of performing a fresh (and possibly costly) lookup.
	MaxAge time.Duration
}

// LocationProvider abstracts the platform location capability. Acquire
// failures are classified with the domain acquisition errors
// (ErrPermissionDenied, ErrPositionUnavailable, ErrAcquisitionTimeout).
type LocationProvider interface {
	// Available reports whether the capability exists at all. When false,
	// tracking is silently unavailable rather than an error condition.
	Available() bool
	Acquire(ctx context.Context, req AcquireRequest) (domain.Sample, error)
}
