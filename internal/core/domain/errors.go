package domain

import "errors"

// Acquisition failure taxonomy. These classify why a location could not
// be obtained; they are contained within the sampler and only ever
// surfaced as user-facing explanations on the initial tracking request.
var (
	ErrCapabilityUnavailable = errors.New("location capability unavailable")
	ErrPermissionDenied      = errors.New("location permission denied")
	ErrPositionUnavailable   = errors.New("position unavailable")
	ErrAcquisitionTimeout    = errors.New("location acquisition timed out")
)

// Server-side errors.
var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrDeviceExists       = errors.New("device already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTripNotFound       = errors.New("trip not found")
	ErrNoSamples          = errors.New("no samples recorded for trip")
)
