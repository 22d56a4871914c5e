package ports

import (
	"context"

	"github.com/triplog/tracking-system/internal/core/domain"
)

// DeviceAuthService handles device registration and token issuance.
type DeviceAuthService interface {
	// Register enrolls a device for a trip using a provisioning secret and
	// returns the created device plus a signed token.
	Register(ctx context.Context, deviceID, secret, tripID, role string) (*domain.Device, string, error)
	// Login re-issues a token for an already registered device.
	Login(ctx context.Context, deviceID, secret string) (string, *domain.Device, error)
}
