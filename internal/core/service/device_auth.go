package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// DeviceAuth implements device registration and token issuance.
type DeviceAuth struct {
	repo      ports.DeviceRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewDeviceAuth(repo ports.DeviceRepository, jwtSecret string, tokenTTL time.Duration) *DeviceAuth {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &DeviceAuth{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register enrolls a device for a trip. The provisioning secret is stored
// only as a bcrypt hash; the returned token carries the device and trip
// identity for the ingest endpoints.
func (s *DeviceAuth) Register(ctx context.Context, deviceID, secret, tripID, role string) (*domain.Device, string, error) {
	if deviceID == "" || secret == "" {
		return nil, "", domain.ErrInvalidCredentials
	}
	if role == "" {
		role = domain.RoleDevice
	}
	if role != domain.RoleDevice && role != domain.RoleAdmin {
		return nil, "", domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	device := &domain.Device{
		DeviceID:   deviceID,
		TripID:     tripID,
		SecretHash: string(hash),
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.repo.Create(ctx, device)
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login re-authenticates a registered device and issues a fresh token.
func (s *DeviceAuth) Login(ctx context.Context, deviceID, secret string) (string, *domain.Device, error) {
	if deviceID == "" || secret == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	device, err := s.repo.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(device.SecretHash), []byte(secret)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(device)
	if err != nil {
		return "", nil, err
	}
	return token, device, nil
}

func (s *DeviceAuth) generateToken(device *domain.Device) (string, error) {
	claims := jwt.MapClaims{
		"device_id": device.DeviceID,
		"trip_id":   device.TripID,
		"role":      device.Role,
		"exp":       time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
