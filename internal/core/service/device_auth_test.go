package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/triplog/tracking-system/internal/core/domain"
)

type stubDeviceRepo struct {
	devices map[string]*domain.Device
}

func newStubDeviceRepo() *stubDeviceRepo {
	return &stubDeviceRepo{devices: make(map[string]*domain.Device)}
}

func (r *stubDeviceRepo) Create(_ context.Context, d *domain.Device) (*domain.Device, error) {
	if _, ok := r.devices[d.DeviceID]; ok {
		return nil, domain.ErrDeviceExists
	}
	cp := *d
	cp.ID = "oid-" + d.DeviceID
	r.devices[d.DeviceID] = &cp
	return &cp, nil
}

func (r *stubDeviceRepo) FindByDeviceID(_ context.Context, deviceID string) (*domain.Device, error) {
	d, ok := r.devices[deviceID]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	return d, nil
}

const testSecret = "test-signing-secret"

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		t.Fatal("token claims invalid")
	}
	return claims
}

func TestDeviceAuth_RegisterIssuesToken(t *testing.T) {
	svc := NewDeviceAuth(newStubDeviceRepo(), testSecret, time.Hour)

	device, token, err := svc.Register(context.Background(), "dev-001", "s3cret", "trip-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if device.Role != domain.RoleDevice {
		t.Errorf("empty role must default to %s, got %s", domain.RoleDevice, device.Role)
	}
	if device.SecretHash == "s3cret" {
		t.Error("secret must never be stored in clear")
	}

	claims := parseClaims(t, token)
	if claims["device_id"] != "dev-001" || claims["trip_id"] != "trip-1" || claims["role"] != domain.RoleDevice {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestDeviceAuth_RegisterDuplicate(t *testing.T) {
	repo := newStubDeviceRepo()
	svc := NewDeviceAuth(repo, testSecret, time.Hour)

	if _, _, err := svc.Register(context.Background(), "dev-001", "s3cret", "trip-1", ""); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Register(context.Background(), "dev-001", "other", "trip-2", "")
	if !errors.Is(err, domain.ErrDeviceExists) {
		t.Errorf("expected ErrDeviceExists, got %v", err)
	}
}

func TestDeviceAuth_RegisterRejectsBadInput(t *testing.T) {
	svc := NewDeviceAuth(newStubDeviceRepo(), testSecret, time.Hour)

	cases := []struct {
		name                   string
		deviceID, secret, role string
	}{
		{"missing device id", "", "s3cret", ""},
		{"missing secret", "dev-001", "", ""},
		{"unknown role", "dev-001", "s3cret", "superuser"},
	}
	for _, tc := range cases {
		if _, _, err := svc.Register(context.Background(), tc.deviceID, tc.secret, "trip-1", tc.role); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", tc.name, err)
		}
	}
}

func TestDeviceAuth_LoginRoundTrip(t *testing.T) {
	svc := NewDeviceAuth(newStubDeviceRepo(), testSecret, time.Hour)

	if _, _, err := svc.Register(context.Background(), "dev-001", "s3cret", "trip-1", ""); err != nil {
		t.Fatal(err)
	}

	token, device, err := svc.Login(context.Background(), "dev-001", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if device.TripID != "trip-1" {
		t.Errorf("unexpected device: %+v", device)
	}

	claims := parseClaims(t, token)
	if claims["device_id"] != "dev-001" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestDeviceAuth_LoginWrongSecret(t *testing.T) {
	svc := NewDeviceAuth(newStubDeviceRepo(), testSecret, time.Hour)

	if _, _, err := svc.Register(context.Background(), "dev-001", "s3cret", "trip-1", ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Login(context.Background(), "dev-001", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDeviceAuth_LoginUnknownDevice(t *testing.T) {
	svc := NewDeviceAuth(newStubDeviceRepo(), testSecret, time.Hour)

	if _, _, err := svc.Login(context.Background(), "dev-ghost", "s3cret"); !errors.Is(err, domain.ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}
