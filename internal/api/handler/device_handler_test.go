package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/triplog/tracking-system/internal/core/domain"
)

type stubDeviceAuthService struct {
	registerFn func(ctx context.Context, deviceID, secret, tripID, role string) (*domain.Device, string, error)
	loginFn    func(ctx context.Context, deviceID, secret string) (string, *domain.Device, error)
}

func (s *stubDeviceAuthService) Register(ctx context.Context, deviceID, secret, tripID, role string) (*domain.Device, string, error) {
	return s.registerFn(ctx, deviceID, secret, tripID, role)
}

func (s *stubDeviceAuthService) Login(ctx context.Context, deviceID, secret string) (string, *domain.Device, error) {
	return s.loginFn(ctx, deviceID, secret)
}

func TestDeviceHandler_Register_Success(t *testing.T) {
	e := echo.New()
	stub := &stubDeviceAuthService{
		registerFn: func(ctx context.Context, deviceID, secret, tripID, role string) (*domain.Device, string, error) {
			if deviceID != "dev-001" || tripID != "trip-1" {
				t.Fatalf("unexpected args: %s %s", deviceID, tripID)
			}
			return &domain.Device{DeviceID: deviceID, TripID: tripID, Role: domain.RoleDevice}, "token123", nil
		},
	}
	handler := NewDeviceHandler(stub)

	body := strings.NewReader(`{"device_id":"dev-001","secret":"s3cret","trip_id":"trip-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	device, ok := resp["device"].(map[string]any)
	if !ok || device["device_id"] != "dev-001" || device["trip_id"] != "trip-1" {
		t.Fatalf("unexpected device payload: %+v", device)
	}
}

func TestDeviceHandler_Register_DeviceExists(t *testing.T) {
	e := echo.New()
	stub := &stubDeviceAuthService{
		registerFn: func(ctx context.Context, deviceID, secret, tripID, role string) (*domain.Device, string, error) {
			return nil, "", domain.ErrDeviceExists
		},
	}
	handler := NewDeviceHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"device_id":"dev-001"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Register(c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestDeviceHandler_Register_InvalidPayload(t *testing.T) {
	e := echo.New()
	stub := &stubDeviceAuthService{
		registerFn: func(ctx context.Context, deviceID, secret, tripID, role string) (*domain.Device, string, error) {
			t.Fatalf("should not be called")
			return nil, "", nil
		},
	}
	handler := NewDeviceHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("not-json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Register(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeviceHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubDeviceAuthService{
		loginFn: func(ctx context.Context, deviceID, secret string) (string, *domain.Device, error) {
			if deviceID != "dev-001" || secret != "s3cret" {
				t.Fatalf("unexpected args: %s %s", deviceID, secret)
			}
			return "token123", &domain.Device{DeviceID: "dev-001", TripID: "trip-1"}, nil
		},
	}
	handler := NewDeviceHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"device_id":"dev-001","secret":"s3cret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestDeviceHandler_Login_InvalidCredentials(t *testing.T) {
	e := echo.New()
	stub := &stubDeviceAuthService{
		loginFn: func(ctx context.Context, deviceID, secret string) (string, *domain.Device, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewDeviceHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"device_id":"dev-001","secret":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Login(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDeviceHandler_Login_DeviceNotFound(t *testing.T) {
	e := echo.New()
	stub := &stubDeviceAuthService{
		loginFn: func(ctx context.Context, deviceID, secret string) (string, *domain.Device, error) {
			return "", nil, domain.ErrDeviceNotFound
		},
	}
	handler := NewDeviceHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"device_id":"dev-ghost","secret":"pwd"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Login(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
