package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

type DeviceHandler struct {
	authService ports.DeviceAuthService
}

func NewDeviceHandler(authService ports.DeviceAuthService) *DeviceHandler {
	return &DeviceHandler{authService: authService}
}

type registerRequest struct {
	DeviceID string `json:"device_id"`
	Secret   string `json:"secret"`
	TripID   string `json:"trip_id"`
	Role     string `json:"role"`
}

type loginRequest struct {
	DeviceID string `json:"device_id"`
	Secret   string `json:"secret"`
}

type authResponse struct {
	Token  string         `json:"token,omitempty"`
	Device *domain.Device `json:"device,omitempty"`
}

// Register enrolls a new device for a trip.
//
// @Summary      Register a device
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Device registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *DeviceHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	device, token, err := h.authService.Register(c.Request().Context(), req.DeviceID, req.Secret, req.TripID, req.Role)
	if err != nil {
		status := http.StatusInternalServerError
		switch err {
		case domain.ErrDeviceExists:
			status = http.StatusConflict
		case domain.ErrInvalidCredentials:
			status = http.StatusBadRequest
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, authResponse{Token: token, Device: device})
}

// Login re-authenticates a registered device and returns a fresh token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Device credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/login [post]
func (h *DeviceHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	token, device, err := h.authService.Login(c.Request().Context(), req.DeviceID, req.Secret)
	if err != nil {
		status := http.StatusUnauthorized
		switch err {
		case domain.ErrInvalidCredentials:
			status = http.StatusUnauthorized
		case domain.ErrDeviceNotFound:
			status = http.StatusNotFound
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, Device: device})
}
