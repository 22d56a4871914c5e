package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triplog/tracking-system/internal/core/domain"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call:
//   - role must be non-empty (presence proves the middleware ran).
//   - device role requires a non-empty device_id and trip_id; without them
//     the JWT is structurally valid but operationally unusable — reject
//     with 401.
func ctxClaims(c echo.Context) (role, deviceID, tripID string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	deviceID, _ = c.Get("device_id").(string)
	tripID, _ = c.Get("trip_id").(string)
	if role == domain.RoleDevice && (deviceID == "" || tripID == "") {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing device identity")
	}

	return role, deviceID, tripID, nil
}
