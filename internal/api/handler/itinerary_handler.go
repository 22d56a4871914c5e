package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// ItineraryHandler serves and replaces trip waypoint sequences.
type ItineraryHandler struct {
	waypoints ports.WaypointRepository
}

func NewItineraryHandler(waypoints ports.WaypointRepository) *ItineraryHandler {
	return &ItineraryHandler{waypoints: waypoints}
}

type waypointRequest struct {
	ID          string              `json:"id"`
	Name        string              `json:"name" validate:"required"`
	Coordinates *coordinatesRequest `json:"coordinates"`
}

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type replaceItineraryRequest struct {
	Waypoints []waypointRequest `json:"waypoints" validate:"required,dive"`
}

type itineraryResponse struct {
	TripID    string            `json:"trip_id"`
	Waypoints []domain.Waypoint `json:"waypoints"`
}

// Get handles GET /api/v1/trips/:trip_id/itinerary.
//
// @Summary      Get a trip's itinerary
// @Tags         itineraries
// @Produce      json
// @Security     BearerAuth
// @Param        trip_id  path      string  true  "Trip identifier"
// @Success      200      {object}  itineraryResponse
// @Failure      404      {object}  map[string]string
// @Router       /api/v1/trips/{trip_id}/itinerary [get]
func (h *ItineraryHandler) Get(c echo.Context) error {
	tripID := c.Param("trip_id")

	waypoints, err := h.waypoints.ByTrip(c.Request().Context(), tripID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itineraryResponse{TripID: tripID, Waypoints: waypoints})
}

// Replace handles PUT /api/v1/trips/:trip_id/itinerary — swaps the whole
// ordered sequence. Admin only.
//
// @Summary      Replace a trip's itinerary
// @Tags         itineraries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        trip_id  path      string                   true  "Trip identifier"
// @Param        body     body      replaceItineraryRequest  true  "Ordered waypoint sequence"
// @Success      200      {object}  itineraryResponse
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Failure      422      {object}  map[string]string
// @Router       /api/v1/trips/{trip_id}/itinerary [put]
func (h *ItineraryHandler) Replace(c echo.Context) error {
	tripID := c.Param("trip_id")

	var req replaceItineraryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	waypoints := make([]domain.Waypoint, 0, len(req.Waypoints))
	for i, w := range req.Waypoints {
		wp := domain.Waypoint{ID: w.ID, Name: w.Name, Ordinal: i}
		if w.Coordinates != nil {
			wp.Coordinates = &domain.Coordinates{Lat: w.Coordinates.Lat, Lng: w.Coordinates.Lng}
		}
		waypoints = append(waypoints, wp)
	}

	if err := h.waypoints.Replace(c.Request().Context(), tripID, waypoints); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itineraryResponse{TripID: tripID, Waypoints: waypoints})
}
