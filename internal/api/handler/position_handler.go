package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/triplog/tracking-system/internal/api/metrics"
	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// PositionDispatcher is the interface the handler uses to enqueue
// submitted samples for asynchronous processing.
type PositionDispatcher interface {
	Enqueue(in ports.PositionInput)
	EnqueueBatch(ins []ports.PositionInput)
}

// PositionHandler handles sample submission and live position reads.
type PositionHandler struct {
	dispatcher PositionDispatcher
	live       ports.LivePositionService
}

func NewPositionHandler(dispatcher PositionDispatcher, live ports.LivePositionService) *PositionHandler {
	return &PositionHandler{dispatcher: dispatcher, live: live}
}

// Submit handles POST /api/v1/positions — enqueues one sample, returns 202.
//
// @Summary      Submit a position sample
// @Tags         positions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitPositionRequest  true  "Position sample"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/v1/positions [post]
func (h *PositionHandler) Submit(c echo.Context) error {
	_, deviceID, tripID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req submitPositionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	// The payload's device id must match the token identity; a retried
	// submission from another device's queue is rejected outright.
	if req.DeviceID != deviceID {
		return echo.NewHTTPError(http.StatusForbidden, "device identity mismatch")
	}

	in, err := toPositionInput(req, tripID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(in)
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "position accepted"})
}

// SubmitBatch handles POST /api/v1/positions/batch — a flushed offline
// queue arrives as one ordered array; enqueues all, returns 202.
//
// @Summary      Submit a batch of position samples
// @Tags         positions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []submitPositionRequest  true  "Array of position samples, oldest first"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/v1/positions/batch [post]
func (h *PositionHandler) SubmitBatch(c echo.Context) error {
	_, deviceID, tripID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var reqs []submitPositionRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	ins := make([]ports.PositionInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("position[%d]: %s", i, err.Error()))
		}
		if req.DeviceID != deviceID {
			return echo.NewHTTPError(http.StatusForbidden, "device identity mismatch")
		}
		in, err := toPositionInput(req, tripID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("position[%d]: invalid sample", i))
		}
		ins = append(ins, in)
	}

	h.dispatcher.EnqueueBatch(ins)
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "positions accepted"})
}

// Current handles GET /api/v1/trips/:trip_id/position — derives the
// trip's live route-progress view.
//
// @Summary      Get the live position for a trip
// @Tags         positions
// @Produce      json
// @Param        trip_id  path      string  true  "Trip identifier"
// @Success      200      {object}  positionResponse
// @Failure      404      {object}  map[string]string
// @Router       /api/v1/trips/{trip_id}/position [get]
func (h *PositionHandler) Current(c echo.Context) error {
	tripID := c.Param("trip_id")

	pos, err := h.live.CurrentPosition(c.Request().Context(), tripID)
	if err != nil {
		if err == domain.ErrNoSamples {
			metrics.PositionLookupsTotal.WithLabelValues("no_samples").Inc()
		} else {
			metrics.PositionLookupsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.PositionLookupsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, positionResponse{
		Visible:              pos.Visible,
		NearestWaypointIndex: pos.NearestWaypointIndex,
		Progress:             pos.Progress,
		Moving:               pos.Moving,
		ObservedAt:           pos.ObservedAt.UTC().Format(time.RFC3339),
	})
}

// toPositionInput parses the wire form into the service DTO.
func toPositionInput(r submitPositionRequest, tripID string) (ports.PositionInput, error) {
	lat, err := strconv.ParseFloat(r.Latitude, 64)
	if err != nil {
		return ports.PositionInput{}, echo.NewHTTPError(http.StatusUnprocessableEntity, "latitude is not a decimal number")
	}
	lng, err := strconv.ParseFloat(r.Longitude, 64)
	if err != nil {
		return ports.PositionInput{}, echo.NewHTTPError(http.StatusUnprocessableEntity, "longitude is not a decimal number")
	}
	capturedAt, err := time.Parse(time.RFC3339, r.CapturedAt)
	if err != nil {
		return ports.PositionInput{}, echo.NewHTTPError(http.StatusUnprocessableEntity, "captured_at is not an RFC3339 timestamp")
	}

	return ports.PositionInput{
		DeviceID:   r.DeviceID,
		TripID:     tripID,
		Latitude:   lat,
		Longitude:  lng,
		AccuracyM:  r.AccuracyM,
		CapturedAt: capturedAt,
	}, nil
}
