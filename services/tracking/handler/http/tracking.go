package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/middleware"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/utils"
	"github.com/piresc/trackmybus/services/tracking"
)

// TrackingHandler handles HTTP requests for location ingestion and queries
type TrackingHandler struct {
	trackingUC tracking.TrackingUC
	maxBatch   int
	now        func() time.Time
}

// NewTrackingHandler creates a new tracking HTTP handler
func NewTrackingHandler(trackingUC tracking.TrackingUC, maxBatch int) *TrackingHandler {
	return &TrackingHandler{
		trackingUC: trackingUC,
		maxBatch:   maxBatch,
		now:        models.Now,
	}
}

// StatusForError maps ingestion and registry errors to HTTP status codes
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidCoordinates):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidReport):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSessionConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrStoreUnavailable), errors.Is(err, models.ErrRegistryUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// UpdateLocation ingests one driver fix or stop-sharing signal
func (h *TrackingHandler) UpdateLocation(c echo.Context) error {
	var req models.LocationUpdateRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid location update payload", logger.ErrorField(err))
		return utils.BadRequestResponse(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return utils.BadRequestResponse(c, err.Error())
	}

	if busID, ok := middleware.BusFromContext(c); ok && busID != req.BusID {
		return utils.UnauthorizedResponse(c, "token is not valid for this bus")
	}
	if sid, ok := middleware.SessionFromContext(c); ok {
		req.SessionID = sid
	}

	ack, err := h.trackingUC.ReportLocation(c.Request().Context(), req.ToReport())
	if err != nil {
		if StatusForError(err) >= http.StatusInternalServerError {
			logger.ErrorCtx(c.Request().Context(), "Failed to ingest location",
				logger.String("bus_id", req.BusID),
				logger.Err(err))
		}
		return respondError(c, err)
	}

	middleware.AddAttribute(c, "bus_id", req.BusID)
	return utils.SuccessResponse(c, http.StatusOK, "Location accepted", ack)
}

// GetBusStatus returns the position and liveness of one bus
func (h *TrackingHandler) GetBusStatus(c echo.Context) error {
	busID := c.QueryParam("busId")
	status := h.trackingUC.GetBusStatus(c.Request().Context(), busID, h.now())
	return utils.SuccessResponse(c, http.StatusOK, "Bus status retrieved", status)
}

// GetRouteStatuses returns one status per requested id in request order
func (h *TrackingHandler) GetRouteStatuses(c echo.Context) error {
	busIDs := splitIDs(c.QueryParam("busIds"))
	if h.maxBatch > 0 && len(busIDs) > h.maxBatch {
		return utils.BadRequestResponse(c, "too many bus ids")
	}

	statuses := h.trackingUC.GetRouteStatuses(c.Request().Context(), busIDs, h.now())
	return utils.SuccessResponse(c, http.StatusOK, "Route statuses retrieved", statuses)
}

// GetRouteStatusesByName resolves a route through the bus registry
func (h *TrackingHandler) GetRouteStatusesByName(c echo.Context) error {
	routeName := c.Param("routeName")

	statuses, err := h.trackingUC.GetRouteStatusesByName(c.Request().Context(), routeName, h.now())
	if err != nil {
		if StatusForError(err) >= http.StatusInternalServerError {
			logger.ErrorCtx(c.Request().Context(), "Failed to list route statuses",
				logger.String("route", routeName),
				logger.Err(err))
		}
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Route statuses retrieved", statuses)
}

func respondError(c echo.Context, err error) error {
	msg := err.Error()
	switch StatusForError(err) {
	case http.StatusBadRequest:
		return utils.BadRequestResponse(c, msg)
	case http.StatusNotFound:
		return utils.NotFoundResponse(c, msg)
	case http.StatusConflict:
		return utils.ConflictResponse(c, msg)
	case http.StatusUnprocessableEntity:
		return utils.UnprocessableEntityResponse(c, msg)
	case http.StatusServiceUnavailable:
		return utils.ServiceUnavailableResponse(c, msg)
	default:
		return utils.InternalServerErrorResponse(c, msg)
	}
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
