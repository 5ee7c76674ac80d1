package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/trackmybus/internal/pkg/middleware"
	"github.com/piresc/trackmybus/internal/pkg/models"
	nrpkg "github.com/piresc/trackmybus/internal/pkg/newrelic"
	"github.com/piresc/trackmybus/services/tracking"
	httpHandler "github.com/piresc/trackmybus/services/tracking/handler/http"
)

// HTTPHandler combines all handlers for the tracker service
type HTTPHandler struct {
	trackingHTTP *httpHandler.TrackingHandler
	cfg          *models.Config
}

// NewHTTPHandler creates a new combined handler
func NewHTTPHandler(trackingUC tracking.TrackingUC, cfg *models.Config) *HTTPHandler {
	return &HTTPHandler{
		trackingHTTP: httpHandler.NewTrackingHandler(trackingUC, cfg.Tracking.MaxBatch),
		cfg:          cfg,
	}
}

// RegisterRoutes registers all HTTP routes. ingest is applied to the driver route
// after token verification.
func (h *HTTPHandler) RegisterRoutes(e *echo.Echo, ingest ...echo.MiddlewareFunc) {
	api := e.Group("/api/v1")

	// Driver routes
	driverMiddleware := make([]echo.MiddlewareFunc, 0, len(ingest)+1)
	if h.cfg.JWT.Secret != "" {
		driverMiddleware = append(driverMiddleware, middleware.JWTAuthMiddleware(h.cfg.JWT))
	}
	driverMiddleware = append(driverMiddleware, ingest...)
	api.POST("/location-update",
		nrpkg.TraceHandler("tracking.UpdateLocation", h.trackingHTTP.UpdateLocation), driverMiddleware...)

	// Polling routes
	api.GET("/bus-status", nrpkg.TraceHandler("tracking.GetBusStatus", h.trackingHTTP.GetBusStatus))
	api.GET("/route-statuses", nrpkg.TraceHandler("tracking.GetRouteStatuses", h.trackingHTTP.GetRouteStatuses))
	api.GET("/routes/:routeName/statuses",
		nrpkg.TraceHandler("tracking.GetRouteStatusesByName", h.trackingHTTP.GetRouteStatusesByName))
}
