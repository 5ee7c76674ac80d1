package tracking

import (
	"context"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/piresc/trackmybus/services/tracking TrackingUC

// TrackingUC defines the ingestion and query operations of the tracker
type TrackingUC interface {
	// ReportLocation validates and stores one driver fix, or applies a stop-sharing signal
	ReportLocation(ctx context.Context, report models.LocationReport) (*models.Ack, error)

	// GetBusStatus never fails; unknown or unreadable buses are NEVER_REPORTED
	GetBusStatus(ctx context.Context, busID string, now time.Time) models.BusStatus
	// GetRouteStatuses returns one status per input id, in input order
	GetRouteStatuses(ctx context.Context, busIDs []string, now time.Time) []models.BusStatus
	// GetRouteStatusesByName resolves the route's buses through the registry first
	GetRouteStatusesByName(ctx context.Context, routeName string, now time.Time) ([]models.BusStatus, error)
}
