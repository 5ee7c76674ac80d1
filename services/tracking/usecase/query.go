package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/metrics"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/pkg/newrelic"
)

// GetBusStatus never returns an error: a blank id, an unknown bus or a store failure
// all read as NEVER_REPORTED
func (uc *TrackingUC) GetBusStatus(ctx context.Context, busID string, now time.Time) models.BusStatus {
	if !uc.queryableID(busID) {
		status := neverReported(busID)
		uc.collector.ObserveStatuses(metrics.QueryBusStatus, status)
		return status
	}

	record, err := uc.repo.Get(ctx, busID)
	if err != nil {
		uc.collector.StoreError("get")
		logger.WarnCtx(ctx, "Location store read failed, reporting bus as never reported",
			logger.String("bus_id", busID),
			logger.Err(err))
		record = nil
	}

	status := uc.toStatus(busID, record, now)
	uc.collector.ObserveStatuses(metrics.QueryBusStatus, status)
	return status
}

// GetRouteStatuses keeps input order and duplicates and reads the store once
func (uc *TrackingUC) GetRouteStatuses(ctx context.Context, busIDs []string, now time.Time) []models.BusStatus {
	statuses := uc.routeStatuses(ctx, busIDs, now)
	uc.collector.ObserveStatuses(metrics.QueryRouteStatuses, statuses...)
	return statuses
}

// GetRouteStatusesByName lists the route's buses from the registry, ordered by bus number
func (uc *TrackingUC) GetRouteStatusesByName(ctx context.Context, routeName string, now time.Time) ([]models.BusStatus, error) {
	if uc.registry == nil {
		return nil, models.ErrRegistryUnavailable
	}
	routeName = strings.TrimSpace(routeName)
	if routeName == "" {
		return nil, fmt.Errorf("%w: %q", models.ErrRouteNotFound, routeName)
	}

	buses, err := newrelic.WithSegmentAndReturn(ctx, "registry.ListRouteBuses", func() ([]models.RouteBus, error) {
		return uc.registry.ListRouteBuses(ctx, routeName)
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(buses))
	for i, bus := range buses {
		ids[i] = bus.BusID
	}
	logger.DebugCtx(ctx, "Resolved route buses",
		logger.String("route", routeName),
		logger.Strings("bus_ids", ids))
	statuses := uc.routeStatuses(ctx, ids, now)
	uc.collector.ObserveStatuses(metrics.QueryRouteNameStatuses, statuses...)
	return statuses, nil
}

func (uc *TrackingUC) routeStatuses(ctx context.Context, busIDs []string, now time.Time) []models.BusStatus {
	statuses := make([]models.BusStatus, len(busIDs))

	lookup := make([]string, 0, len(busIDs))
	for _, id := range busIDs {
		if uc.queryableID(id) {
			lookup = append(lookup, id)
		}
	}

	var records map[string]*models.BusLocationRecord
	if len(lookup) > 0 {
		var err error
		records, err = uc.repo.GetMany(ctx, lookup)
		if err != nil {
			uc.collector.StoreError("get_many")
			logger.WarnCtx(ctx, "Location store batch read failed, reporting buses as never reported",
				logger.Int("bus_count", len(lookup)),
				logger.Err(err))
			records = nil
		}
	}

	for i, id := range busIDs {
		statuses[i] = uc.toStatus(id, records[id], now)
	}
	return statuses
}

func (uc *TrackingUC) queryableID(busID string) bool {
	trimmed := strings.TrimSpace(busID)
	return trimmed != "" && len(trimmed) <= uc.maxIDLen
}

func (uc *TrackingUC) toStatus(busID string, record *models.BusLocationRecord, now time.Time) models.BusStatus {
	if record == nil {
		return neverReported(busID)
	}
	return models.BusStatus{
		BusID: busID,
		Position: &models.Position{
			Lat:        record.Latitude,
			Lng:        record.Longitude,
			CapturedAt: record.CapturedAt,
			Accuracy:   record.Accuracy,
		},
		Status: uc.policy.Classify(record, now),
	}
}

func neverReported(busID string) models.BusStatus {
	return models.BusStatus{BusID: busID, Status: models.StatusNeverReported}
}
