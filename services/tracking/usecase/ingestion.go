package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/metrics"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/pkg/newrelic"
	"github.com/piresc/trackmybus/internal/utils"
)

// ReportLocation applies one driver report. Stop-sharing signals only flip the flag
// and stamp the stop time; fixes go through validation, the single-writer check and
// the out-of-order check.
func (uc *TrackingUC) ReportLocation(ctx context.Context, report models.LocationReport) (ack *models.Ack, err error) {
	start := time.Now()
	outcome := metrics.OutcomeApplied
	defer func() {
		uc.collector.ObserveReport(outcome, time.Since(start))
	}()

	if report.IsStopSharing() {
		ack, err = uc.stopSharing(ctx, report)
		switch {
		case err != nil && errors.Is(err, models.ErrInvalidReport):
			outcome = metrics.OutcomeInvalid
		case err != nil:
			outcome = metrics.OutcomeStoreError
		case !ack.Applied:
			outcome = metrics.OutcomeUnknownBusStop
		default:
			outcome = metrics.OutcomeStopped
		}
		return ack, err
	}

	if err := validateReport(report, uc.maxIDLen); err != nil {
		outcome = metrics.OutcomeInvalid
		logger.DebugCtx(ctx, "Rejected location report",
			logger.String("bus_id", report.BusID),
			logger.Err(err))
		return nil, err
	}

	now := uc.now()
	existing, err := uc.repo.Get(ctx, report.BusID)
	if err != nil {
		outcome = metrics.OutcomeStoreError
		uc.collector.StoreError("get")
		return nil, err
	}

	if existing != nil {
		if existing.ReporterSessionID != report.ReporterSessionID {
			// Optimistic check: two fresh sessions racing on an idle bus may both pass
			if uc.policy.Classify(existing, now) == models.StatusLive {
				outcome = metrics.OutcomeConflict
				logger.InfoCtx(ctx, "Session conflict on location report",
					logger.String("bus_id", report.BusID),
					logger.String("live_session", existing.ReporterSessionID))
				return nil, fmt.Errorf("%w: bus %s", models.ErrSessionConflict, report.BusID)
			}
		} else if isLate(report, existing) {
			outcome = metrics.OutcomeSuperseded
			return &models.Ack{
				AcceptedAt: existing.ReceivedAt,
				Applied:    false,
				Superseded: true,
			}, nil
		}
	}

	record := &models.BusLocationRecord{
		BusID:             report.BusID,
		Latitude:          *report.Latitude,
		Longitude:         *report.Longitude,
		Accuracy:          report.Accuracy,
		CapturedAt:        report.CapturedAt,
		ReceivedAt:        now,
		ReporterSessionID: report.ReporterSessionID,
		SharingEnabled:    report.SharingEnabled,
		Geohash:           utils.EncodeLocation(*report.Latitude, *report.Longitude, utils.GeohashPrecision),
	}
	if !record.SharingEnabled {
		stoppedAt := report.CapturedAt
		record.StoppedAt = &stoppedAt
	}
	if err := uc.repo.Upsert(ctx, report.BusID, record); err != nil {
		outcome = metrics.OutcomeStoreError
		uc.collector.StoreError("upsert")
		logger.ErrorCtx(ctx, "Failed to store location",
			logger.String("bus_id", report.BusID),
			logger.Err(err))
		return nil, err
	}

	eventType := models.EventLocationUpdated
	if !record.SharingEnabled {
		eventType = models.EventSharingStopped
	}
	uc.publish(ctx, models.LocationEvent{
		Type:           eventType,
		BusID:          record.BusID,
		SessionID:      record.ReporterSessionID,
		Latitude:       record.Latitude,
		Longitude:      record.Longitude,
		Geohash:        record.Geohash,
		SharingEnabled: record.SharingEnabled,
		CapturedAt:     record.CapturedAt,
		OccurredAt:     now,
	})

	return &models.Ack{AcceptedAt: now, Applied: true}, nil
}

func (uc *TrackingUC) stopSharing(ctx context.Context, report models.LocationReport) (*models.Ack, error) {
	busID := strings.TrimSpace(report.BusID)
	if busID == "" || len(busID) > uc.maxIDLen {
		return nil, fmt.Errorf("%w: busId is required", models.ErrInvalidReport)
	}

	now := uc.now()
	// Device time keeps the stop comparable with the session's own fixes
	stoppedAt := report.CapturedAt
	if stoppedAt.IsZero() {
		stoppedAt = now
	}
	found, err := uc.repo.StopSharing(ctx, report.BusID, stoppedAt)
	if err != nil {
		uc.collector.StoreError("stop_sharing")
		logger.ErrorCtx(ctx, "Failed to stop sharing",
			logger.String("bus_id", report.BusID),
			logger.Err(err))
		return nil, err
	}
	if !found {
		return &models.Ack{AcceptedAt: now, Applied: false}, nil
	}

	uc.publish(ctx, models.LocationEvent{
		Type:       models.EventSharingStopped,
		BusID:      report.BusID,
		SessionID:  report.ReporterSessionID,
		CapturedAt: stoppedAt,
		OccurredAt: now,
	})
	return &models.Ack{AcceptedAt: now, Applied: true}, nil
}

// isLate reports whether a same-session fix is older than the stored fix or was
// captured at or before the moment the session stopped sharing
func isLate(report models.LocationReport, existing *models.BusLocationRecord) bool {
	if report.CapturedAt.Before(existing.CapturedAt) {
		return true
	}
	return existing.StoppedAt != nil && !report.CapturedAt.After(*existing.StoppedAt)
}

// publish never changes the outcome of the write that triggered it
func (uc *TrackingUC) publish(ctx context.Context, event models.LocationEvent) {
	if uc.events == nil {
		return
	}
	err := newrelic.WithSegment(ctx, "events.PublishLocationEvent", func() error {
		return uc.events.PublishLocationEvent(ctx, event)
	})
	if err != nil {
		uc.collector.EventPublishError()
		logger.WarnCtx(ctx, "Failed to publish location event",
			logger.String("bus_id", event.BusID),
			logger.String("type", event.Type),
			logger.Err(err))
	}
}

func validateReport(report models.LocationReport, maxIDLen int) error {
	busID := strings.TrimSpace(report.BusID)
	if busID == "" || len(busID) > maxIDLen {
		return fmt.Errorf("%w: busId is required", models.ErrInvalidReport)
	}
	if strings.TrimSpace(report.ReporterSessionID) == "" {
		return fmt.Errorf("%w: sessionId is required", models.ErrInvalidReport)
	}
	if report.CapturedAt.IsZero() {
		return fmt.Errorf("%w: capturedAt is required", models.ErrInvalidReport)
	}
	if report.Latitude == nil || report.Longitude == nil {
		return fmt.Errorf("%w: latitude and longitude are both required", models.ErrInvalidCoordinates)
	}
	if !utils.ValidCoordinates(*report.Latitude, *report.Longitude) {
		return fmt.Errorf("%w: lat=%v lng=%v", models.ErrInvalidCoordinates, *report.Latitude, *report.Longitude)
	}
	if acc := report.Accuracy; acc != nil && (*acc < 0 || math.IsNaN(*acc) || math.IsInf(*acc, 0)) {
		return fmt.Errorf("%w: accuracy must be a non-negative number", models.ErrInvalidCoordinates)
	}
	return nil
}
