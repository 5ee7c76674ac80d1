package trackerclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/pkg/poller"
	"github.com/piresc/trackmybus/internal/pkg/retry"
)

// ErrPermissionDenied is returned by a PositionSource that lost location permission
var ErrPermissionDenied = errors.New("location permission denied")

const stopSharingTimeout = 5 * time.Second

func isStoreUnavailable(err error) bool {
	return errors.Is(err, models.ErrStoreUnavailable)
}

// Fix is one reading from the device position source
type Fix struct {
	Latitude   float64
	Longitude  float64
	Accuracy   *float64
	CapturedAt time.Time
}

// PositionSource supplies the current device position
type PositionSource interface {
	Position(ctx context.Context) (Fix, error)
}

// PositionSourceFunc adapts a function to PositionSource
type PositionSourceFunc func(ctx context.Context) (Fix, error)

// Position calls f
func (f PositionSourceFunc) Position(ctx context.Context) (Fix, error) {
	return f(ctx)
}

// Reporter is the part of Client a driver session needs
type Reporter interface {
	ReportLocation(ctx context.Context, req models.LocationUpdateRequest) (*models.Ack, error)
	StopSharing(ctx context.Context, busID, sessionID string) (*models.Ack, error)
}

// DriverSession pushes the driver's position every interval while sharing is on.
// It always ends with an explicit stop-sharing signal.
type DriverSession struct {
	reporter  Reporter
	source    PositionSource
	busID     string
	sessionID string
	interval  time.Duration
	backoff   *retry.Retrier
	stopRetry *retry.Retrier
	failures  int
}

// NewDriverSession creates a session for one bus and one session id
func NewDriverSession(reporter Reporter, source PositionSource, busID, sessionID string, interval time.Duration) *DriverSession {
	cfg := retry.DefaultConfig()
	cfg.BaseDelay = interval
	cfg.MaxDelay = 6 * interval

	stopCfg := retry.DefaultConfig()
	stopCfg.MaxDelay = time.Second
	stopCfg.RetryableFunc = isStoreUnavailable

	return &DriverSession{
		reporter:  reporter,
		source:    source,
		busID:     busID,
		sessionID: sessionID,
		interval:  interval,
		backoff:   retry.New(cfg, nil),
		stopRetry: retry.New(stopCfg, logger.GetGlobalLogger()),
	}
}

// Run reports until ctx is cancelled or the source loses permission
func (s *DriverSession) Run(ctx context.Context) error {
	p := poller.New(fmt.Sprintf("driver:%s", s.busID), s.interval, s.tick)
	err := p.Run(ctx)

	// ctx may already be cancelled; the final signal gets its own deadline
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopSharingTimeout)
	defer cancel()
	stopErr := s.stopRetry.Execute(stopCtx, func(ctx context.Context) error {
		_, err := s.reporter.StopSharing(ctx, s.busID, s.sessionID)
		return err
	})
	if stopErr != nil {
		logger.Warn("Failed to send stop-sharing",
			logger.String("bus_id", s.busID),
			logger.Err(stopErr))
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *DriverSession) tick(ctx context.Context) error {
	fix, err := s.source.Position(ctx)
	if errors.Is(err, ErrPermissionDenied) {
		logger.Info("Location permission lost, stopping session", logger.String("bus_id", s.busID))
		return poller.ErrStop
	}
	if err != nil {
		return fmt.Errorf("failed to read position: %w", err)
	}

	lat, lng := fix.Latitude, fix.Longitude
	_, err = s.reporter.ReportLocation(ctx, models.LocationUpdateRequest{
		BusID:      s.busID,
		SessionID:  s.sessionID,
		Latitude:   &lat,
		Longitude:  &lng,
		Accuracy:   fix.Accuracy,
		CapturedAt: fix.CapturedAt,
	})
	switch {
	case err == nil:
		s.failures = 0
		return nil
	case errors.Is(err, models.ErrSessionConflict):
		return s.backOff(ctx, "Another driver session is live, backing off", err)
	case isStoreUnavailable(err):
		return s.backOff(ctx, "Tracker store unavailable, backing off", err)
	default:
		return err
	}
}

// backOff waits an exponentially growing delay on top of the polling interval
func (s *DriverSession) backOff(ctx context.Context, msg string, cause error) error {
	delay := s.backoff.Delay(s.failures)
	s.failures++
	logger.Warn(msg,
		logger.String("bus_id", s.busID),
		logger.Duration("delay", delay),
		logger.Err(cause))
	return retry.Sleep(ctx, delay)
}
