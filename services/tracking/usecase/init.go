package usecase

import (
	"fmt"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/metrics"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/services/tracking"
	"github.com/piresc/trackmybus/services/tracking/liveness"
)

const defaultMaxBusIDLength = 128

// TrackingUC owns ingestion and queries over the location store
type TrackingUC struct {
	repo      tracking.LocationRepo
	events    tracking.EventGW
	registry  tracking.RegistryGW
	collector *metrics.Collector
	policy    liveness.Policy
	now       func() time.Time
	maxIDLen  int
}

// Option customizes a TrackingUC
type Option func(*TrackingUC)

// WithClock replaces the server clock used for receivedAt
func WithClock(now func() time.Time) Option {
	return func(uc *TrackingUC) {
		uc.now = now
	}
}

// WithEvents publishes an event after every applied write
func WithEvents(events tracking.EventGW) Option {
	return func(uc *TrackingUC) {
		uc.events = events
	}
}

// WithRegistry enables route-name lookups
func WithRegistry(registry tracking.RegistryGW) Option {
	return func(uc *TrackingUC) {
		uc.registry = registry
	}
}

// WithMetrics records outcomes on collector
func WithMetrics(collector *metrics.Collector) Option {
	return func(uc *TrackingUC) {
		uc.collector = collector
	}
}

// NewTrackingUC creates a new tracking usecase instance
func NewTrackingUC(cfg models.TrackingConfig, repo tracking.LocationRepo, opts ...Option) (*TrackingUC, error) {
	policy, err := liveness.PolicyFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid liveness policy: %w", err)
	}

	uc := &TrackingUC{
		repo:     repo,
		policy:   policy,
		now:      models.Now,
		maxIDLen: cfg.MaxBusIDLength,
	}
	if uc.maxIDLen <= 0 {
		uc.maxIDLen = defaultMaxBusIDLength
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

// Policy returns the thresholds in effect
func (uc *TrackingUC) Policy() liveness.Policy {
	return uc.policy
}

var _ tracking.TrackingUC = (*TrackingUC)(nil)
