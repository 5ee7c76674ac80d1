// Package liveness classifies how fresh a bus position is. Everything here is pure:
// the current time is always passed in.
package liveness

import (
	"fmt"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/models"
)

// Defaults derived from the 10 second client report interval
const (
	DefaultReportInterval    = 10 * time.Second
	DefaultStaleMultiplier   = 3.0
	DefaultOfflineMultiplier = 6.0
)

// Policy holds the two age thresholds
type Policy struct {
	StaleAfter   time.Duration
	OfflineAfter time.Duration
}

// DefaultPolicy is 30s stale, 60s offline
func DefaultPolicy() Policy {
	return PolicyFromInterval(DefaultReportInterval, DefaultStaleMultiplier, DefaultOfflineMultiplier)
}

// PolicyFromInterval scales the thresholds from the expected report interval
func PolicyFromInterval(interval time.Duration, staleMultiplier, offlineMultiplier float64) Policy {
	return Policy{
		StaleAfter:   time.Duration(float64(interval) * staleMultiplier),
		OfflineAfter: time.Duration(float64(interval) * offlineMultiplier),
	}
}

// PolicyFromConfig derives the policy from the interval and applies explicit overrides
func PolicyFromConfig(cfg models.TrackingConfig) (Policy, error) {
	interval := cfg.ReportInterval
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	staleMult, offlineMult := cfg.StaleMultiplier, cfg.OfflineMultiplier
	if staleMult <= 0 {
		staleMult = DefaultStaleMultiplier
	}
	if offlineMult <= 0 {
		offlineMult = DefaultOfflineMultiplier
	}

	p := PolicyFromInterval(interval, staleMult, offlineMult)
	if cfg.StaleAfter > 0 {
		p.StaleAfter = cfg.StaleAfter
	}
	if cfg.OfflineAfter > 0 {
		p.OfflineAfter = cfg.OfflineAfter
	}
	return p, p.Validate()
}

// Validate rejects non-positive or inverted thresholds
func (p Policy) Validate() error {
	if p.StaleAfter <= 0 {
		return fmt.Errorf("staleAfter must be positive, got %s", p.StaleAfter)
	}
	if p.OfflineAfter < p.StaleAfter {
		return fmt.Errorf("offlineAfter (%s) must not be shorter than staleAfter (%s)", p.OfflineAfter, p.StaleAfter)
	}
	return nil
}

// Classify computes the status of a record at now. A nil record means the bus never reported.
func Classify(record *models.BusLocationRecord, now time.Time, p Policy) models.LivenessStatus {
	if record == nil {
		return models.StatusNeverReported
	}
	if !record.SharingEnabled {
		return models.StatusOffline
	}

	// receivedAt is the server clock; capturedAt may be skewed
	age := now.Sub(record.ReceivedAt)
	switch {
	case age <= p.StaleAfter:
		return models.StatusLive
	case age <= p.OfflineAfter:
		return models.StatusStale
	default:
		return models.StatusOffline
	}
}

// Classify applies the policy to a record
func (p Policy) Classify(record *models.BusLocationRecord, now time.Time) models.LivenessStatus {
	return Classify(record, now, p)
}
