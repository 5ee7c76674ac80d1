package trackerclient

import (
	"context"
	"fmt"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/pkg/poller"
)

// StatusFetcher is the part of Client a route watcher needs
type StatusFetcher interface {
	GetRouteStatuses(ctx context.Context, busIDs []string) ([]models.BusStatus, error)
}

// RouteWatcher polls the statuses of a fixed set of buses
type RouteWatcher struct {
	fetcher  StatusFetcher
	busIDs   []string
	interval time.Duration
	onUpdate func([]models.BusStatus)
}

// NewRouteWatcher creates a watcher that hands every successful poll to onUpdate
func NewRouteWatcher(fetcher StatusFetcher, busIDs []string, interval time.Duration, onUpdate func([]models.BusStatus)) *RouteWatcher {
	return &RouteWatcher{
		fetcher:  fetcher,
		busIDs:   busIDs,
		interval: interval,
		onUpdate: onUpdate,
	}
}

// Run polls until ctx is done. Failed polls are logged and skipped.
func (w *RouteWatcher) Run(ctx context.Context) error {
	p := poller.New("route-watcher", w.interval, func(ctx context.Context) error {
		statuses, err := w.fetcher.GetRouteStatuses(ctx, w.busIDs)
		if err != nil {
			return fmt.Errorf("failed to fetch route statuses: %w", err)
		}
		w.onUpdate(statuses)
		return nil
	})
	return p.Run(ctx)
}
