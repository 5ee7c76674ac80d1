package metrics

import (
	"net/http"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report outcomes
const (
	OutcomeApplied        = "applied"
	OutcomeSuperseded     = "superseded"
	OutcomeStopped        = "sharing_stopped"
	OutcomeUnknownBusStop = "stop_without_record"
	OutcomeConflict       = "session_conflict"
	OutcomeInvalid        = "invalid"
	OutcomeStoreError     = "store_error"
)

// Query kinds
const (
	QueryBusStatus         = "bus_status"
	QueryRouteStatuses     = "route_statuses"
	QueryRouteNameStatuses = "route_name_statuses"
)

// Collector holds the tracker's prometheus instruments. A nil *Collector is a no-op.
type Collector struct {
	reg *prometheus.Registry

	Reports         *prometheus.CounterVec // outcome label
	ReportDuration  prometheus.Histogram
	Queries         *prometheus.CounterVec // kind label
	StatusesServed  *prometheus.CounterVec // status label
	StoreErrors     *prometheus.CounterVec // op label
	EventPublishErr prometheus.Counter

	StaleAfter   prometheus.Gauge // seconds
	OfflineAfter prometheus.Gauge // seconds
}

// NewCollector builds a collector on its own registry
func NewCollector(staleAfter, offlineAfter time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_location_reports_total",
			Help: "Location reports handled, by outcome.",
		}, []string{"outcome"}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_location_report_duration_seconds",
			Help:    "Time spent handling one location report.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_status_queries_total",
			Help: "Status queries served, by kind.",
		}, []string{"kind"}),
		StatusesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_statuses_served_total",
			Help: "Bus statuses returned to clients, by liveness.",
		}, []string{"status"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_store_errors_total",
			Help: "Location store failures, by operation.",
		}, []string{"op"}),
		EventPublishErr: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_event_publish_errors_total",
			Help: "Location events that could not be published.",
		}),
		StaleAfter: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_stale_after_seconds",
			Help: "Age after which a position is STALE.",
		}),
		OfflineAfter: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_offline_after_seconds",
			Help: "Age after which a position is OFFLINE.",
		}),
	}

	reg.MustRegister(
		c.Reports, c.ReportDuration,
		c.Queries, c.StatusesServed,
		c.StoreErrors, c.EventPublishErr,
		c.StaleAfter, c.OfflineAfter,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.StaleAfter.Set(staleAfter.Seconds())
	c.OfflineAfter.Set(offlineAfter.Seconds())

	return c
}

// Handler exposes the registry in the prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

// ObserveReport counts one handled report
func (c *Collector) ObserveReport(outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.Reports.WithLabelValues(outcome).Inc()
	c.ReportDuration.Observe(took.Seconds())
}

// ObserveStatuses counts one query and the statuses it returned
func (c *Collector) ObserveStatuses(kind string, statuses ...models.BusStatus) {
	if c == nil {
		return
	}
	c.Queries.WithLabelValues(kind).Inc()
	for _, s := range statuses {
		c.StatusesServed.WithLabelValues(string(s.Status)).Inc()
	}
}

// StoreError counts a failed store operation
func (c *Collector) StoreError(op string) {
	if c == nil {
		return
	}
	c.StoreErrors.WithLabelValues(op).Inc()
}

// EventPublishError counts a dropped event
func (c *Collector) EventPublishError() {
	if c == nil {
		return
	}
	c.EventPublishErr.Inc()
}
