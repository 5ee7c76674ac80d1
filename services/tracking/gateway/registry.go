package gateway

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	nr "github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/trackmybus/internal/pkg/circuitbreaker"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/pkg/newrelic"
	"github.com/piresc/trackmybus/services/tracking"
)

const listRouteBusesQuery = `
	SELECT id, bus_number, route
	FROM buses
	WHERE route = $1 AND enabled = TRUE
	ORDER BY bus_number`

// RegistryGateway reads route membership from the bus registry database. It never writes.
type RegistryGateway struct {
	db      *sqlx.DB
	breaker *circuitbreaker.Breaker
}

// NewRegistryGateway creates a new registry gateway
func NewRegistryGateway(db *sqlx.DB) *RegistryGateway {
	return &RegistryGateway{db: db}
}

// WithBreaker makes lookups fail fast while the registry keeps erroring
func (g *RegistryGateway) WithBreaker(b *circuitbreaker.Breaker) *RegistryGateway {
	g.breaker = b
	return g
}

// ListRouteBuses returns the enabled buses of a route ordered by bus number.
// A route without enabled buses is reported as not found.
func (g *RegistryGateway) ListRouteBuses(ctx context.Context, routeName string) ([]models.RouteBus, error) {
	var buses []models.RouteBus
	query := func(ctx context.Context) error {
		return newrelic.WithDatastoreSegment(ctx, nr.DatastorePostgres, "buses", "SELECT", func() error {
			return g.db.SelectContext(ctx, &buses, listRouteBusesQuery, routeName)
		})
	}

	var err error
	if g.breaker != nil {
		err = g.breaker.Execute(ctx, query)
	} else {
		err = query(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list buses of %s: %w", models.ErrRegistryUnavailable, routeName, err)
	}
	if len(buses) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrRouteNotFound, routeName)
	}
	return buses, nil
}

var _ tracking.RegistryGW = (*RegistryGateway)(nil)
