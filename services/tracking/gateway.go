package tracking

import (
	"context"

	"github.com/piresc/trackmybus/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/piresc/trackmybus/services/tracking EventGW,RegistryGW

// EventGW hands location events to the external messaging collaborator
type EventGW interface {
	PublishLocationEvent(ctx context.Context, event models.LocationEvent) error
}

// RegistryGW reads bus membership of routes from the external bus registry
type RegistryGW interface {
	// ListRouteBuses returns models.ErrRouteNotFound for an unknown route
	ListRouteBuses(ctx context.Context, routeName string) ([]models.RouteBus, error)
}
