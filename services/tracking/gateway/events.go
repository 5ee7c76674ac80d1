package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/piresc/trackmybus/internal/pkg/constants"
	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/services/tracking"
)

// Publisher is satisfied by the nats client and the nsq and kafka producers
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// keyedPublisher keeps all events of one bus on one partition
type keyedPublisher interface {
	PublishKeyed(ctx context.Context, topic, key string, data []byte) error
}

// EventGateway publishes location events to the configured broker
type EventGateway struct {
	publisher Publisher
	broker    string
}

// NewEventGateway creates a new event gateway; broker is only used in logs
func NewEventGateway(publisher Publisher, broker string) *EventGateway {
	return &EventGateway{
		publisher: publisher,
		broker:    broker,
	}
}

// PublishLocationEvent sends event on the subject matching its type
func (g *EventGateway) PublishLocationEvent(ctx context.Context, event models.LocationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal location event: %w", err)
	}

	subject := subjectFor(event.Type)
	if kp, ok := g.publisher.(keyedPublisher); ok {
		err = kp.PublishKeyed(ctx, subject, event.BusID, data)
	} else {
		err = g.publisher.Publish(ctx, subject, data)
	}
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, g.broker, err)
	}

	logger.DebugCtx(ctx, "Published location event",
		logger.String("broker", g.broker),
		logger.String("subject", subject),
		logger.String("bus_id", event.BusID))
	return nil
}

func subjectFor(eventType string) string {
	if eventType == models.EventSharingStopped {
		return constants.SubjectSharingStopped
	}
	return constants.SubjectLocationUpdated
}

var _ tracking.EventGW = (*EventGateway)(nil)
