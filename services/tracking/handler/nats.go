package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/piresc/trackmybus/internal/pkg/constants"
	jwtpkg "github.com/piresc/trackmybus/internal/pkg/jwt"
	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/models"
	natspkg "github.com/piresc/trackmybus/internal/pkg/nats"
	"github.com/piresc/trackmybus/internal/utils"
	"github.com/piresc/trackmybus/services/tracking"
	httpHandler "github.com/piresc/trackmybus/services/tracking/handler/http"
)

const (
	defaultIngestTimeout = 5 * time.Second
	defaultIngestQueue   = "tracker"
	authHeader           = "Authorization"
)

// LocationHandler answers location reports sent over NATS request/reply
type LocationHandler struct {
	trackingUC tracking.TrackingUC
	natsClient *natspkg.Client
	queue      string
	timeout    time.Duration
	auth       *models.JWTConfig
	subs       []*nats.Subscription
}

// NewLocationHandler creates a new location NATS handler. Instances sharing
// a queue group split the reports between them.
func NewLocationHandler(trackingUC tracking.TrackingUC, client *natspkg.Client, cfg models.NATSConfig) *LocationHandler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultIngestTimeout
	}
	queue := cfg.IngestQueue
	if queue == "" {
		queue = defaultIngestQueue
	}
	return &LocationHandler{
		trackingUC: trackingUC,
		natsClient: client,
		queue:      queue,
		timeout:    timeout,
		subs:       make([]*nats.Subscription, 0),
	}
}

// WithAuth requires every report to carry a driver token in the Authorization header.
// The token binds the session and bus exactly as on the HTTP route.
func (h *LocationHandler) WithAuth(cfg models.JWTConfig) *LocationHandler {
	h.auth = &cfg
	return h
}

// InitNATSConsumers subscribes to driver location reports
func (h *LocationHandler) InitNATSConsumers() error {
	sub, err := h.natsClient.QueueSubscribe(constants.SubjectLocationReport, h.queue, h.handleLocationReport)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", constants.SubjectLocationReport, err)
	}
	h.subs = append(h.subs, sub)

	logger.Info("Subscribed to location reports",
		logger.String("subject", constants.SubjectLocationReport),
		logger.String("queue", h.queue))
	return nil
}

// Close unsubscribes all consumers
func (h *LocationHandler) Close() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			logger.Warn("Failed to unsubscribe", logger.String("subject", sub.Subject), logger.Err(err))
		}
	}
	h.subs = nil
}

func (h *LocationHandler) handleLocationReport(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	reply := h.process(ctx, msg.Data, msg.Header)
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(reply); err != nil {
		logger.WarnCtx(ctx, "Failed to reply to location report", logger.Err(err))
	}
}

// process returns the same envelope the HTTP API answers with
func (h *LocationHandler) process(ctx context.Context, data []byte, header nats.Header) []byte {
	var claims *jwtpkg.Claims
	if h.auth != nil {
		var msg string
		if claims, msg = h.authorize(header); claims == nil {
			return errorReply(http.StatusUnauthorized, msg)
		}
	}

	var req models.LocationUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorReply(http.StatusBadRequest, "invalid request body")
	}

	if claims != nil {
		if claims.BusID != "" && claims.BusID != req.BusID {
			return errorReply(http.StatusUnauthorized, "token is not valid for this bus")
		}
		if claims.SessionID != "" {
			req.SessionID = claims.SessionID
		}
	}

	ack, err := h.trackingUC.ReportLocation(ctx, req.ToReport())
	if err != nil {
		status := httpHandler.StatusForError(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorCtx(ctx, "Failed to ingest location from NATS",
				logger.String("bus_id", req.BusID),
				logger.Err(err))
		}
		return errorReply(status, err.Error())
	}

	out, _ := json.Marshal(utils.Response{Success: true, Message: "Location accepted", Data: ack})
	return out
}

func (h *LocationHandler) authorize(header nats.Header) (*jwtpkg.Claims, string) {
	raw := header.Get(authHeader)
	if raw == "" {
		return nil, "Authorization header is required"
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, "Invalid authorization format"
	}
	claims, err := jwtpkg.ValidateToken(strings.TrimSpace(parts[1]), *h.auth)
	if err != nil {
		return nil, "Invalid token"
	}
	return claims, ""
}

func errorReply(status int, msg string) []byte {
	out, _ := json.Marshal(utils.ErrorResponse{Success: false, Error: msg, Code: status})
	return out
}
