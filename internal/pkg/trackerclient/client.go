// Package trackerclient talks to the tracker HTTP API on behalf of drivers and students.
package trackerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/models"
	nrpkg "github.com/piresc/trackmybus/internal/pkg/newrelic"
	"github.com/piresc/trackmybus/internal/utils"
)

// DefaultTimeout for HTTP requests
const DefaultTimeout = 10 * time.Second

// Client is an HTTP client for the tracker API
type Client struct {
	client  *http.Client
	baseURL string
	token   string
	now     func() time.Time
}

// NewClient creates a new tracker client. token is sent as a bearer token when set.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		now:     time.Now,
	}
}

// ReportLocation posts one fix or stop-sharing signal
func (c *Client) ReportLocation(ctx context.Context, req models.LocationUpdateRequest) (*models.Ack, error) {
	var ack models.Ack
	if err := c.do(ctx, http.MethodPost, "/api/v1/location-update", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// StopSharing sends the explicit stop-sharing signal for busID, stamped with
// the device clock so fixes still in flight from this session are dropped
func (c *Client) StopSharing(ctx context.Context, busID, sessionID string) (*models.Ack, error) {
	sharing := false
	return c.ReportLocation(ctx, models.LocationUpdateRequest{
		BusID:          busID,
		SessionID:      sessionID,
		CapturedAt:     c.now().UTC(),
		SharingEnabled: &sharing,
	})
}

// GetBusStatus returns the status of one bus
func (c *Client) GetBusStatus(ctx context.Context, busID string) (*models.BusStatus, error) {
	var status models.BusStatus
	endpoint := "/api/v1/bus-status?busId=" + url.QueryEscape(busID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetRouteStatuses returns one status per id in the same order
func (c *Client) GetRouteStatuses(ctx context.Context, busIDs []string) ([]models.BusStatus, error) {
	var statuses []models.BusStatus
	endpoint := "/api/v1/route-statuses?busIds=" + url.QueryEscape(strings.Join(busIDs, ","))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetRouteStatusesByName returns the statuses of every bus on a named route
func (c *Client) GetRouteStatusesByName(ctx context.Context, routeName string) ([]models.BusStatus, error) {
	var statuses []models.BusStatus
	endpoint := "/api/v1/routes/" + url.PathEscape(routeName) + "/statuses"
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, result interface{}) error {
	target := c.baseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := nrpkg.InstrumentHTTPRequest(ctx, req, func() (*http.Response, error) {
		return c.client.Do(req)
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug("Tracker request completed",
		logger.String("method", method),
		logger.String("url", target),
		logger.Int("status_code", resp.StatusCode))

	if err := utils.ParseJSONResponse(data, result); err != nil {
		if apiErr, ok := utils.AsAPIError(err); ok {
			if apiErr.StatusCode == 0 {
				apiErr.StatusCode = resp.StatusCode
			}
			return mapAPIError(apiErr)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return mapAPIError(&utils.APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)})
		}
		return err
	}
	return nil
}

// mapAPIError restores the sentinel behind an error status so callers can use errors.Is
func mapAPIError(apiErr *utils.APIError) error {
	var sentinel error
	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		sentinel = models.ErrInvalidReport
	case http.StatusUnprocessableEntity:
		sentinel = models.ErrInvalidCoordinates
	case http.StatusConflict:
		sentinel = models.ErrSessionConflict
	case http.StatusNotFound:
		sentinel = models.ErrRouteNotFound
	case http.StatusServiceUnavailable:
		sentinel = models.ErrStoreUnavailable
	default:
		return apiErr
	}
	return fmt.Errorf("%w: %w", sentinel, apiErr)
}
