package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/trackmybus/internal/pkg/jwt"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/utils"
	"github.com/piresc/trackmybus/services/tracking/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutedEcho(t *testing.T, mockUC *mocks.MockTrackingUC, cfg *models.Config, ingest ...echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = utils.NewValidator()
	NewHTTPHandler(mockUC, cfg).RegisterRoutes(e, ingest...)
	return e
}

func TestRegisterRoutes_PollingRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUC := mocks.NewMockTrackingUC(ctrl)
	e := newRoutedEcho(t, mockUC, &models.Config{Tracking: models.TrackingConfig{MaxBatch: 10}})

	mockUC.EXPECT().GetBusStatus(gomock.Any(), "B1", gomock.Any()).Return(models.BusStatus{BusID: "B1", Status: models.StatusNeverReported})
	mockUC.EXPECT().GetRouteStatuses(gomock.Any(), []string{"B1", "B2"}, gomock.Any()).Return([]models.BusStatus{})
	mockUC.EXPECT().GetRouteStatusesByName(gomock.Any(), "north-loop", gomock.Any()).Return([]models.BusStatus{}, nil)

	for _, target := range []string{
		"/api/v1/bus-status?busId=B1",
		"/api/v1/route-statuses?busIds=B1,B2",
		"/api/v1/routes/north-loop/statuses",
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestRegisterRoutes_DriverRouteRequiresTokenWhenConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := &models.Config{
		JWT:      models.JWTConfig{Secret: "test-secret", Issuer: "campus-id"},
		Tracking: models.TrackingConfig{MaxBatch: 10},
	}
	mockUC := mocks.NewMockTrackingUC(ctrl)

	ingestCalls := 0
	countIngest := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ingestCalls++
			return next(c)
		}
	}
	e := newRoutedEcho(t, mockUC, cfg, countIngest)

	body := []byte(`{"busId":"B1","sessionId":"ignored","latitude":1,"longitude":2,"capturedAt":"2024-03-01T07:59:58Z"}`)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/location-update", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, ingestCalls)

	token, _, err := jwtpkg.GenerateToken("B1", "S1", time.Hour, cfg.JWT)
	require.NoError(t, err)

	mockUC.EXPECT().
		ReportLocation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, report models.LocationReport) (*models.Ack, error) {
			assert.Equal(t, "S1", report.ReporterSessionID)
			return &models.Ack{Applied: true}, nil
		})

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/location-update", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ingestCalls)
}
