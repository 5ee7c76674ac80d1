package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/piresc/trackmybus/internal/pkg/constants"
	jwtpkg "github.com/piresc/trackmybus/internal/pkg/jwt"
	"github.com/piresc/trackmybus/internal/pkg/models"
	natspkg "github.com/piresc/trackmybus/internal/pkg/nats"
	"github.com/piresc/trackmybus/internal/utils"
	"github.com/piresc/trackmybus/services/tracking/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNATSClient(t *testing.T) *natspkg.Client {
	t.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	s := natsserver.RunServer(&opts)
	t.Cleanup(s.Shutdown)

	client, err := natspkg.NewClient(s.ClientURL())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func requestCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestLocationHandler_RequestReply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := newTestNATSClient(t)
	mockUC := mocks.NewMockTrackingUC(ctrl)
	acceptedAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	gomock.InOrder(
		mockUC.EXPECT().
			ReportLocation(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, report models.LocationReport) (*models.Ack, error) {
				assert.Equal(t, "B1", report.BusID)
				assert.Equal(t, "S1", report.ReporterSessionID)
				return &models.Ack{AcceptedAt: acceptedAt, Applied: true}, nil
			}),
		mockUC.EXPECT().
			ReportLocation(gomock.Any(), gomock.Any()).
			Return(nil, models.ErrSessionConflict),
	)

	h := NewLocationHandler(mockUC, client, models.NATSConfig{IngestQueue: "tracker"})
	require.NoError(t, h.InitNATSConsumers())
	defer h.Close()

	body, _ := json.Marshal(map[string]interface{}{
		"busId": "B1", "sessionId": "S1", "latitude": 25.59, "longitude": 85.13,
		"capturedAt": "2024-03-01T07:59:59Z",
	})

	msg, err := client.Request(requestCtx(t), constants.SubjectLocationReport, body)
	require.NoError(t, err)
	var ack models.Ack
	require.NoError(t, utils.ParseJSONResponse(msg.Data, &ack))
	assert.True(t, ack.Applied)
	assert.True(t, ack.AcceptedAt.Equal(acceptedAt))

	msg, err = client.Request(requestCtx(t), constants.SubjectLocationReport, body)
	require.NoError(t, err)
	err = utils.ParseJSONResponse(msg.Data, nil)
	apiErr, ok := utils.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestLocationHandler_MalformedPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := newTestNATSClient(t)
	h := NewLocationHandler(mocks.NewMockTrackingUC(ctrl), client, models.NATSConfig{})
	require.NoError(t, h.InitNATSConsumers())
	defer h.Close()

	msg, err := client.Request(requestCtx(t), constants.SubjectLocationReport, []byte("not json"))
	require.NoError(t, err)

	apiErr, ok := utils.AsAPIError(utils.ParseJSONResponse(msg.Data, nil))
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestLocationHandler_TokenRequired(t *testing.T) {
	cfg := models.JWTConfig{Secret: "driver-secret", Issuer: "campus-auth"}
	busToken, _, err := jwtpkg.GenerateToken("B1", "sess-9", time.Hour, cfg)
	require.NoError(t, err)
	otherBusToken, _, err := jwtpkg.GenerateToken("B2", "sess-4", time.Hour, cfg)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := newTestNATSClient(t)
	mockUC := mocks.NewMockTrackingUC(ctrl)
	mockUC.EXPECT().
		ReportLocation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, report models.LocationReport) (*models.Ack, error) {
			assert.Equal(t, "B1", report.BusID)
			assert.Equal(t, "sess-9", report.ReporterSessionID)
			return &models.Ack{Applied: true}, nil
		}).
		Times(1)

	h := NewLocationHandler(mockUC, client, models.NATSConfig{}).WithAuth(cfg)
	require.NoError(t, h.InitNATSConsumers())
	defer h.Close()

	body, _ := json.Marshal(map[string]interface{}{
		"busId": "B1", "sessionId": "forged", "latitude": 25.59, "longitude": 85.13,
		"capturedAt": "2024-03-01T07:59:59Z",
	})

	send := func(authorization string) *nats.Msg {
		msg := nats.NewMsg(constants.SubjectLocationReport)
		msg.Data = body
		if authorization != "" {
			msg.Header.Set("Authorization", authorization)
		}
		reply, err := client.GetConn().RequestMsgWithContext(requestCtx(t), msg)
		require.NoError(t, err)
		return reply
	}

	for name, authorization := range map[string]string{
		"missing":   "",
		"scheme":    "Basic abc",
		"invalid":   "Bearer nope",
		"other bus": "Bearer " + otherBusToken,
	} {
		t.Run(name, func(t *testing.T) {
			apiErr, ok := utils.AsAPIError(utils.ParseJSONResponse(send(authorization).Data, nil))
			require.True(t, ok)
			assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		})
	}

	var ack models.Ack
	require.NoError(t, utils.ParseJSONResponse(send("Bearer "+busToken).Data, &ack))
	assert.True(t, ack.Applied)
}
