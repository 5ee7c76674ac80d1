package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInfo(t *testing.T) {
	assert.Equal(t, "development", DefaultBuildInfo.Version)
	assert.Equal(t, "unknown", DefaultBuildInfo.GitCommit)
	assert.Equal(t, runtime.Version(), DefaultBuildInfo.GoVersion)
	assert.Empty(t, DefaultBuildInfo.ServiceName)
}

func TestNewPingHandler(t *testing.T) {
	t.Setenv("GIT_COMMIT", "abc123")
	t.Setenv("BUILD_TIME", "")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ping", nil), rec)

	require.NoError(t, NewPingHandler("tracker", "1.2.3")(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var info BuildInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "tracker", info.ServiceName)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.GitCommit)
	assert.Equal(t, "unknown", info.BuildTime)
	assert.False(t, info.ServerTime.IsZero())
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthService_CheckAllHealth(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		svc := NewHealthService(nil)
		svc.AddChecker("redis", NewPingChecker(fakePinger{}))
		svc.AddChecker("nats", NewNATSHealthChecker(nil))

		resp := svc.CheckAllHealth(context.Background())
		assert.Equal(t, "healthy", resp.Status)
		assert.Len(t, resp.Dependencies, 2)
	})

	t.Run("one unhealthy", func(t *testing.T) {
		svc := NewHealthService(nil)
		svc.AddChecker("redis", NewPingChecker(fakePinger{}))
		svc.AddChecker("mongo", NewPingChecker(fakePinger{err: errors.New("no primary")}))

		resp := svc.CheckAllHealth(context.Background())
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "no primary", resp.Dependencies["mongo"].Error)
		assert.Equal(t, "healthy", resp.Dependencies["redis"].Status)
	})
}

func TestRegisterEnhancedHealthEndpoints(t *testing.T) {
	svc := NewHealthService(nil)
	svc.AddChecker("postgres", CheckerFunc(func(context.Context) error { return errors.New("down") }))

	e := echo.New()
	RegisterEnhancedHealthEndpoints(e, "tracker", "test", svc)

	tests := []struct {
		path string
		want int
	}{
		{path: "/ping", want: http.StatusOK},
		{path: "/healthz", want: http.StatusOK},
		{path: "/health", want: http.StatusOK},
		{path: "/health/live", want: http.StatusOK},
		{path: "/health/ready", want: http.StatusServiceUnavailable},
		{path: "/health/detailed", want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
