package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZapLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tracker.log")

	zl, err := NewZapLogger(ZapConfig{Level: "debug", FilePath: path}, nil)
	require.NoError(t, err)

	zl.Info("location accepted", String("bus_id", "B1"), Float64("latitude", 25.59))
	require.NoError(t, zl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"location accepted"`)
	assert.Contains(t, string(data), `"bus_id":"B1"`)
	assert.Equal(t, path, zl.GetFilePath())
}

func TestNewZapLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.log")

	zl, err := NewZapLogger(ZapConfig{Level: "chatty", FilePath: path}, nil)
	require.NoError(t, err)

	zl.Debug("hidden")
	zl.Info("shown")
	require.NoError(t, zl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestZapLogger_WithFieldsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buswatch.log")

	zl, err := NewZapLogger(ZapConfig{Level: "info", FilePath: path}, nil)
	require.NoError(t, err)

	zl.WithFields(map[string]interface{}{"bus_ids": []string{"B1", "B2"}}).Info("Watching buses")
	zl.WithError(errors.New("connection refused")).Error("Watcher stopped")
	require.NoError(t, zl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"trackmybus"`)
	assert.Contains(t, string(data), `"bus_ids":["B1","B2"]`)
	assert.Contains(t, string(data), `"error":"connection refused"`)
}

func TestGlobalLogger(t *testing.T) {
	nop := NewNopLogger()
	SetGlobalLogger(nop)
	t.Cleanup(func() { SetGlobalLogger(nil) })

	assert.Same(t, nop, GetGlobalLogger())
	assert.NotPanics(t, func() {
		Info("info")
		Warn("warn", Err(errors.New("boom")))
		Debug("debug", Duration("age", 0))
	})
}

func TestZapEchoMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "http.log")
	zl, err := NewZapLogger(ZapConfig{Level: "info", FilePath: path}, nil)
	require.NoError(t, err)

	e := echo.New()
	e.Use(ZapEchoMiddleware(zl))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") })

	for _, target := range []string{"/ok", "/missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	}
	require.NoError(t, zl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Request processed")
	assert.Contains(t, string(data), "Client error")
	assert.Contains(t, string(data), `"status":404`)
}
