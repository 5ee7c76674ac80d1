package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/trackmybus/internal/pkg/jwt"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthMiddleware(t *testing.T) {
	cfg := models.JWTConfig{Secret: "driver-secret", Issuer: "campus-auth"}

	valid, _, err := jwtpkg.GenerateToken("BUS-1", "sess-9", time.Hour, cfg)
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantSession string
		wantBus     string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantSession: "sess-9", wantBus: "BUS-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var gotSession, gotBus string
			e.POST("/", func(c echo.Context) error {
				gotSession, _ = SessionFromContext(c)
				gotBus, _ = BusFromContext(c)
				return c.NoContent(http.StatusOK)
			}, JWTAuthMiddleware(cfg))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSession, gotSession)
			assert.Equal(t, tt.wantBus, gotBus)
		})
	}
}
