package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/trackmybus/internal/pkg/jwt"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/utils"
)

// Echo context keys set by JWTAuthMiddleware
const (
	ContextSessionID = "session_id"
	ContextBusID     = "bus_id"
)

// JWTAuthMiddleware verifies the driver's bearer token. The token's session id
// replaces whatever session id the request body carries.
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return utils.UnauthorizedResponse(c, "Authorization header is required")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return utils.UnauthorizedResponse(c, "Invalid authorization format")
			}

			claims, err := jwtpkg.ValidateToken(strings.TrimSpace(parts[1]), config)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token")
			}

			c.Set(ContextSessionID, claims.SessionID)
			if claims.BusID != "" {
				c.Set(ContextBusID, claims.BusID)
			}

			return next(c)
		}
	}
}

// SessionFromContext returns the verified session id, if any
func SessionFromContext(c echo.Context) (string, bool) {
	sid, ok := c.Get(ContextSessionID).(string)
	return sid, ok && sid != ""
}

// BusFromContext returns the bus id the token is bound to, if any
func BusFromContext(c echo.Context) (string, bool) {
	busID, ok := c.Get(ContextBusID).(string)
	return busID, ok && busID != ""
}
