package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/piresc/trackmybus/internal/pkg/models"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or issuer checks
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies one driver sharing session
type Claims struct {
	BusID     string `json:"bus_id,omitempty"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for the given bus and session
func GenerateToken(busID, sessionID string, ttl time.Duration, cfg models.JWTConfig) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		BusID:     busID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresAt.Unix(), nil
}

// ValidateToken validates a session token and returns its claims
func ValidateToken(tokenString string, cfg models.JWTConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if cfg.Issuer != "" && !claims.VerifyIssuer(cfg.Issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	if claims.SessionID == "" {
		claims.SessionID = claims.Subject
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing sid claim", ErrInvalidToken)
	}

	return claims, nil
}
