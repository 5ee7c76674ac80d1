package main

import (
	"context"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/trackmybus/internal/pkg/config"
	jwtpkg "github.com/piresc/trackmybus/internal/pkg/jwt"
	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/trackerclient"
	"go.uber.org/zap"
)

// Simulated loop around the campus, centre and radius in degrees
const (
	centerLat = 25.5941
	centerLng = 85.1376
	radiusDeg = 0.004
	lapSteps  = 60
)

func main() {
	configs := config.InitConfig(config.GetEnv("CONFIG_PATH", ".env"))

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nil)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	busID := configs.Client.BusID
	if busID == "" {
		zapLogger.Fatal("CLIENT_BUS_ID is required")
	}
	sessionID := configs.Client.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Without a provided token, mint one locally when the signing secret is known
	token := configs.Client.Token
	if token == "" && configs.JWT.Secret != "" {
		token, _, err = jwtpkg.GenerateToken(busID, sessionID, 12*time.Hour, configs.JWT)
		if err != nil {
			zapLogger.Fatal("Failed to sign driver token", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := trackerclient.NewClient(configs.Client.BaseURL, token, 0)
	session := trackerclient.NewDriverSession(client, circularRoute(), busID, sessionID, configs.Client.Interval)

	zapLogger.Info("Driver simulator started",
		zap.String("bus_id", busID),
		zap.String("session_id", sessionID),
		zap.Duration("interval", configs.Client.Interval))

	if err := session.Run(ctx); err != nil {
		zapLogger.Error("Driver session ended with error", zap.Error(err))
	}
	zapLogger.Info("Driver simulator stopped")
}

func circularRoute() trackerclient.PositionSource {
	step := 0
	accuracy := 5.0
	return trackerclient.PositionSourceFunc(func(ctx context.Context) (trackerclient.Fix, error) {
		angle := 2 * math.Pi * float64(step%lapSteps) / lapSteps
		step++
		return trackerclient.Fix{
			Latitude:   centerLat + radiusDeg*math.Sin(angle),
			Longitude:  centerLng + radiusDeg*math.Cos(angle),
			Accuracy:   &accuracy,
			CapturedAt: time.Now().UTC(),
		}, nil
	})
}
