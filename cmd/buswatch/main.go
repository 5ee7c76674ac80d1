package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/piresc/trackmybus/internal/pkg/config"
	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/pkg/trackerclient"
	"github.com/piresc/trackmybus/internal/utils"
)

// Distances are printed from this point, usually the student's stop
const (
	stopLat = 25.5941
	stopLng = 85.1376
)

func main() {
	configs := config.InitConfig(config.GetEnv("CONFIG_PATH", ".env"))

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nil)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	if len(configs.Client.BusIDs) == 0 {
		zapLogger.Fatal("CLIENT_BUS_IDS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := trackerclient.NewClient(configs.Client.BaseURL, configs.Client.Token, 0)
	watcher := trackerclient.NewRouteWatcher(client, configs.Client.BusIDs, configs.Client.Interval, printStatuses)

	zapLogger.WithFields(map[string]interface{}{
		"bus_ids":  configs.Client.BusIDs,
		"interval": configs.Client.Interval.String(),
	}).Info("Watching buses")

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.WithError(err).Error("Watcher stopped")
	}
}

func printStatuses(statuses []models.BusStatus) {
	stop := utils.GeoPoint{Latitude: stopLat, Longitude: stopLng}
	lines := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s.Position == nil {
			lines = append(lines, fmt.Sprintf("%-12s %-15s", s.BusID, s.Status))
			continue
		}
		km := utils.CalculateDistance(stop, utils.GeoPoint{Latitude: s.Position.Lat, Longitude: s.Position.Lng})
		lines = append(lines, fmt.Sprintf("%-12s %-15s %.2f km  seen %s",
			s.BusID, s.Status, km, s.Position.CapturedAt.Local().Format("15:04:05")))
	}
	fmt.Println(strings.Join(lines, "\n"))
	fmt.Println()
}
