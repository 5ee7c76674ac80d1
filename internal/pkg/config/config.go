package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/piresc/trackmybus/internal/pkg/models"
)

func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" && configPath != "" {
		// Load config from file
		err := godotenv.Load(configPath)
		if err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "trackmybus")
	configs.App.Environment = GetEnv("APP_ENV", "local")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", false)
	configs.App.Version = GetEnv("APP_VERSION", "development")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 9990)
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 10)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 10)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30)
	configs.Server.CORSOrigins = GetEnvAsList("SERVER_CORS_ORIGINS", []string{"*"})
	configs.Server.RateLimit = GetEnvAsInt("RATE_LIMIT_REQUESTS", 0)
	configs.Server.RateLimitWindow = GetEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute)

	// Store config
	configs.Store.Driver = strings.ToLower(GetEnv("STORE_DRIVER", "redis"))

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "localhost")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 10)

	// Mongo config
	configs.Mongo.URI = GetEnv("MONGO_URI", "mongodb://localhost:27017")
	configs.Mongo.Database = GetEnv("MONGO_DATABASE", "trackmybus")
	configs.Mongo.Collection = GetEnv("MONGO_COLLECTION", "bus_locations")

	// Registry database config
	configs.Database.Driver = GetEnv("DB_DRIVER", "pgx")
	configs.Database.Host = GetEnv("DB_HOST", "")
	configs.Database.Port = GetEnvAsInt("DB_PORT", 5432)
	configs.Database.Username = GetEnv("DB_USERNAME", "")
	configs.Database.Password = GetEnv("DB_PASSWORD", "")
	configs.Database.Database = GetEnv("DB_DATABASE", "")
	configs.Database.SSLMode = GetEnv("DB_SSL_MODE", "disable")
	configs.Database.MaxConns = GetEnvAsInt("DB_MAX_CONNS", 5)
	configs.Database.IdleConns = GetEnvAsInt("DB_IDLE_CONNS", 2)

	// NATS config
	configs.NATS.URL = GetEnv("NATS_URL", "")
	configs.NATS.IngestEnabled = GetEnvAsBool("NATS_INGEST_ENABLED", false)
	configs.NATS.IngestQueue = GetEnv("NATS_INGEST_QUEUE", "tracker")
	configs.NATS.RequestTimeout = GetEnvAsDuration("NATS_REQUEST_TIMEOUT", 5*time.Second)

	// Events config
	configs.Events.Broker = strings.ToLower(GetEnv("EVENTS_BROKER", "none"))
	configs.Events.NSQAddress = GetEnv("NSQ_ADDRESS", "localhost:4150")
	configs.Events.KafkaBrokers = GetEnv("KAFKA_BROKERS", "localhost:9092")

	// JWT config
	configs.JWT.Secret = GetEnv("JWT_SECRET", "")
	configs.JWT.Issuer = GetEnv("JWT_ISSUER", "")

	// Tracking config
	configs.Tracking.ReportInterval = GetEnvAsDuration("TRACKING_REPORT_INTERVAL", 10*time.Second)
	configs.Tracking.StaleMultiplier = GetEnvAsFloat("TRACKING_STALE_MULTIPLIER", 3)
	configs.Tracking.OfflineMultiplier = GetEnvAsFloat("TRACKING_OFFLINE_MULTIPLIER", 6)
	configs.Tracking.StaleAfter = GetEnvAsDuration("TRACKING_STALE_AFTER", 0)
	configs.Tracking.OfflineAfter = GetEnvAsDuration("TRACKING_OFFLINE_AFTER", 0)
	configs.Tracking.MaxBatch = GetEnvAsInt("TRACKING_MAX_BATCH", 200)
	configs.Tracking.MaxBusIDLength = GetEnvAsInt("TRACKING_MAX_BUS_ID_LENGTH", 128)

	// Metrics config
	configs.Metrics.Enabled = GetEnvAsBool("METRICS_ENABLED", true)
	configs.Metrics.Path = GetEnv("METRICS_PATH", "/metrics")

	// NewRelic config
	configs.NewRelic.LicenseKey = GetEnv("NEW_RELIC_LICENSE_KEY", "")
	configs.NewRelic.AppName = GetEnv("NEW_RELIC_APP_NAME", "trackmybus")
	configs.NewRelic.Enabled = GetEnvAsBool("NEW_RELIC_ENABLED", false)
	configs.NewRelic.LogsEnabled = GetEnvAsBool("NEW_RELIC_LOGS_ENABLED", false)
	configs.NewRelic.ForwardLogs = GetEnvAsBool("NEW_RELIC_FORWARD_LOGS", false)

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "")
	configs.Logger.Type = GetEnv("LOG_TYPE", "console")

	// Polling client config
	configs.Client.BaseURL = GetEnv("TRACKER_URL", "http://localhost:9990")
	configs.Client.BusID = GetEnv("CLIENT_BUS_ID", "")
	configs.Client.SessionID = GetEnv("CLIENT_SESSION_ID", "")
	configs.Client.BusIDs = GetEnvAsList("CLIENT_BUS_IDS", nil)
	configs.Client.Interval = GetEnvAsDuration("CLIENT_INTERVAL", configs.Tracking.ReportInterval)
	configs.Client.Token = GetEnv("CLIENT_TOKEN", "")

	return configs
}

// Validate rejects configurations the service cannot run with
func Validate(configs *models.Config) error {
	switch configs.Store.Driver {
	case "redis", "mongo":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", configs.Store.Driver)
	}

	switch configs.Events.Broker {
	case "none", "nats", "nsq", "kafka":
	default:
		return fmt.Errorf("unsupported EVENTS_BROKER %q", configs.Events.Broker)
	}

	if configs.Events.Broker == "nats" && configs.NATS.URL == "" {
		return fmt.Errorf("EVENTS_BROKER=nats requires NATS_URL")
	}
	if configs.NATS.IngestEnabled && configs.NATS.URL == "" {
		return fmt.Errorf("NATS_INGEST_ENABLED requires NATS_URL")
	}

	if configs.Tracking.ReportInterval <= 0 {
		return fmt.Errorf("TRACKING_REPORT_INTERVAL must be positive")
	}
	if configs.Tracking.StaleMultiplier <= 0 || configs.Tracking.OfflineMultiplier < configs.Tracking.StaleMultiplier {
		return fmt.Errorf("TRACKING_OFFLINE_MULTIPLIER must be >= TRACKING_STALE_MULTIPLIER > 0")
	}
	if configs.Tracking.MaxBatch <= 0 {
		return fmt.Errorf("TRACKING_MAX_BATCH must be positive")
	}

	return nil
}

// Helper functions to get environment variables with different types
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

// GetEnvAsDuration accepts Go duration strings ("10s") or plain seconds ("10")
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}

	seconds, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return time.Duration(seconds * float64(time.Second))
}

// GetEnvAsList splits a comma separated value, dropping blanks
func GetEnvAsList(key string, defaultValue []string) []string {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
