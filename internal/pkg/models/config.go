package models

import "time"

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Store    StoreConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Database DatabaseConfig
	NATS     NATSConfig
	Events   EventsConfig
	JWT      JWTConfig
	Tracking TrackingConfig
	Metrics  MetricsConfig
	NewRelic NewRelicConfig
	Logger   LoggerConfig
	Client   ClientConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	CORSOrigins     []string
	RateLimit       int // requests per window and client on ingestion routes, 0 disables
	RateLimitWindow time.Duration
}

// StoreConfig selects the Location Record Store backend
type StoreConfig struct {
	Driver string // redis | mongo
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// MongoConfig contains MongoDB connection configuration
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DatabaseConfig contains the bus registry database configuration.
// An empty Host disables route-name lookups.
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL            string
	IngestEnabled  bool
	IngestQueue    string
	RequestTimeout time.Duration
}

// EventsConfig selects where location events are published
type EventsConfig struct {
	Broker       string // none | nats | nsq | kafka
	NSQAddress   string
	KafkaBrokers string
}

// JWTConfig contains verification settings for tokens issued by the identity provider.
// An empty Secret disables verification on driver routes.
type JWTConfig struct {
	Secret string
	Issuer string
}

// TrackingConfig contains the liveness thresholds and request limits
type TrackingConfig struct {
	ReportInterval    time.Duration
	StaleMultiplier   float64
	OfflineMultiplier float64
	StaleAfter        time.Duration
	OfflineAfter      time.Duration
	MaxBatch          int
	MaxBusIDLength    int
}

// MetricsConfig contains prometheus settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// NewRelicConfig contains New Relic settings
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	LogsEnabled bool
	ForwardLogs bool
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level    string
	FilePath string
	Type     string
}

// ClientConfig is used by the polling binaries
type ClientConfig struct {
	BaseURL   string
	BusID     string
	SessionID string
	BusIDs    []string
	Interval  time.Duration
	Token     string
}
