package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ServerConfig holds the settings for the trackerd ingest server.
type ServerConfig struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	Workers   int    `env:"INGEST_WORKERS, default=8"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tracking_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// MQTTConfig configures the live-position broker the agent publishes
// derived positions to. An empty BrokerURL disables publishing entirely.
type MQTTConfig struct {
	BrokerURL string `env:"MQTT_BROKER_URL"`
	ClientID  string `env:"MQTT_CLIENT_ID, default=tripsampler"`
	Username  string `env:"MQTT_USERNAME"`
	Password  string `env:"MQTT_PASSWORD"`
}

// SamplerConfig holds the settings for the tripsampler device agent.
type SamplerConfig struct {
	// APIBaseURL is the trackerd endpoint samples are submitted to.
	APIBaseURL string `env:"TRACKER_API_URL, default=http://localhost:8080"`
	APIToken   string `env:"TRACKER_API_TOKEN"`
	TripID     string `env:"TRIP_ID"`
	// StateDir holds the device identity and the pending-submission queue.
	StateDir string `env:"STATE_DIR, default=.tripsampler"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SerialPort is the GPS receiver device path (e.g. /dev/ttyUSB0).
	// Empty means no receiver is attached and tracking reports itself
	// unavailable.
	SerialPort string `env:"GPS_SERIAL_PORT"`
	SerialBaud uint   `env:"GPS_SERIAL_BAUD, default=9600"`
	// SimulateRoute replays fixed coordinates instead of reading a
	// receiver. Format: "lat,lng;lat,lng;...". Takes precedence over
	// SerialPort when set.
	SimulateRoute string `env:"GPS_SIMULATE_ROUTE"`

	Interval       time.Duration `env:"SAMPLE_INTERVAL,  default=30m"`
	AcquireTimeout time.Duration `env:"ACQUIRE_TIMEOUT,  default=10s"`
	MaxFixAge      time.Duration `env:"MAX_FIX_AGE,      default=5m"`

	MQTT MQTTConfig
}

// LoadServer reads the server configuration from environment variables
// using go-envconfig.
func LoadServer() *ServerConfig {
	var cfg ServerConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// LoadSampler reads the device-agent configuration from environment
// variables using go-envconfig.
func LoadSampler() *SamplerConfig {
	var cfg SamplerConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
