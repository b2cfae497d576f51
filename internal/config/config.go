// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :5000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN. Required; the process fails at startup without it.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// MQTTBrokerURL is the MQTT broker address (e.g. tcp://broker.hivemq.com:1883).
	MQTTBrokerURL string `mapstructure:"MQTT_BROKER_URL"`
	// MQTTTopic is the topic the ingest pipeline subscribes to for box telemetry.
	MQTTTopic string `mapstructure:"MQTT_TOPIC"`
	// MQTTClientID is the MQTT client identifier; a uuid-suffixed default is used when empty.
	MQTTClientID string `mapstructure:"MQTT_CLIENT_ID"`
	// JWTSecret is the HMAC secret for session tokens. Required; Load fails
	// without it, and rotating it invalidates all outstanding tokens.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTTTL is the session token lifetime (e.g. "24h").
	JWTTTL string `mapstructure:"JWT_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// MaxPageSize caps the limit query parameter on the public per-box lookup.
	MaxPageSize int `mapstructure:"MAX_PAGE_SIZE"`
	// CORSAllowedOrigins is a comma-separated list of allowed origins for browser clients.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// SuperAdminUsername is the username of the bootstrapped privileged account.
	SuperAdminUsername string `mapstructure:"SUPERADMIN_USERNAME"`
	// SuperAdminPassword is the bootstrap password; when empty the bootstrap step is skipped.
	SuperAdminPassword string `mapstructure:"SUPERADMIN_PASSWORD"`

	// Events (optional). When Kafka brokers are set, the server emits fleet events to Kafka.
	// EventsKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	EventsKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the Kafka topic for fleet events (default smartbox-events).
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`

	// Worker-only: KafkaGroupID is the consumer group ID for the alert worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// Worker-only: LokiURL is where the alert worker pushes alert lines (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// AlertTempMax is the cold-chain temperature ceiling in °C; readings above it raise a danger alert.
	AlertTempMax float64 `mapstructure:"ALERT_TEMP_MAX"`

	// OTLPEndpoint is the OTLP gRPC endpoint for metric export (empty disables export).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MQTT_BROKER_URL", "tcp://broker.hivemq.com:1883")
	v.SetDefault("MQTT_TOPIC", "smartbox/fleet/data")
	v.SetDefault("MQTT_CLIENT_ID", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("MAX_PAGE_SIZE", 1000)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("SUPERADMIN_USERNAME", "superadmin")
	v.SetDefault("SUPERADMIN_PASSWORD", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "smartbox-events")
	v.SetDefault("KAFKA_GROUP_ID", "smartbox-alert-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("ALERT_TEMP_MAX", 8.0)
	v.SetDefault("OTLP_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	// An empty HMAC key would let anyone mint accepted session tokens.
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 1000
	}

	return &cfg, nil
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// EventsKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event emission is enabled (non-empty list) and to create the producer.
func (c *Config) EventsKafkaBrokersList() []string {
	return splitCSV(c.EventsKafkaBrokers)
}

// CORSOrigins returns the allowed browser origins from the comma-separated config.
func (c *Config) CORSOrigins() []string {
	return splitCSV(c.CORSAllowedOrigins)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
