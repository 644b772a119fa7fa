package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the MQTT sender.
// Values come from defaults, an optional YAML file and environment variables.
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Logging  LoggingConfig  `yaml:"logging"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
}

// MQTTConfig contains MQTT broker connection and publishing settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`

	// Topics is the ordered fan-out list. An empty list is allowed and makes
	// every publish a no-op.
	Topics []string `yaml:"topics" env:"MQTT_SENDER_TOPICS" envSeparator:","`

	// ConnectionTimeoutSeconds bounds the readiness wait in one-second polls.
	// Values below 1 are treated as 1 by the sender.
	ConnectionTimeoutSeconds int `yaml:"connection_timeout_seconds" env:"MQTT_CLIENT_CONNECTION_TIMEOUT_SECONDS"`

	// QoS and Retain are the defaults used by the command for each payload.
	QoS    int  `yaml:"qos" env:"MQTT_SENDER_QOS" validate:"gte=0,lte=2"`
	Retain bool `yaml:"retain" env:"MQTT_SENDER_RETAIN"`

	KeepAliveSeconds int `yaml:"keepalive_seconds" validate:"gte=0"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host" env:"MQTT_SENDER_HOSTNAME" validate:"required"`
	Port     int    `yaml:"port" env:"MQTT_SENDER_PORT" validate:"gte=1,lte=65535"`
	TLS      bool   `yaml:"tls" env:"MQTT_SENDER_TLS"`
	ClientID string `yaml:"client_id" env:"MQTT_SENDER_CLIENT_ID"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username" env:"MQTT_SENDER_USERNAME"`
	Password string `yaml:"password" env:"MQTT_SENDER_PASSWORD"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"MQTT_SENDER_LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error critical DEBUG INFO WARN WARNING ERROR CRITICAL"`
	Format string `yaml:"format" env:"MQTT_SENDER_LOG_FORMAT" validate:"omitempty,oneof=json text"`
	Output string `yaml:"output" env:"MQTT_SENDER_LOG_OUTPUT" validate:"omitempty,oneof=stdout stderr"`
}

// InfluxDBConfig contains settings for optional publish telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled" env:"MQTT_SENDER_INFLUXDB_ENABLED"`
	URL           string `yaml:"url" env:"MQTT_SENDER_INFLUXDB_URL" validate:"required_if=Enabled true"`
	Token         string `yaml:"token" env:"MQTT_SENDER_INFLUXDB_TOKEN"`
	Org           string `yaml:"org" env:"MQTT_SENDER_INFLUXDB_ORG" validate:"required_if=Enabled true"`
	Bucket        string `yaml:"bucket" env:"MQTT_SENDER_INFLUXDB_BUCKET" validate:"required_if=Enabled true"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// Load builds the configuration and validates it.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values, when path is non-empty
//  3. Environment variables (MQTT_SENDER_*, MQTT_CLIENT_CONNECTION_TIMEOUT_SECONDS)
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for environment-only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read or parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			ConnectionTimeoutSeconds: 10,
			KeepAliveSeconds:         60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
	}
}

// applyEnvOverrides overwrites fields whose environment variable is set.
// Unset variables leave the default or file value in place.
func applyEnvOverrides(cfg *Config) error {
	return env.Parse(cfg)
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
}

// BrokerAddress returns host:port for logging.
func (m MQTTConfig) BrokerAddress() string {
	return fmt.Sprintf("%s:%d", m.Broker.Host, m.Broker.Port)
}
