// mqtt-sender publishes each line read from stdin to a fixed set of MQTT topics.
//
// Startup waits for the broker connection to become live within the configured
// timeout; if it does not, the process exits with status 1. Every line is then
// fanned out to all configured topics in order, stopping at the first failure.
//
// Configuration comes from an optional YAML file (MQTT_SENDER_CONFIG) overlaid
// with MQTT_SENDER_* environment variables.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/mqtt-sender/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-sender/internal/infrastructure/influxdb"
	"github.com/nerrad567/mqtt-sender/internal/infrastructure/logging"
	"github.com/nerrad567/mqtt-sender/internal/infrastructure/mqtt"
	"github.com/nerrad567/mqtt-sender/internal/sender"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// serviceName tags telemetry points.
const serviceName = "mqtt-sender"

// maxLineSize bounds a single stdin payload; matches the transport's payload limit.
const maxLineSize = 1024 * 1024

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - in: Source of payloads, one per line
//
// Returns:
//   - error: nil on EOF or signal, otherwise the failure that ended the run
func run(ctx context.Context, in io.Reader) error {
	log := logging.Default()
	log.Info("starting mqtt-sender",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	mqttClient := mqtt.New(cfg.MQTT)
	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	var recorder sender.Recorder
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB, map[string]string{
			"service":   serviceName,
			"client_id": mqttClient.ClientID(),
		})
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recorder = &telemetryRecorder{client: influxClient}
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Deferred after telemetry so MQTT closes first and late acknowledgements
	// are still recorded.
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	s, err := sender.New(ctx, &mqttConnAdapter{client: mqttClient}, sender.Options{
		Topics:                   cfg.MQTT.Topics,
		ConnectionTimeoutSeconds: cfg.MQTT.ConnectionTimeoutSeconds,
		Logger:                   log,
		Recorder:                 recorder,
	})
	if err != nil {
		return fmt.Errorf("starting sender: %w", err)
	}
	log.Info("sender ready",
		"broker", cfg.MQTT.BrokerAddress(),
		"client_id", mqttClient.ClientID(),
		"topics", len(s.Topics()),
	)

	return pump(ctx, in, s, cfg.MQTT, log)
}

// pump publishes each input line until EOF, cancellation, or a publish error.
func pump(ctx context.Context, in io.Reader, s *sender.Sender, cfg config.MQTTConfig, log *logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		// Always report, even when cancelled, so the reader of scanErr never blocks.
		defer func() { scanErr <- scanner.Err() }()
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received", "messages", sent)
			return nil
		case line, ok := <-lines:
			if !ok {
				if ctx.Err() != nil {
					log.Info("shutdown signal received", "messages", sent)
					return nil
				}
				if err := <-scanErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				log.Info("input closed", "messages", sent)
				return nil
			}
			if err := s.Publish(sender.Message{
				Payload: line,
				QoS:     byte(cfg.QoS), // #nosec G115 -- validated 0..2
				Retain:  cfg.Retain,
			}); err != nil {
				return err
			}
			sent++
		}
	}
}

// getConfigPath returns the configuration file path from MQTT_SENDER_CONFIG.
// An empty result means configuration comes from defaults and environment only.
func getConfigPath() string {
	return os.Getenv("MQTT_SENDER_CONFIG")
}

// mqttConnAdapter adapts the infrastructure MQTT client to sender.Connection.
// The difference is the publish callback signature:
// - Infrastructure mqtt: func(topic string, messageID uint16)
// - sender expects: func(sender.Ack)
type mqttConnAdapter struct {
	client *mqtt.Client
}

// Connect implements sender.Connection.
func (a *mqttConnAdapter) Connect() error {
	return a.client.Connect()
}

// IsConnected implements sender.Liveness.
func (a *mqttConnAdapter) IsConnected() bool {
	return a.client.IsConnected()
}

// Publish implements sender.Connection.
func (a *mqttConnAdapter) Publish(topic string, payload []byte, qos byte, retained bool, props any) error {
	return a.client.Publish(topic, payload, qos, retained, props)
}

// SetOnPublish implements sender.Connection.
func (a *mqttConnAdapter) SetOnPublish(callback func(sender.Ack)) {
	if callback == nil {
		a.client.SetOnPublish(nil)
		return
	}
	a.client.SetOnPublish(func(topic string, messageID uint16) {
		callback(sender.Ack{MessageID: messageID, Topic: topic})
	})
}

// telemetryRecorder writes sender events to InfluxDB.
type telemetryRecorder struct {
	client *influxdb.Client
}

// RecordPublish implements sender.Recorder.
func (r *telemetryRecorder) RecordPublish(topic string, qos byte, retain bool, size int) {
	r.client.WritePublish(topic, qos, retain, size)
}

// RecordAck implements sender.Recorder.
func (r *telemetryRecorder) RecordAck(ack sender.Ack) {
	r.client.WriteAck(ack.Topic, ack.MessageID)
}
