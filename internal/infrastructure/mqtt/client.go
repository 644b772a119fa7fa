package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/mqtt-sender/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang with the connection-manager capability the
// sender needs: initiate a connection, report liveness, publish, and surface
// publish completions.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Callbacks run on goroutines owned by the client, never the caller's.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig

	// connected tracks the state reported by paho's connect/lost handlers.
	connected bool
	connMu    sync.RWMutex

	// Callbacks for connection and publish events (optional).
	onConnect    func()
	onDisconnect func(err error)
	onPublish    PublishHandler
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// PublishHandler is invoked once per completed publish with the topic and
// the packet identifier paho assigned to it. QoS 0 messages carry id 0.
type PublishHandler func(topic string, messageID uint16)

// New creates a client from configuration without connecting.
//
// Call Connect to start the connection; paho runs its network goroutines
// from that point on.
func New(cfg config.MQTTConfig) *Client {
	opts := buildClientOptions(cfg)

	c := &Client{
		cfg:     cfg,
		options: opts,
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	c.client = pahomqtt.NewClient(opts)
	return c
}

// Connect initiates the broker connection and returns without waiting for
// the handshake. Use IsConnected to learn when the session is live.
//
// Returns:
//   - error: ErrConnectionFailed if paho rejected the attempt outright
func (c *Client) Connect() error {
	token := c.client.Connect()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		}
	default:
	}

	return nil
}

// ClientID returns the client identifier presented to the broker.
func (c *Client) ClientID() string {
	return c.options.ClientID
}

// handleConnect is called when the connection is established.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called when the connection is lost.
func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// Close disconnects from the MQTT broker, giving in-flight publishes the
// quiesce period to complete.
//
// Returns:
//   - error: always nil; closing an unconnected client is not an error
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// IsConnected reports whether the network connection to the broker is open.
//
// paho's own IsConnected also returns true while a connect retry is still in
// progress, so the open-connection check is used instead.
func (c *Client) IsConnected() bool {
	if c.client == nil {
		return false
	}

	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnectionOpen()
}

// SetOnConnect sets a callback to be invoked when connection is established.
// This is called on initial connect and on every reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback to be invoked when connection is lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetOnPublish sets the callback invoked when a publish completes.
func (c *Client) SetOnPublish(callback PublishHandler) {
	c.callbackMu.Lock()
	c.onPublish = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for asynchronous publish failures.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

func (c *Client) getOnPublish() PublishHandler {
	c.callbackMu.RLock()
	defer c.callbackMu.RUnlock()
	return c.onPublish
}
