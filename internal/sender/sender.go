package sender

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Connection is the connection-manager capability a Sender is composed with.
//
// Connect must start the connection without waiting for the handshake.
// Publish must return once the transport has accepted (or refused) the
// message; it must not wait for delivery. SetOnPublish registers the
// completion callback, which the transport invokes on its own goroutine.
type Connection interface {
	Liveness
	Connect() error
	Publish(topic string, payload []byte, qos byte, retained bool, props any) error
	SetOnPublish(func(Ack))
}

// Logger is the logging surface the sender uses.
// Compatible with logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Critical(msg string, args ...any)
}

// Recorder receives publish and acknowledgement events for telemetry.
type Recorder interface {
	RecordPublish(topic string, qos byte, retain bool, size int)
	RecordAck(ack Ack)
}

// Options configures a Sender.
type Options struct {
	// Topics is the fan-out list, copied at construction. Empty is allowed.
	Topics []string

	// ConnectionTimeoutSeconds bounds the readiness wait; values below 1
	// are treated as 1.
	ConnectionTimeoutSeconds int

	// PollInterval overrides the one-second readiness poll. Zero keeps the default.
	PollInterval time.Duration

	Logger   Logger
	OnAck    func(Ack)
	Recorder Recorder
}

// Message is one publish request. The zero value publishes an empty payload
// at QoS 0 without retain.
type Message struct {
	Payload []byte
	QoS     byte
	Retain  bool

	// Properties is handed to the transport untouched.
	Properties any
}

// Sender republishes each message to every configured topic over a single
// shared connection.
//
// Thread Safety:
//   - The topic list is immutable after New and needs no locking.
//   - Concurrent Publish calls are as safe as the Connection's Publish;
//     the mqtt client is safe for concurrent use.
type Sender struct {
	conn     Connection
	topics   []string
	log      Logger
	onAck    func(Ack)
	recorder Recorder
}

// New connects conn, waits for it to become live and returns a Sender that
// publishes to opts.Topics.
//
// The connection is initiated here and confirmed live before New returns, so
// a returned Sender has always seen a live connection.
//
// Returns:
//   - *Sender: Ready sender
//   - error: ErrConnectionTimeout (fatal by default), a Connect error, or the
//     context error
func New(ctx context.Context, conn Connection, opts Options) (*Sender, error) {
	if conn == nil {
		return nil, ErrNilConnection
	}

	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	log.Info("sender connecting")
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("sender: initiating connection: %w", err)
	}

	log.Info("sender testing connection",
		"timeout_seconds", EffectiveTimeout(opts.ConnectionTimeoutSeconds),
	)
	checker := Checker{Interval: opts.PollInterval, Logger: log}
	if err := checker.Await(ctx, conn, opts.ConnectionTimeoutSeconds); err != nil {
		return nil, err
	}

	s := &Sender{
		conn:     conn,
		topics:   slices.Clone(opts.Topics),
		log:      log,
		onAck:    opts.OnAck,
		recorder: opts.Recorder,
	}
	conn.SetOnPublish(s.handleAck)

	for _, topic := range s.topics {
		log.Info("sender will publish to topic", "topic", topic)
	}

	return s, nil
}

// Publish sends msg to every configured topic in order.
//
// There is no atomicity across topics. The first transport error stops the
// fan-out and is returned; topics before it were already sent and topics
// after it are not attempted. With no topics configured this is a no-op.
//
// QoS and payload are not validated here; the transport rejects what it
// cannot send.
func (s *Sender) Publish(msg Message) error {
	for _, topic := range s.topics {
		if err := s.conn.Publish(topic, msg.Payload, msg.QoS, msg.Retain, msg.Properties); err != nil {
			return fmt.Errorf("publishing to %q: %w", topic, err)
		}
		if s.recorder != nil {
			s.recorder.RecordPublish(topic, msg.QoS, msg.Retain, len(msg.Payload))
		}
	}
	return nil
}

// PublishPayload publishes payload at QoS 0 without retain.
func (s *Sender) PublishPayload(payload []byte) error {
	return s.Publish(Message{Payload: payload})
}

// Topics returns a copy of the fan-out list in stored order.
func (s *Sender) Topics() []string {
	return slices.Clone(s.topics)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any)    {}
func (nopLogger) Info(string, ...any)     {}
func (nopLogger) Critical(string, ...any) {}
