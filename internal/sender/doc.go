// Package sender republishes payloads to a fixed list of MQTT topics.
//
// A Sender owns one broker connection. Construction initiates the connection
// and blocks until it is confirmed live, polling once per second up to the
// configured timeout. Only then is the Sender returned, so no publish is ever
// attempted on a connection that has not been live at least once.
//
//	Sender ──Publish──► topic 1, topic 2, ... topic N (same payload, in order)
//
// # Failure Semantics
//
//   - ErrConnectionTimeout: readiness was not reached within the bound. This is
//     fatal by default; cmd/mqttsender exits with a non-zero status. Callers
//     embedding the package receive the error and decide for themselves.
//   - Transport publish errors are not caught. The first failing topic stops
//     the fan-out: earlier topics have been sent, later ones are not attempted.
//   - Nothing is retried. Reconnection after the initial readiness wait is the
//     transport's business.
//
// # Acknowledgements
//
// Completed publishes are reported by the transport on its own goroutine and
// handled by a callback bound to the Sender. The Sender logs the message id
// and forwards it to Options.OnAck and Options.Recorder; it keeps no mapping
// from message id to request.
//
// # Usage
//
//	s, err := sender.New(ctx, conn, sender.Options{
//	    Topics:                   cfg.MQTT.Topics,
//	    ConnectionTimeoutSeconds: cfg.MQTT.ConnectionTimeoutSeconds,
//	    Logger:                   log,
//	})
//	if err != nil {
//	    return err // ErrConnectionTimeout is fatal
//	}
//	err = s.Publish(sender.Message{Payload: []byte(`21.5`), QoS: 1})
package sender
