package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// Publish enqueues a message for the specified MQTT topic.
//
// The call returns as soon as paho has accepted the message; it does not
// wait for delivery. Completion is reported asynchronously through the
// handler set with SetOnPublish.
//
// Parameters:
//   - topic: The topic to publish to (no wildcards)
//   - payload: The message payload (max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// The trailing properties argument is accepted and dropped; MQTT 3.1.1 has
// no properties for paho to transmit.
//
// QoS Levels:
//   - 0: At most once (fire and forget)
//   - 1: At least once (guaranteed delivery, may duplicate)
//   - 2: Exactly once (guaranteed, no duplicates, higher overhead)
//
// Returns:
//   - error: nil once enqueued, or wrapped error describing the rejection
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool, _ any) error {
	if err := ValidatePublishTopic(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return fmt.Errorf("%w: got %d", ErrInvalidQoS, qos)
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)

	// paho completes the token immediately when it refuses the message.
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: %w", ErrPublishFailed, err)
		}
		c.notifyPublished(topic, token)
		return nil
	default:
	}

	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT publish failed after enqueue",
					"topic", topic,
					"error", err,
				)
			}
			return
		}
		c.notifyPublished(topic, token)
	}()

	return nil
}

// notifyPublished hands a completed token to the publish handler.
func (c *Client) notifyPublished(topic string, token pahomqtt.Token) {
	handler := c.getOnPublish()
	if handler == nil {
		return
	}

	var messageID uint16
	if pt, ok := token.(*pahomqtt.PublishToken); ok {
		messageID = pt.MessageID()
	}

	// Run on its own goroutine so the publishing caller never executes the
	// handler, even when paho completed the token synchronously.
	go handler(topic, messageID)
}
