package mqtt

import (
	"fmt"
	"strings"
)

// maxTopicLength is the MQTT limit on an encoded topic name (two-byte length prefix).
const maxTopicLength = 65535

// ValidatePublishTopic checks that topic may be used as a publish target.
//
// Publish topics must be non-empty, must not contain the + or # wildcards
// (those are only valid in subscription filters), must not contain NUL, and
// must fit the protocol's length prefix.
//
// Example:
//
//	mqtt.ValidatePublishTopic("sensors/temp")  // nil
//	mqtt.ValidatePublishTopic("sensors/+")     // ErrInvalidTopic
func ValidatePublishTopic(topic string) error {
	switch {
	case topic == "":
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidTopic)
	case strings.ContainsAny(topic, "+#"):
		return fmt.Errorf("%w: wildcards not allowed in %q", ErrInvalidTopic, topic)
	case strings.ContainsRune(topic, 0):
		return fmt.Errorf("%w: NUL character in topic", ErrInvalidTopic)
	case len(topic) > maxTopicLength:
		return fmt.Errorf("%w: topic length %d exceeds %d bytes", ErrInvalidTopic, len(topic), maxTopicLength)
	}
	return nil
}
