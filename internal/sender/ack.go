package sender

// Ack reports that the transport finished a publish.
//
// MessageID is the transport's packet identifier; it is opaque here and
// QoS 0 publishes carry 0. No mapping back to the originating Publish call is
// kept.
type Ack struct {
	MessageID uint16
	Topic     string
}

// handleAck is bound to the Sender and registered with the connection. It runs
// on the transport's goroutine and touches only immutable Sender fields.
func (s *Sender) handleAck(ack Ack) {
	s.log.Debug("publish acknowledged",
		"message_id", ack.MessageID,
		"topic", ack.Topic,
	)

	if s.recorder != nil {
		s.recorder.RecordAck(ack)
	}
	if s.onAck != nil {
		s.onAck(ack)
	}
}
