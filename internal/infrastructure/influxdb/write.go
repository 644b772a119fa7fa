package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by this package.
const (
	measurementPublish = "mqtt_publish"
	measurementAck     = "mqtt_ack"
)

// WritePublish records one publish to one topic.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - topic: Topic the message was published to
//   - qos: QoS level requested
//   - retain: Retain flag requested
//   - size: Payload size in bytes
func (c *Client) WritePublish(topic string, qos byte, retain bool, size int) {
	c.writePoint(measurementPublish,
		map[string]string{
			"topic": topic,
			"qos":   strconv.Itoa(int(qos)),
		},
		map[string]interface{}{
			"bytes":  size,
			"retain": retain,
		},
	)
}

// WriteAck records a completed publish.
//
// Parameters:
//   - topic: Topic the completed message was published to
//   - messageID: Packet identifier reported by the transport (0 for QoS 0)
func (c *Client) WriteAck(topic string, messageID uint16) {
	c.writePoint(measurementAck,
		map[string]string{
			"topic": topic,
		},
		map[string]interface{}{
			"message_id": int64(messageID),
		},
	)
}

// writePoint queues one point. The read lock is held across the queueing so
// Close cannot release the write API underneath it.
func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
