// Package influxdb records MQTT publish telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library as a batched,
// non-blocking sink. Telemetry is optional and off by default; every point is
// tagged with the sender's service name and MQTT client ID.
//
// # Measurements
//
//   - mqtt_publish: one point per topic publish (tags: topic, qos; fields: bytes, retain)
//   - mqtt_ack: one point per completed publish (tags: topic; fields: message_id)
//
// Payloads are never written; this is delivery telemetry, not message storage.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "sensors",
//	    Bucket:  "mqtt",
//	}
//
//	client, err := influxdb.Connect(ctx, cfg, map[string]string{"service": "mqtt-sender"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WritePublish("sensors/temp", 1, false, 4)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Write errors are delivered asynchronously to the SetOnError callback.
// Close flushes pending points.
package influxdb
