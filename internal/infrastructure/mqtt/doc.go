// Package mqtt provides the MQTT transport used by the sender.
//
// This package manages:
//   - Building paho client options from configuration (URL, auth, TLS)
//   - Initiating a broker connection without blocking the caller
//   - Reporting whether the network connection is actually open
//   - Non-blocking publishes with asynchronous completion callbacks
//
// Readiness waiting and topic fan-out live in internal/sender; this package
// only adapts paho to the operations that code consumes.
//
// # Security Considerations
//
//   - TLS should be enabled for brokers reached over untrusted networks
//     (cfg.Broker.TLS=true); TLS 1.2 is the minimum accepted version
//   - Credentials are sent only when a username is configured
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT)
//	client.SetOnPublish(func(topic string, id uint16) {
//	    log.Printf("published %s (mid %d)", topic, id)
//	})
//	if err := client.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// once client.IsConnected() reports true:
//	err := client.Publish("sensors/temp", []byte(`21.5`), 0, false, nil)
package mqtt
