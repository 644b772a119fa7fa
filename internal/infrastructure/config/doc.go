// Package config handles loading and validating MQTT sender configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with environment variables (MQTT_SENDER_*)
//   - Validation of required fields
//   - Default value handling
//
// The sender core never reads the environment itself. Everything it needs is
// carried by the Config value built here and passed to constructors.
//
// Security Considerations:
//   - Broker credentials should be set via MQTT_SENDER_USERNAME and
//     MQTT_SENDER_PASSWORD rather than committed to a config file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("MQTT_SENDER_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Topics)
package config
