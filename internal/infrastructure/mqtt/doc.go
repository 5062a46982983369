// Package mqtt provides MQTT client connectivity for the Hubspace bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The bridge republishes cloud device state onto a local MQTT broker so
// that dashboards, automations and other consumers never need to talk to
// the cloud themselves. Commands flow the other way: anything published
// under the command topics is pushed back through the cloud gateway.
//
//	Hubspace cloud ↔ bridge ↔ MQTT broker ↔ local consumers
//
// # Security Considerations
//
//   - TLS is recommended for non-local brokers (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff per mqtt.reconnect config
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to inbound device commands
//	err = client.Subscribe(client.Topics().AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish retained device state
//	topic := client.Topics().DeviceState("8ea6c4d8")
//	client.PublishRetained(topic, stateJSON)
package mqtt
