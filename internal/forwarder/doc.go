// Package forwarder connects the reconciliation engine to an MQTT
// broker.
//
// It republishes engine events as MQTT messages for local consumers
// and feeds commands published by those consumers back into the cloud
// gateway.
//
// # Architecture
//
// The forwarder sits between the event stream and the broker:
//
//	┌─────────────────┐           ┌─────────────────┐
//	│   Event Stream  │  events   │    Forwarder    │   MQTT
//	│  (poll engine)  │──────────►│   (this pkg)    │◄────────► local consumers
//	└─────────────────┘           └─────────────────┘
//	                                      │ commands
//	                                      ▼
//	                              ┌─────────────────┐
//	                              │ Cloud gateway   │
//	                              └─────────────────┘
//
// # Key Responsibilities
//
//   - Mirror every tracked device onto a retained state topic
//   - Publish an event envelope per add/update/delete
//   - Clear the retained document when a device disappears
//   - Report cloud connection transitions on the bridge status topic
//   - Accept {functionClass, functionInstance, value} commands and
//     push them to the service, folding accepted values back into the
//     local models
//
// # Startup Order
//
// Start the forwarder before the event stream: the stream's first poll
// classifies every device as added, and those events seed the retained
// state topics. No separate backfill pass is needed.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. Event handling
// runs on the stream's delivery goroutine; command handling runs on
// the MQTT client's receive path.
package forwarder
