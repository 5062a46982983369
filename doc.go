// Package hubspace is a client library for Hubspace smart home
// devices, which talk through the Afero cloud rather than locally.
//
// The Bridge is the entry point: it logs into the account, loads the
// device fleet into per-category stores and keeps them current by
// polling the service and diffing each listing into add, update and
// delete events.
//
// # Architecture
//
//	                 Bridge (this package)
//	                    │
//	      ┌─────────────┼──────────────┐
//	      ▼             ▼              ▼
//	  gateway       event.Stream   category stores
//	  (HTTP+OAuth)  (poll/diff)    (Lights, Fans, ...)
//
// Initialize resolves the account, bulk-loads every device and then
// starts the poll engine; the stores stay consistent with the service
// from that point on. Typed operations on the stores (TurnOn,
// SetBrightness, Lock, ...) write through the cloud and fold the
// accepted values straight back into the local models.
//
// # Usage
//
//	bridge := hubspace.NewBridge(hubspace.Config{
//		Username: "user@example.com",
//		Password: "secret",
//	})
//	if err := bridge.Initialize(ctx); err != nil {
//		return err
//	}
//	defer bridge.Close()
//
//	for _, light := range bridge.Lights().Items() {
//		fmt.Println(light.ID, light.DeviceInformation.Name)
//	}
//
//	unsubscribe := bridge.Subscribe(func(evt hubspace.Event) {
//		fmt.Println(evt.Type, evt.DeviceID)
//	})
//	defer unsubscribe()
//
// The engine polls until Close is called or the Initialize context is
// cancelled. Every exported type from the internal packages is
// aliased here, so consumers never import internal/... paths.
package hubspace
