// Package event turns the service's full-listing polls into a stream
// of add, update and delete events with connection tracking.
//
// # Architecture
//
// The stream runs two goroutines. The poll goroutine fetches the
// complete device listing on an interval and diffs it against the
// registry of tracked ids; every difference becomes an event on a
// bounded queue. The consumer goroutine drains the queue, applies
// each event to the owning category store and hands the finished
// event to the router, which fans it out to subscribers.
//
//	gateway.FetchSnapshots
//	        |
//	   poll goroutine ----- classify against Registry
//	        |
//	   bounded queue (backpressure, ordered)
//	        |
//	  consumer goroutine -- mutate Store, build model
//	        |
//	      Router ---------- per-subscriber buffered fan-out
//
// Classification registers new devices immediately, so a device is
// visible as tracked the moment the poll sees it, and deletions
// capture their owning store before the registry entry is dropped.
// Devices whose category has no registered store are skipped.
//
// Connection events bypass the queue entirely: a transient gateway
// failure flips the stream to disconnected exactly once, and the
// first successful poll afterwards emits Reconnected. Auth failures
// and unexpected errors are logged without touching the connection
// state, and no error ends the poll loop.
//
// # Usage
//
//	stream := event.NewStream(client, &event.Options{
//		PollInterval: 30 * time.Second,
//	})
//	stream.RegisterStore(device.CategoryLight, lights)
//
//	unsubscribe := stream.Subscribe(func(evt event.Event) {
//		fmt.Println(evt.Type, evt.DeviceID)
//	}, nil, []device.Category{device.CategoryLight})
//	defer unsubscribe()
//
//	if err := stream.Start(ctx); err != nil {
//		return err
//	}
//	defer stream.Stop()
//
// Subscribers run on their own goroutines with a small buffer each; a
// subscriber that cannot keep up loses events rather than stalling
// the pipeline. Stop is terminal.
package event
