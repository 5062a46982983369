package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/gateway"
)

const (
	// DefaultPollInterval is how often the stream asks the service
	// for a fresh device listing.
	DefaultPollInterval = 30 * time.Second

	// defaultQueueSize bounds the classification queue. The poll
	// goroutine blocks when the consumer falls this far behind.
	defaultQueueSize = 256
)

// PollStats describes one completed poll cycle for telemetry hooks.
type PollStats struct {
	// Result is "ok", "transient", "auth" or "error".
	Result     string
	Duration   time.Duration
	Devices    int
	Added      int
	Updated    int
	Deleted    int
	Skipped    int
	QueueDepth int
}

// Options tunes a Stream. The zero value selects the defaults.
type Options struct {
	// PollInterval between completed polls. Defaults to
	// DefaultPollInterval.
	PollInterval time.Duration

	// QueueSize bounds the event queue between the poll goroutine
	// and the consumer. Defaults to 256.
	QueueSize int

	// Logger receives stream diagnostics. Defaults to a no-op.
	Logger Logger
}

// Stream owns the poll/diff cycle. One goroutine polls the service
// and classifies the listing against the registry; a second drains
// the resulting queue, mutates the stores and hands finished events
// to the router. Connection events skip the queue so status changes
// are never delayed behind a backlog.
type Stream struct {
	gateway  snapshotFetcher
	registry *Registry
	router   *Router

	queue chan Event
	log   Logger

	mu            sync.RWMutex
	stores        map[device.Category]Store
	interval      time.Duration
	status        Status
	everConnected bool
	running       bool
	stopped       bool
	onPoll        func(PollStats)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStream builds a stream over the given gateway. Call
// RegisterStore for every category to track, then Start.
func NewStream(gw snapshotFetcher, opts *Options) *Stream {
	if opts == nil {
		opts = &Options{}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}

	s := &Stream{
		gateway:  gw,
		registry: NewRegistry(),
		router:   NewRouter(),
		queue:    make(chan Event, queueSize),
		log:      log,
		stores:   make(map[device.Category]Store),
		interval: interval,
		status:   StatusDisconnected,
	}
	s.router.SetLogger(log)
	return s
}

// SetLogger sets the logger for the stream and its router.
func (s *Stream) SetLogger(log Logger) {
	s.mu.Lock()
	s.log = log
	s.mu.Unlock()
	s.router.SetLogger(log)
}

// RegisterStore makes the stream classify devices of the category
// into the store. Categories without a store are skipped during
// classification.
func (s *Stream) RegisterStore(category device.Category, store Store) {
	s.mu.Lock()
	s.stores[category] = store
	s.mu.Unlock()
}

// Registry exposes the device registry for seeding and inspection.
func (s *Stream) Registry() *Registry {
	return s.registry
}

// Subscribe registers a callback on the stream's router and returns
// its unsubscribe function.
func (s *Stream) Subscribe(callback Callback, types []EventType, categories []device.Category) func() {
	return s.router.Subscribe(callback, types, categories)
}

// Emit hands an event straight to subscribers, bypassing the queue
// and the stores.
func (s *Stream) Emit(evt Event) {
	s.router.Emit(evt)
}

// SetPollHook installs a callback invoked after every poll cycle with
// that cycle's statistics. Pass nil to remove it.
func (s *Stream) SetPollHook(hook func(PollStats)) {
	s.mu.Lock()
	s.onPoll = hook
	s.mu.Unlock()
}

// Start launches the poll and consumer goroutines. The stream runs
// until Stop is called or ctx is cancelled. A stream can be started
// once; Stop is terminal.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.status = StatusConnecting
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.wg.Add(2)
	go s.pollLoop(ctx)
	go s.consumeLoop(ctx)
	return nil
}

// Stop halts polling, waits for the goroutines to finish and closes
// every subscription. The stream cannot be started again.
func (s *Stream) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.router.Close()
}

// Status returns the stream's connection status.
func (s *Stream) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Connected reports whether the last poll succeeded.
func (s *Stream) Connected() bool {
	return s.Status() == StatusConnected
}

// PollInterval returns the current interval between polls.
func (s *Stream) PollInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// SetPollInterval changes the interval between polls. It applies
// after the wait in progress.
func (s *Stream) SetPollInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = interval
	s.mu.Unlock()
}

// QueueDepth returns the number of classified events awaiting the
// consumer.
func (s *Stream) QueueDepth() int {
	return len(s.queue)
}

// EventCounters reports how many events were handed to subscribers and
// how many were dropped on full subscriber buffers.
func (s *Stream) EventCounters() (emitted, dropped uint64) {
	return s.router.Counters()
}

// TrackedDevices returns the ids of every device the stream tracks.
func (s *Stream) TrackedDevices() []string {
	return s.registry.IDs()
}

// pollLoop polls, then waits the interval, so at most one poll is in
// flight and a slow service cannot stack requests.
func (s *Stream) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		s.performPoll(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.PollInterval()):
		}
	}
}

// performPoll fetches one listing and classifies it. Errors never end
// the loop; the next cycle retries from scratch.
func (s *Stream) performPoll(ctx context.Context) {
	start := time.Now()
	snaps, err := s.gateway.FetchSnapshots(ctx)

	stats := PollStats{Result: "ok"}
	switch {
	case err == nil:
		s.markConnected()
		counts := s.classify(ctx, snaps)
		stats.Devices = len(snaps)
		stats.Added = counts.added
		stats.Updated = counts.updated
		stats.Deleted = counts.deleted
		stats.Skipped = counts.skipped
	case ctx.Err() != nil:
		return
	case errors.Is(err, gateway.ErrInvalidAuth):
		stats.Result = "auth"
		s.log.Error("authentication rejected during poll", "error", err)
	case errors.Is(err, gateway.ErrTransient):
		stats.Result = "transient"
		s.markDisconnected(err)
	default:
		stats.Result = "error"
		s.log.Warn("poll failed", "error", err)
	}

	stats.Duration = time.Since(start)
	stats.QueueDepth = len(s.queue)

	s.mu.RLock()
	hook := s.onPoll
	s.mu.RUnlock()
	if hook != nil {
		hook(stats)
	}
}

// markConnected records a successful poll, emitting Connected on the
// first success and Reconnected after an outage.
func (s *Stream) markConnected() {
	s.mu.Lock()
	if s.status == StatusConnected {
		s.mu.Unlock()
		return
	}
	s.status = StatusConnected
	first := !s.everConnected
	s.everConnected = true
	s.mu.Unlock()

	if first {
		s.log.Info("connected")
		s.router.Emit(Event{Type: Connected})
		return
	}
	s.log.Info("reconnected")
	s.router.Emit(Event{Type: Reconnected})
}

// markDisconnected records a transient failure. Only the transition
// into the disconnected state logs and emits; repeat failures while
// already down stay quiet.
func (s *Stream) markDisconnected(err error) {
	s.mu.Lock()
	if s.status == StatusDisconnected {
		s.mu.Unlock()
		s.log.Debug("still disconnected", "error", err)
		return
	}
	s.status = StatusDisconnected
	s.mu.Unlock()

	s.log.Warn("connection to service lost", "error", err)
	s.router.Emit(Event{Type: Disconnected})
}

type classifyCounts struct {
	added   int
	updated int
	deleted int
	skipped int
}

// classify diffs a full listing against the registry and enqueues the
// resulting events. New devices are registered immediately so a
// second sighting in the same batch cannot double-add, and so readers
// see them as tracked before the consumer builds their model.
// Devices the registry knows but the listing lacks are deletions;
// their store is captured into the event before the entry is removed.
func (s *Stream) classify(ctx context.Context, snaps []*device.Snapshot) classifyCounts {
	var counts classifyCounts
	seen := make(map[string]bool, len(snaps))

	for _, snap := range snaps {
		seen[snap.ID] = true

		if s.registry.Has(snap.ID) {
			category, _ := s.registry.Category(snap.ID)
			s.enqueue(ctx, Event{
				Type:     ResourceUpdated,
				DeviceID: snap.ID,
				Category: category,
				Snapshot: snap,
			})
			counts.updated++
			continue
		}

		category := device.CategoryOf(snap)
		s.mu.RLock()
		store, tracked := s.stores[category]
		s.mu.RUnlock()
		if !tracked {
			counts.skipped++
			continue
		}

		s.registry.Add(snap.ID, store, category)
		s.enqueue(ctx, Event{
			Type:     ResourceAdded,
			DeviceID: snap.ID,
			Category: category,
			Snapshot: snap,
			store:    store,
		})
		counts.added++
	}

	for _, id := range s.registry.IDs() {
		if seen[id] {
			continue
		}
		store, _ := s.registry.Lookup(id)
		category, _ := s.registry.Category(id)
		s.registry.Remove(id)
		s.enqueue(ctx, Event{
			Type:     ResourceDeleted,
			DeviceID: id,
			Category: category,
			store:    store,
		})
		counts.deleted++
	}

	return counts
}

// enqueue blocks until the consumer makes room or the stream shuts
// down. Backpressure here throttles polling instead of dropping
// resource events.
func (s *Stream) enqueue(ctx context.Context, evt Event) {
	select {
	case s.queue <- evt:
	case <-ctx.Done():
	}
}

// consumeLoop drains the queue one event at a time, keeping store
// mutations and subscriber emission in listing order.
func (s *Stream) consumeLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.queue:
			s.processEvent(evt)
		}
	}
}

// processEvent dispatches one classified event to its store. A panic
// or error in one event never stops the consumer.
func (s *Stream) processEvent(evt Event) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("event processing panicked, please open a bug report",
				"event_type", string(evt.Type), "device_id", evt.DeviceID, "panic", rec)
		}
	}()

	switch evt.Type {
	case ResourceAdded:
		s.processAdded(evt)
	case ResourceUpdated:
		s.processUpdated(evt)
	case ResourceDeleted:
		s.processDeleted(evt)
	default:
		s.router.Emit(evt)
	}
}

func (s *Stream) processAdded(evt Event) {
	resource, err := evt.store.InitializeElem(evt.Snapshot)
	if err != nil {
		s.log.Error("unable to initialize device, please open a bug report",
			"device_id", evt.DeviceID, "error", err)
		return
	}
	s.registry.Add(evt.DeviceID, evt.store, evt.Category)
	evt.Resource = resource
	s.router.Emit(evt)
}

func (s *Stream) processUpdated(evt Event) {
	store, ok := s.registry.Lookup(evt.DeviceID)
	if !ok {
		s.log.Debug("update for untracked device, skipping", "device_id", evt.DeviceID)
		return
	}
	resource, changed, err := store.UpdateElem(evt.Snapshot)
	if err != nil {
		s.log.Error("unable to update device, please open a bug report",
			"device_id", evt.DeviceID, "error", err)
		return
	}
	if len(changed) == 0 && !evt.ForceForward {
		return
	}
	evt.Resource = resource
	s.router.Emit(evt)
}

func (s *Stream) processDeleted(evt Event) {
	if evt.store != nil {
		evt.store.Remove(evt.DeviceID)
	}
	s.registry.Remove(evt.DeviceID)
	s.router.Emit(evt)
}
