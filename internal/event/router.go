package event

import (
	"sync"
	"sync/atomic"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

// subscriberBuffer is the per-subscription event backlog. A
// subscriber that falls further behind starts losing events rather
// than stalling the pipeline.
const subscriberBuffer = 64

// Router fans events out to subscribers. Each subscription gets its
// own buffered channel drained by a dedicated goroutine, so a slow or
// panicking callback can never block the stream or its neighbors.
type Router struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	closed bool
	wg     sync.WaitGroup
	log    Logger

	// emitted and dropped count per-subscriber deliveries for the
	// telemetry surface.
	emitted atomic.Uint64
	dropped atomic.Uint64
}

type subscription struct {
	callback   Callback
	types      map[EventType]bool
	categories map[device.Category]bool
	ch         chan Event
}

// NewRouter returns a router with no subscribers.
func NewRouter() *Router {
	return &Router{
		subs: make(map[uint64]*subscription),
		log:  noopLogger{},
	}
}

// SetLogger sets the logger for delivery diagnostics.
func (r *Router) SetLogger(log Logger) {
	r.mu.Lock()
	r.log = log
	r.mu.Unlock()
}

// Subscribe registers a callback and returns its unsubscribe
// function. A nil or empty filter matches everything. Events that
// carry no resource (deletions, connection changes) bypass the
// category filter.
func (r *Router) Subscribe(callback Callback, types []EventType, categories []device.Category) func() {
	sub := &subscription{
		callback: callback,
		ch:       make(chan Event, subscriberBuffer),
	}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}
	if len(categories) > 0 {
		sub.categories = make(map[device.Category]bool, len(categories))
		for _, c := range categories {
			sub.categories[c] = true
		}
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return func() {}
	}
	id := r.nextID
	r.nextID++
	r.subs[id] = sub
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		for evt := range sub.ch {
			r.deliver(sub, evt)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			_, ok := r.subs[id]
			delete(r.subs, id)
			r.mu.Unlock()
			if ok {
				close(sub.ch)
			}
		})
	}
}

// Emit routes an event to every matching subscription. Emit never
// blocks; a full subscriber buffer drops the event with a log line.
func (r *Router) Emit(evt Event) {
	r.mu.RLock()
	subs := make([]*subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	log := r.log
	r.mu.RUnlock()

	for _, sub := range subs {
		if !sub.matches(evt) {
			continue
		}
		r.trySend(sub, evt, log)
	}
}

// trySend queues an event for one subscriber. The recover absorbs the
// send-on-closed-channel panic when an unsubscribe races an emit.
func (r *Router) trySend(sub *subscription, evt Event, log Logger) {
	defer func() {
		recover()
	}()

	select {
	case sub.ch <- evt:
		r.emitted.Add(1)
	default:
		r.dropped.Add(1)
		log.Warn("subscriber backlog full, dropping event",
			"event_type", string(evt.Type), "device_id", evt.DeviceID)
	}
}

// Counters returns how many events were queued to subscribers and how
// many were dropped on full subscriber buffers since the router was
// created.
func (r *Router) Counters() (emitted, dropped uint64) {
	return r.emitted.Load(), r.dropped.Load()
}

// deliver invokes one callback, absorbing panics so a broken
// subscriber cannot take down the delivery goroutine.
func (r *Router) deliver(sub *subscription, evt Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.mu.RLock()
			log := r.log
			r.mu.RUnlock()
			log.Error("subscriber panicked, please open a bug report",
				"event_type", string(evt.Type), "device_id", evt.DeviceID, "panic", rec)
		}
	}()
	sub.callback(evt)
}

func (s *subscription) matches(evt Event) bool {
	if s.types != nil && !s.types[evt.Type] {
		return false
	}
	if s.categories != nil && evt.Resource != nil && !s.categories[evt.Resource.GetCategory()] {
		return false
	}
	return true
}

// Close tears down every subscription and waits for in-flight
// deliveries to finish. Subscribing after Close is a no-op.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.wg.Wait()
		return
	}
	r.closed = true
	subs := make([]*subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	r.subs = make(map[uint64]*subscription)
	r.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
	r.wg.Wait()
}
