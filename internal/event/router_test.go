package event

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

type fakeResource struct {
	id       string
	category device.Category
}

func (r *fakeResource) GetID() string                { return r.id }
func (r *fakeResource) GetCategory() device.Category { return r.category }

// waitEvent pulls the next event off a collector channel or fails the
// test.
func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// drainEvents empties a collector channel without blocking. Call it
// after the router has been closed so nothing is still in flight.
func drainEvents(ch <-chan Event) []Event {
	var evts []Event
	for {
		select {
		case evt := <-ch:
			evts = append(evts, evt)
		default:
			return evts
		}
	}
}

func collector(buffer int) (Callback, <-chan Event) {
	ch := make(chan Event, buffer)
	return func(evt Event) {
		select {
		case ch <- evt:
		default:
		}
	}, ch
}

func TestRouter_NilFiltersMatchEverything(t *testing.T) {
	router := NewRouter()
	defer router.Close()

	cb, ch := collector(8)
	router.Subscribe(cb, nil, nil)

	router.Emit(Event{Type: Connected})
	router.Emit(Event{
		Type:     ResourceUpdated,
		DeviceID: "fan-1",
		Resource: &fakeResource{id: "fan-1", category: device.CategoryFan},
	})

	if evt := waitEvent(t, ch); evt.Type != Connected {
		t.Errorf("first event = %q, want %q", evt.Type, Connected)
	}
	if evt := waitEvent(t, ch); evt.Type != ResourceUpdated {
		t.Errorf("second event = %q, want %q", evt.Type, ResourceUpdated)
	}
}

func TestRouter_TypeFilter(t *testing.T) {
	router := NewRouter()

	cb, ch := collector(8)
	router.Subscribe(cb, []EventType{ResourceDeleted}, nil)

	router.Emit(Event{Type: ResourceAdded, DeviceID: "a"})
	router.Emit(Event{Type: ResourceDeleted, DeviceID: "b"})
	router.Emit(Event{Type: Connected})
	router.Close()

	got := drainEvents(ch)
	if len(got) != 1 {
		t.Fatalf("received %d events, want 1", len(got))
	}
	if got[0].Type != ResourceDeleted || got[0].DeviceID != "b" {
		t.Errorf("received %q for %q, want %q for %q",
			got[0].Type, got[0].DeviceID, ResourceDeleted, "b")
	}
}

func TestRouter_CategoryFilter(t *testing.T) {
	router := NewRouter()

	cb, ch := collector(8)
	router.Subscribe(cb, nil, []device.Category{device.CategoryLight})

	// Wrong category: dropped.
	router.Emit(Event{
		Type:     ResourceUpdated,
		DeviceID: "fan-1",
		Category: device.CategoryFan,
		Resource: &fakeResource{id: "fan-1", category: device.CategoryFan},
	})
	// Matching category: delivered.
	router.Emit(Event{
		Type:     ResourceUpdated,
		DeviceID: "light-1",
		Category: device.CategoryLight,
		Resource: &fakeResource{id: "light-1", category: device.CategoryLight},
	})
	// No resource attached: category filter does not apply.
	router.Emit(Event{Type: Disconnected})
	router.Close()

	got := drainEvents(ch)
	if len(got) != 2 {
		t.Fatalf("received %d events, want 2", len(got))
	}
	if got[0].DeviceID != "light-1" {
		t.Errorf("first event device = %q, want %q", got[0].DeviceID, "light-1")
	}
	if got[1].Type != Disconnected {
		t.Errorf("second event = %q, want %q", got[1].Type, Disconnected)
	}
}

func TestRouter_Unsubscribe(t *testing.T) {
	router := NewRouter()
	defer router.Close()

	cb, ch := collector(8)
	unsubscribe := router.Subscribe(cb, nil, nil)

	router.Emit(Event{Type: ResourceAdded, DeviceID: "a"})
	if evt := waitEvent(t, ch); evt.DeviceID != "a" {
		t.Fatalf("event device = %q, want %q", evt.DeviceID, "a")
	}

	unsubscribe()
	unsubscribe() // second call is a no-op

	router.Emit(Event{Type: ResourceAdded, DeviceID: "b"})
	select {
	case evt := <-ch:
		t.Errorf("received %q for %q after unsubscribe", evt.Type, evt.DeviceID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRouter_PanickingSubscriberIsolated(t *testing.T) {
	router := NewRouter()

	var calls atomic.Int32
	router.Subscribe(func(evt Event) {
		calls.Add(1)
		panic("subscriber bug")
	}, nil, nil)

	healthy, healthyCh := collector(8)
	router.Subscribe(healthy, nil, nil)

	router.Emit(Event{Type: ResourceAdded, DeviceID: "a"})
	router.Emit(Event{Type: ResourceAdded, DeviceID: "b"})
	router.Close()

	if got := calls.Load(); got != 2 {
		t.Errorf("panicking subscriber invoked %d times, want 2", got)
	}
	if got := drainEvents(healthyCh); len(got) != 2 {
		t.Errorf("healthy subscriber received %d events, want 2", len(got))
	}
}

func TestRouter_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	router := NewRouter()

	gate := make(chan struct{})
	var delivered atomic.Int32
	var once sync.Once
	router.Subscribe(func(evt Event) {
		once.Do(func() { <-gate })
		delivered.Add(1)
	}, nil, nil)

	// First event parks the worker; the buffer then fills and the
	// rest are dropped without Emit ever blocking.
	total := subscriberBuffer + 16
	done := make(chan struct{})
	go func() {
		for i := 0; i < total; i++ {
			router.Emit(Event{Type: ResourceUpdated, DeviceID: "dev"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a slow subscriber")
	}

	close(gate)
	router.Close()

	got := int(delivered.Load())
	if got < subscriberBuffer {
		t.Errorf("delivered %d events, want at least %d", got, subscriberBuffer)
	}
	if got >= total {
		t.Errorf("delivered %d events, want fewer than the %d emitted", got, total)
	}
}

func TestRouter_Counters(t *testing.T) {
	router := NewRouter()

	gate := make(chan struct{})
	var once sync.Once
	router.Subscribe(func(evt Event) {
		once.Do(func() { <-gate })
	}, nil, nil)

	// Park the worker on the first event, then overfill the buffer so
	// the tail of the burst is dropped.
	total := subscriberBuffer + 8
	for i := 0; i < total; i++ {
		router.Emit(Event{Type: ResourceUpdated, DeviceID: "dev"})
	}

	close(gate)
	router.Close()

	emitted, dropped := router.Counters()
	if emitted+dropped != uint64(total) {
		t.Errorf("emitted(%d) + dropped(%d) = %d, want %d",
			emitted, dropped, emitted+dropped, total)
	}
	if dropped == 0 {
		t.Error("dropped = 0, want drops after overfilling the buffer")
	}
	if emitted < subscriberBuffer {
		t.Errorf("emitted = %d, want at least %d", emitted, subscriberBuffer)
	}
}

func TestRouter_Close(t *testing.T) {
	router := NewRouter()

	cb, ch := collector(8)
	router.Subscribe(cb, nil, nil)

	router.Emit(Event{Type: ResourceAdded, DeviceID: "a"})
	router.Close()
	router.Close() // idempotent

	if got := drainEvents(ch); len(got) != 1 {
		t.Fatalf("received %d events before close, want 1", len(got))
	}

	// Emissions and subscriptions after Close go nowhere.
	router.Emit(Event{Type: ResourceAdded, DeviceID: "b"})
	unsubscribe := router.Subscribe(cb, nil, nil)
	unsubscribe()
	router.Emit(Event{Type: ResourceAdded, DeviceID: "c"})

	if got := drainEvents(ch); len(got) != 0 {
		t.Errorf("received %d events after close, want 0", len(got))
	}
}
