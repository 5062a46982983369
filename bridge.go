package hubspace

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/controller"
	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/gateway"
)

// Config carries everything a bridge needs. Username and Password are
// the account login; the rest is optional tuning.
type Config struct {
	Username string
	Password string

	// PollInterval between device listings. Defaults to
	// DefaultPollInterval.
	PollInterval time.Duration

	// Timeout bounds each request to the service. Ignored when
	// HTTPClient is set. Defaults to 30 seconds.
	Timeout time.Duration

	// Logger receives diagnostics from every layer. Defaults to a
	// no-op.
	Logger Logger

	// Endpoints overrides the service URLs. The zero value selects
	// production; tests point these at local servers.
	Endpoints Endpoints

	// HTTPClient overrides the HTTP client used for every request.
	HTTPClient *http.Client
}

// Bridge is the top-level handle on one account: it owns the cloud
// client, the event stream and a store per device category.
//
// Thread Safety: all methods are safe for concurrent use.
type Bridge struct {
	gateway *gateway.Client
	stream  *event.Stream
	log     Logger

	devices  *controller.DeviceController
	lights   *controller.LightController
	fans     *controller.FanController
	locks    *controller.LockController
	switches *controller.SwitchController
	valves   *controller.ValveController

	stores map[Category]Store

	mu          sync.Mutex
	initialized bool
	closed      bool
}

// categorized is the optional store interface AddDevice consults to
// classify a device; every bundled controller implements it.
type categorized interface {
	Category() Category
}

// NewBridge builds a bridge over the given login. Nothing talks to the
// service until Initialize.
func NewBridge(cfg Config) *Bridge {
	log := cfg.Logger
	if log == nil {
		log = noopLogger{}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil && cfg.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	gw := gateway.NewClient(cfg.Username, cfg.Password, &gateway.Options{
		Endpoints:  cfg.Endpoints,
		HTTPClient: httpClient,
	})
	gw.SetLogger(log)

	b := &Bridge{
		gateway:  gw,
		stream:   event.NewStream(gw, &event.Options{PollInterval: cfg.PollInterval, Logger: log}),
		log:      log,
		devices:  controller.NewDeviceController(),
		lights:   controller.NewLightController(gw),
		fans:     controller.NewFanController(gw),
		locks:    controller.NewLockController(gw),
		switches: controller.NewSwitchController(gw),
		valves:   controller.NewValveController(gw),
	}
	b.stores = map[Category]Store{
		CategorySensorHost: b.devices,
		CategoryLight:      b.lights,
		CategoryFan:        b.fans,
		CategoryLock:       b.locks,
		CategorySwitch:     b.switches,
		CategoryValve:      b.valves,
	}
	for category, store := range b.stores {
		b.stream.RegisterStore(category, store)
	}
	b.devices.SetLogger(log)
	b.lights.SetLogger(log)
	b.fans.SetLogger(log)
	b.locks.SetLogger(log)
	b.switches.SetLogger(log)
	b.valves.SetLogger(log)
	return b
}

// Initialize looks up the account, loads the full device fleet into
// the stores and starts the poll engine. The engine runs until Close
// is called or ctx is cancelled, so pass a context that outlives the
// bridge. Calling Initialize on an initialized bridge is a no-op.
func (b *Bridge) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBridgeClosed
	}
	if b.initialized {
		return nil
	}

	accountID, err := b.gateway.AccountID(ctx)
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	b.log.Info("account resolved", "account_id", accountID)

	snaps, err := b.gateway.FetchSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("initial fetch: %w", err)
	}
	b.seedStores(snaps)
	b.log.Info("initial fleet loaded",
		"devices", len(snaps), "tracked", b.stream.Registry().Len())

	if err := b.stream.Start(ctx); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	b.initialized = true
	return nil
}

// seedStores loads an initial listing straight into the stores,
// bypassing the event queue. The first poll then sees every seeded
// device as already tracked, so startup produces no add events.
func (b *Bridge) seedStores(snaps []*Snapshot) {
	registry := b.stream.Registry()
	for _, snap := range snaps {
		category := device.CategoryOf(snap)
		store, ok := b.stores[category]
		if !ok {
			continue
		}
		if _, err := store.InitializeElem(snap); err != nil {
			b.log.Error("unable to initialize device, please open a bug report",
				"device_id", snap.ID, "error", err)
			continue
		}
		registry.Add(snap.ID, store, category)
	}
}

// Close stops the poll engine and closes every subscription. The
// bridge cannot be initialized again.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.stream.Stop()
	b.log.Info("connection to service closed")
}

// =============================================================================
// Accessors
// =============================================================================

// Devices returns the sensor-host store.
func (b *Bridge) Devices() *DeviceController { return b.devices }

// Lights returns the light store.
func (b *Bridge) Lights() *LightController { return b.lights }

// Fans returns the fan store.
func (b *Bridge) Fans() *FanController { return b.fans }

// Locks returns the lock store.
func (b *Bridge) Locks() *LockController { return b.locks }

// Switches returns the switch store.
func (b *Bridge) Switches() *SwitchController { return b.switches }

// Valves returns the valve store.
func (b *Bridge) Valves() *ValveController { return b.valves }

// Events returns the event stream for status inspection and filtered
// subscriptions.
func (b *Bridge) Events() *EventStream { return b.stream }

// AccountID returns the account behind the login. The first call may
// query the service; Initialize resolves and caches it.
func (b *Bridge) AccountID(ctx context.Context) (string, error) {
	return b.gateway.AccountID(ctx)
}

// Subscribe registers a callback for every event across all resources
// and returns its unsubscribe function. Use Events().Subscribe for
// type or category filters.
func (b *Bridge) Subscribe(callback Callback) func() {
	return b.stream.Subscribe(callback, nil, nil)
}

// TrackedDevices returns the ids of every device the bridge tracks.
func (b *Bridge) TrackedDevices() []string {
	return b.stream.TrackedDevices()
}

// SetPollInterval changes the interval between polls.
func (b *Bridge) SetPollInterval(interval time.Duration) {
	b.stream.SetPollInterval(interval)
}

// AddDevice tracks a device under its owning store without waiting
// for a poll to classify it. Stores that report their category get
// classified under it; anything else lands in CategoryUnknown.
func (b *Bridge) AddDevice(id string, store Store) {
	category := CategoryUnknown
	if c, ok := store.(categorized); ok {
		category = c.Category()
	}
	b.stream.Registry().Add(id, store, category)
}

// RemoveDevice stops tracking a device. The store keeps its model;
// if the service still lists the device, the next poll re-adds it.
func (b *Bridge) RemoveDevice(id string) {
	b.stream.Registry().Remove(id)
}

// =============================================================================
// Commands and lookup
// =============================================================================

// SendCommand pushes raw state values to a tracked device and folds
// the accepted values into its local model, emitting the resulting
// update so subscribers never wait for the next poll.
//
// Prefer the typed operations on the per-category stores; SendCommand
// is the escape hatch for states they do not model.
func (b *Bridge) SendCommand(ctx context.Context, deviceID string, values []State) ([]State, error) {
	if !b.stream.Registry().Has(deviceID) {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}

	accepted, err := b.gateway.PushState(ctx, deviceID, values)
	if err != nil {
		return nil, err
	}
	b.applyAccepted(deviceID, accepted)
	return accepted, nil
}

// PushState writes raw state values to the service without touching
// the local models. Components that fold accepted responses themselves
// use this; everything else wants SendCommand.
func (b *Bridge) PushState(ctx context.Context, deviceID string, values []State) ([]State, error) {
	return b.gateway.PushState(ctx, deviceID, values)
}

// applyAccepted folds service-accepted values through the device's
// store and emits the update when anything changed.
func (b *Bridge) applyAccepted(deviceID string, states []State) {
	if len(states) == 0 {
		return
	}
	registry := b.stream.Registry()
	store, ok := registry.Lookup(deviceID)
	if !ok {
		return
	}

	resource, changed, err := store.UpdateElem(&Snapshot{ID: deviceID, States: states})
	if err != nil {
		b.log.Debug("command response not applied", "device_id", deviceID, "error", err)
		return
	}
	if len(changed) == 0 {
		return
	}

	category, _ := registry.Category(deviceID)
	b.stream.Emit(Event{
		Type:     ResourceUpdated,
		DeviceID: deviceID,
		Category: category,
		Resource: resource,
	})
}

// Resource returns the model for a tracked device, dispatching on the
// category it was classified under.
func (b *Bridge) Resource(id string) (Resource, bool) {
	category, ok := b.stream.Registry().Category(id)
	if !ok {
		return nil, false
	}

	switch category {
	case CategorySensorHost:
		if d, err := b.devices.Get(id); err == nil {
			return d, true
		}
	case CategoryLight:
		if l, err := b.lights.Get(id); err == nil {
			return l, true
		}
	case CategoryFan:
		if f, err := b.fans.Get(id); err == nil {
			return f, true
		}
	case CategoryLock:
		if l, err := b.locks.Get(id); err == nil {
			return l, true
		}
	case CategorySwitch:
		if s, err := b.switches.Get(id); err == nil {
			return s, true
		}
	case CategoryValve:
		if v, err := b.valves.Get(id); err == nil {
			return v, true
		}
	}
	return nil, false
}

// Resources returns the models of one category, or of every category
// when category is empty.
func (b *Bridge) Resources(category Category) []Resource {
	var resources []Resource
	if category == "" || category == CategorySensorHost {
		for _, d := range b.devices.Items() {
			resources = append(resources, d)
		}
	}
	if category == "" || category == CategoryLight {
		for _, l := range b.lights.Items() {
			resources = append(resources, l)
		}
	}
	if category == "" || category == CategoryFan {
		for _, f := range b.fans.Items() {
			resources = append(resources, f)
		}
	}
	if category == "" || category == CategoryLock {
		for _, l := range b.locks.Items() {
			resources = append(resources, l)
		}
	}
	if category == "" || category == CategorySwitch {
		for _, s := range b.switches.Items() {
			resources = append(resources, s)
		}
	}
	if category == "" || category == CategoryValve {
		for _, v := range b.valves.Items() {
			resources = append(resources, v)
		}
	}
	return resources
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
