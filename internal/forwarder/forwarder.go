package forwarder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/mqtt"
)

// Forwarder operation constants.
const (
	// minTopicParts is the minimum number of segments in a device
	// command topic ({prefix}/command/{device_id}).
	minTopicParts = 3

	// commandTimeout bounds one inbound command push to the service.
	commandTimeout = 10 * time.Second
)

// Broker is the slice of the MQTT client the forwarder drives.
// *mqtt.Client satisfies it; tests substitute a fake.
type Broker interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// IsConnected reports whether the broker connection is up.
	IsConnected() bool
}

// EventBus is the slice of the event stream the forwarder rides:
// subscription for outbound republishing, emission for folding
// accepted command responses back to subscribers.
type EventBus interface {
	Subscribe(callback event.Callback, types []event.EventType, categories []device.Category) func()
	Emit(evt event.Event)
}

// StatePusher is the slice of the cloud gateway used for inbound
// commands.
type StatePusher interface {
	PushState(ctx context.Context, deviceID string, values []device.State) ([]device.State, error)
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options holds the dependencies for creating a Forwarder.
type Options struct {
	// Broker is the MQTT connection. Required.
	Broker Broker

	// Events is the engine's event stream. Required.
	Events EventBus

	// Registry resolves device ids to their owning stores so accepted
	// command responses update the local models immediately. Required.
	Registry *event.Registry

	// Pusher writes device state to the service. Required.
	Pusher StatePusher

	// Topics builds the bridge's topic names. The zero value uses the
	// default prefix.
	Topics mqtt.Topics

	// QoS applies to every publish and the command subscription.
	QoS byte

	// Logger is optional structured logging.
	Logger Logger
}

// Forwarder republishes engine events onto MQTT topics and feeds
// broker commands back into the cloud gateway.
//
// Thread Safety: all methods are safe for concurrent use.
type Forwarder struct {
	broker   Broker
	events   EventBus
	registry *event.Registry
	pusher   StatePusher
	topics   mqtt.Topics
	qos      byte
	log      Logger

	mu          sync.Mutex
	started     bool
	unsubscribe func()

	// ctx bounds in-flight command pushes; cancelled on Stop.
	ctx       context.Context
	ctxCancel context.CancelFunc
	stopOnce  sync.Once
}

// New creates a forwarder over its dependencies. Call Start to begin
// forwarding.
func New(opts Options) (*Forwarder, error) {
	if opts.Broker == nil {
		return nil, fmt.Errorf("broker is required")
	}
	if opts.Events == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Pusher == nil {
		return nil, fmt.Errorf("state pusher is required")
	}
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Forwarder{
		broker:    opts.Broker,
		events:    opts.Events,
		registry:  opts.Registry,
		pusher:    opts.Pusher,
		topics:    opts.Topics,
		qos:       opts.QoS,
		log:       log,
		ctx:       ctx,
		ctxCancel: cancel,
	}, nil
}

// Start subscribes to the command topic and attaches to the event
// stream. Devices tracked before Start have no pending add events;
// call Seed to publish their retained state documents.
func (f *Forwarder) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return fmt.Errorf("forwarder already started")
	}

	commandTopic := f.topics.AllCommands()
	if err := f.broker.Subscribe(commandTopic, f.qos, f.handleCommand); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}

	f.unsubscribe = f.events.Subscribe(f.handleEvent, nil, nil)
	f.started = true
	f.log.Info("forwarder started", "command_topic", commandTopic)
	return nil
}

// Seed publishes the retained state document for every given resource.
// The bridge populates its stores before the stream starts polling, so
// those devices never produce add events; seeding brings the retained
// topics level with the stores without replaying event envelopes.
func (f *Forwarder) Seed(resources []event.Resource) {
	for _, res := range resources {
		if res == nil {
			continue
		}
		f.publishState(event.Event{
			Type:     event.ResourceUpdated,
			DeviceID: res.GetID(),
			Category: res.GetCategory(),
			Resource: res,
		})
	}
	f.log.Info("seeded retained state", "devices", len(resources))
}

// Stop cancels in-flight command pushes and detaches from the event
// stream. The broker subscription stays with the client, which the
// daemon closes on shutdown.
func (f *Forwarder) Stop() {
	f.stopOnce.Do(func() {
		f.ctxCancel()

		f.mu.Lock()
		unsub := f.unsubscribe
		f.unsubscribe = nil
		f.mu.Unlock()

		if unsub != nil {
			unsub()
		}
		f.log.Info("forwarder stopped")
	})
}

// =============================================================================
// Outbound: engine events → MQTT
// =============================================================================

// handleEvent republishes one engine event. Resource events refresh
// the retained state document and emit an event envelope; connection
// events surface on the bridge status topic.
//
// Events arriving during a broker outage are dropped; retained state
// documents catch up on the device's next change.
func (f *Forwarder) handleEvent(evt event.Event) {
	if !f.broker.IsConnected() {
		f.log.Debug("broker disconnected, dropping event",
			"event_type", string(evt.Type), "device_id", evt.DeviceID)
		return
	}

	switch evt.Type {
	case event.ResourceAdded, event.ResourceUpdated:
		f.publishState(evt)
		f.publishEnvelope(evt)
	case event.ResourceDeleted:
		f.clearState(evt.DeviceID)
		f.publishEnvelope(evt)
	case event.Connected, event.Disconnected, event.Reconnected:
		f.publishUpstream(evt.Type)
	}
}

// publishState publishes the retained per-device state document.
func (f *Forwarder) publishState(evt event.Event) {
	if evt.Resource == nil {
		f.log.Debug("event carries no resource, skipping state publish",
			"event_type", string(evt.Type), "device_id", evt.DeviceID)
		return
	}

	payload, err := json.Marshal(NewStateMessage(evt))
	if err != nil {
		f.log.Error("failed to marshal state", "device_id", evt.DeviceID, "error", err)
		return
	}

	topic := f.topics.DeviceState(evt.DeviceID)
	if err := f.broker.Publish(topic, payload, f.qos, true); err != nil {
		f.log.Error("failed to publish state", "topic", topic, "error", err)
	}
}

// clearState removes the retained state document for a deleted device.
// An empty retained publish erases the topic on the broker.
func (f *Forwarder) clearState(deviceID string) {
	topic := f.topics.DeviceState(deviceID)
	if err := f.broker.Publish(topic, nil, f.qos, true); err != nil {
		f.log.Error("failed to clear state", "topic", topic, "error", err)
	}
}

// publishEnvelope publishes the per-event envelope.
func (f *Forwarder) publishEnvelope(evt event.Event) {
	payload, err := json.Marshal(NewEventMessage(evt))
	if err != nil {
		f.log.Error("failed to marshal event", "device_id", evt.DeviceID, "error", err)
		return
	}

	topic := f.topics.Event(string(evt.Type))
	if err := f.broker.Publish(topic, payload, f.qos, false); err != nil {
		f.log.Error("failed to publish event", "topic", topic, "error", err)
	}
}

// publishUpstream reports a cloud connection transition on the bridge
// status topic.
func (f *Forwarder) publishUpstream(t event.EventType) {
	payload, err := json.Marshal(NewStatusMessage(t))
	if err != nil {
		f.log.Error("failed to marshal status", "error", err)
		return
	}

	topic := f.topics.BridgeStatus()
	if err := f.broker.Publish(topic, payload, f.qos, false); err != nil {
		f.log.Error("failed to publish status", "topic", topic, "error", err)
	}
}

// =============================================================================
// Inbound: MQTT commands → cloud gateway
// =============================================================================

// handleCommand feeds one broker command into the cloud gateway and
// folds the accepted values back through the device's store.
func (f *Forwarder) handleCommand(topic string, payload []byte) error {
	deviceID, err := deviceIDFromTopic(topic)
	if err != nil {
		f.log.Warn("invalid command topic", "topic", topic)
		return err
	}

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		f.log.Warn("failed to parse command", "device_id", deviceID, "error", err)
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	if cmd.FunctionClass == "" {
		f.log.Warn("command missing functionClass", "device_id", deviceID)
		return fmt.Errorf("%w: missing functionClass", ErrInvalidCommand)
	}
	if !f.registry.Has(deviceID) {
		f.log.Warn("command for untracked device", "device_id", deviceID)
		return fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}

	f.log.Info("received command",
		"device_id", deviceID,
		"function_class", cmd.FunctionClass)

	ctx, cancel := context.WithTimeout(f.ctx, commandTimeout)
	defer cancel()

	values := []device.State{{
		FunctionClass:    cmd.FunctionClass,
		FunctionInstance: cmd.FunctionInstance,
		Value:            cmd.Value,
		LastUpdateTime:   time.Now().Unix(),
	}}
	resp, err := f.pusher.PushState(ctx, deviceID, values)
	if err != nil {
		f.log.Error("command push failed", "device_id", deviceID, "error", err)
		return err
	}

	f.applyResponse(deviceID, resp)
	return nil
}

// applyResponse folds the service's accepted values into the device's
// local model and emits the resulting update, so subscribers and the
// retained state topic do not wait for the next poll.
func (f *Forwarder) applyResponse(deviceID string, states []device.State) {
	if len(states) == 0 {
		return
	}
	store, ok := f.registry.Lookup(deviceID)
	if !ok {
		return
	}

	resource, changed, err := store.UpdateElem(&device.Snapshot{ID: deviceID, States: states})
	if err != nil {
		f.log.Debug("command response not applied", "device_id", deviceID, "error", err)
		return
	}
	if len(changed) == 0 {
		return
	}

	category, _ := f.registry.Category(deviceID)
	f.events.Emit(event.Event{
		Type:     event.ResourceUpdated,
		DeviceID: deviceID,
		Category: category,
		Resource: resource,
	})
}

// deviceIDFromTopic extracts the device id from a command topic of the
// form {prefix}/command/{device_id}. The prefix may itself contain
// slashes, so the id is the last segment.
func deviceIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < minTopicParts {
		return "", fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}
	if parts[len(parts)-2] != "command" {
		return "", fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}
	id := parts[len(parts)-1]
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}
	return id, nil
}
