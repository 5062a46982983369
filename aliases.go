package hubspace

// Type aliases re-exporting the internal packages, so consumers work
// entirely from this package and never import internal/... directly.

import (
	"github.com/nerrad567/gray-logic-hubspace/internal/controller"
	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
	"github.com/nerrad567/gray-logic-hubspace/internal/gateway"
	"github.com/nerrad567/gray-logic-hubspace/internal/model"
)

// Device-level types.
type (
	// Category classifies a device onto its owning store.
	Category = device.Category

	// Snapshot is one device as the service lists it, states included.
	Snapshot = device.Snapshot

	// State is a single functionClass/value pair on the service wire.
	State = device.State

	// Endpoints holds the service URLs; the zero value selects
	// production.
	Endpoints = gateway.Endpoints
)

// Category constants.
const (
	CategoryLight      = device.CategoryLight
	CategoryFan        = device.CategoryFan
	CategoryLock       = device.CategoryLock
	CategorySwitch     = device.CategorySwitch
	CategoryValve      = device.CategoryValve
	CategorySensorHost = device.CategorySensorHost
	CategoryUnknown    = device.CategoryUnknown
)

// Resource models.
type (
	// Device is a sensor-host: the physical unit behind one or more
	// child resources.
	Device = model.Device

	// Light is a dimmable, color-capable light.
	Light = model.Light

	// Fan is a ceiling or wall fan.
	Fan = model.Fan

	// Lock is a deadbolt or latch.
	Lock = model.Lock

	// Switch is an on/off outlet, relay or transformer channel.
	Switch = model.Switch

	// Valve is a water shutoff or timer channel.
	Valve = model.Valve

	// Sensor is one measurement reported by a sensor-host.
	Sensor = model.Sensor

	// BinarySensor is an alert condition reported by a sensor-host.
	BinarySensor = model.BinarySensor

	// DeviceInformation is the descriptive metadata on every model.
	DeviceInformation = model.DeviceInformation

	// ResourceType is the service-side type of a tracked resource.
	ResourceType = model.ResourceType
)

// ResourceType constants.
const (
	ResourceDevice               = model.ResourceDevice
	ResourceHome                 = model.ResourceHome
	ResourceRoom                 = model.ResourceRoom
	ResourceFan                  = model.ResourceFan
	ResourceLandscapeTransformer = model.ResourceLandscapeTransformer
	ResourceLight                = model.ResourceLight
	ResourceLock                 = model.ResourceLock
	ResourcePowerOutlet          = model.ResourcePowerOutlet
	ResourceSwitch               = model.ResourceSwitch
	ResourceWaterTimer           = model.ResourceWaterTimer
	ResourceUnknown              = model.ResourceUnknown
)

// Feature types.
type (
	// On is the power feature.
	On = feature.On

	// Open is the open/close feature on valves.
	Open = feature.Open

	// Dimming is the brightness feature.
	Dimming = feature.Dimming

	// ColorTemperature is the white color temperature feature.
	ColorTemperature = feature.ColorTemperature

	// Color is the RGB color feature.
	Color = feature.Color

	// ColorMode reports whether a light renders white or color.
	ColorMode = feature.ColorMode

	// Effect is the light effect feature.
	Effect = feature.Effect

	// Direction is the fan rotation feature.
	Direction = feature.Direction

	// Preset is a named fan preset such as comfort-breeze.
	Preset = feature.Preset

	// Speed is the fan speed feature, expressed as a percentage.
	Speed = feature.Speed

	// CurrentPosition is the lock travel feature.
	CurrentPosition = feature.CurrentPosition

	// Position describes where a lock sits in its travel.
	Position = feature.Position
)

// Position constants.
const (
	PositionLocked    = feature.PositionLocked
	PositionLocking   = feature.PositionLocking
	PositionUnlocked  = feature.PositionUnlocked
	PositionUnlocking = feature.PositionUnlocking
	PositionUnknown   = feature.PositionUnknown
)

// Event stream types.
type (
	// Event is one message from the stream.
	Event = event.Event

	// EventType identifies what an event describes.
	EventType = event.EventType

	// EventStream owns the poll/diff cycle behind the bridge.
	EventStream = event.Stream

	// PollStats describes one completed poll cycle.
	PollStats = event.PollStats

	// Status is the stream's view of the service connection.
	Status = event.Status

	// Callback receives events a subscription matched.
	Callback = event.Callback

	// Resource is the minimal view of a tracked model carried in
	// events.
	Resource = event.Resource

	// Store is what the stream needs from a category store.
	Store = event.Store

	// Logger is the structured logging interface every layer accepts.
	Logger = event.Logger
)

// EventType constants.
const (
	ResourceAdded   = event.ResourceAdded
	ResourceUpdated = event.ResourceUpdated
	ResourceDeleted = event.ResourceDeleted

	Connected    = event.Connected
	Disconnected = event.Disconnected
	Reconnected  = event.Reconnected
)

// Status constants.
const (
	StatusDisconnected = event.StatusDisconnected
	StatusConnecting   = event.StatusConnecting
	StatusConnected    = event.StatusConnected
)

// DefaultPollInterval is how often the bridge polls the service for a
// fresh device listing unless configured otherwise.
const DefaultPollInterval = event.DefaultPollInterval

// Category stores.
type (
	// DeviceController holds and manages sensor-host resources.
	DeviceController = controller.DeviceController

	// LightController holds and manages light resources.
	LightController = controller.LightController

	// FanController holds and manages fan resources.
	FanController = controller.FanController

	// LockController holds and manages lock resources.
	LockController = controller.LockController

	// SwitchController holds and manages switch resources.
	SwitchController = controller.SwitchController

	// ValveController holds and manages valve resources.
	ValveController = controller.ValveController
)

// Sentinel errors from the internal packages, re-exported for
// errors.Is checks.
var (
	// ErrInvalidAuth marks rejected credentials or a rejected token.
	ErrInvalidAuth = gateway.ErrInvalidAuth

	// ErrTransient marks a network fault worth retrying; the stream
	// treats it as an outage, not a failure.
	ErrTransient = gateway.ErrTransient

	// ErrInvalidResponse marks a service answer the client cannot use.
	ErrInvalidResponse = gateway.ErrInvalidResponse

	// ErrExceededRetries marks a request abandoned after repeated
	// rate limiting; matches ErrTransient.
	ErrExceededRetries = gateway.ErrExceededRetries

	// ErrNotFound marks a device the service does not know.
	ErrNotFound = gateway.ErrNotFound

	// ErrDeviceNotFound marks a device the bridge does not track.
	ErrDeviceNotFound = controller.ErrDeviceNotFound

	// ErrUnknownInstance marks a command naming a function instance
	// the device does not have.
	ErrUnknownInstance = controller.ErrUnknownInstance

	// ErrMissingFunction marks a device state without a matching
	// function definition.
	ErrMissingFunction = controller.ErrMissingFunction

	// ErrAlreadyRunning is returned when a running stream is started
	// again.
	ErrAlreadyRunning = event.ErrAlreadyRunning

	// ErrStopped is returned when a stopped stream is started again.
	ErrStopped = event.ErrStopped
)
