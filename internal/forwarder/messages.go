package forwarder

import (
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/event"
)

// MQTT message types exchanged between the bridge and local consumers.

// CommandMessage is the inbound payload on the per-device command
// topic. Field names follow the service's own state vocabulary, so a
// consumer can replay a value it saw in a state document.
type CommandMessage struct {
	// FunctionClass selects the feature to write (e.g. "power",
	// "brightness", "color-temperature").
	FunctionClass string `json:"functionClass"`

	// FunctionInstance narrows multi-instance features; empty for
	// single-instance devices.
	FunctionInstance string `json:"functionInstance,omitempty"`

	// Value is the raw wire value for the function.
	Value any `json:"value"`
}

// StateMessage is the retained per-device document on the state topic.
// QoS: configured, Retained: yes.
type StateMessage struct {
	// DeviceID is the functional device identifier.
	DeviceID string `json:"device_id"`

	// Category is the device category ("light", "fan", ...).
	Category string `json:"category,omitempty"`

	// Timestamp is when the document was published (UTC).
	Timestamp time.Time `json:"timestamp"`

	// State is the full device model.
	State any `json:"state"`
}

// EventMessage is the envelope published per engine event.
// QoS: configured, Retained: no.
type EventMessage struct {
	// Type is the event kind: "add", "update" or "delete".
	Type string `json:"type"`

	// DeviceID is the functional device identifier.
	DeviceID string `json:"device_id,omitempty"`

	// Category is the device category.
	Category string `json:"category,omitempty"`

	// Timestamp is when the envelope was published (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Resource carries the device model on add and update; absent on
	// delete.
	Resource any `json:"resource,omitempty"`
}

// StatusMessage reports a cloud connection transition on the bridge
// status topic. The retained online/offline availability document is
// published by the MQTT client itself; transitions are live only.
type StatusMessage struct {
	// Status is the bridge process state; always "online" here, the
	// broker's will message covers the offline case.
	Status string `json:"status"`

	// Upstream is the cloud connection state: "connected",
	// "disconnected" or "reconnected".
	Upstream string `json:"upstream"`

	// Timestamp is when the transition happened (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// NewStateMessage builds the retained state document for a resource
// event.
func NewStateMessage(evt event.Event) StateMessage {
	return StateMessage{
		DeviceID:  evt.DeviceID,
		Category:  string(evt.Category),
		Timestamp: time.Now().UTC(),
		State:     evt.Resource,
	}
}

// NewEventMessage builds the envelope for an engine event.
func NewEventMessage(evt event.Event) EventMessage {
	return EventMessage{
		Type:      string(evt.Type),
		DeviceID:  evt.DeviceID,
		Category:  string(evt.Category),
		Timestamp: time.Now().UTC(),
		Resource:  evt.Resource,
	}
}

// NewStatusMessage builds the status document for a connection
// transition.
func NewStatusMessage(t event.EventType) StatusMessage {
	return StatusMessage{
		Status:    "online",
		Upstream:  string(t),
		Timestamp: time.Now().UTC(),
	}
}
