package mqtt

import "fmt"

// DefaultTopicPrefix roots the bridge's topic tree when the configuration
// does not set mqtt.topic_prefix.
const DefaultTopicPrefix = "hubspace"

// Topics provides builders for the bridge's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
// The tree is flat, rooted at a configurable prefix:
//
//	topics := mqtt.NewTopics("hubspace")
//	stateTopic := topics.DeviceState("8ea6c4d8")
//	// Returns: "hubspace/state/8ea6c4d8"
type Topics struct {
	// Prefix overrides DefaultTopicPrefix when non-empty.
	Prefix string
}

// NewTopics returns topic builders rooted at prefix. An empty prefix
// falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	return Topics{Prefix: prefix}
}

// root returns the effective topic prefix.
func (t Topics) root() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// =============================================================================
// Device Topics
// =============================================================================

// DeviceState returns the retained state topic for a device. The bridge
// republishes the full device model here on every add and update.
//
// Example: hubspace/state/8ea6c4d8
func (t Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/state/%s", t.root(), deviceID)
}

// DeviceCommand returns the inbound command topic for a device. External
// clients publish {functionClass, functionInstance, value} documents here.
//
// Example: hubspace/command/8ea6c4d8
func (t Topics) DeviceCommand(deviceID string) string {
	return fmt.Sprintf("%s/command/%s", t.root(), deviceID)
}

// =============================================================================
// Event Topics
// =============================================================================

// Event returns the topic for one kind of reconciliation event.
// Event types are "add", "update" and "delete".
//
// Example: hubspace/event/update
func (t Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", t.root(), eventType)
}

// =============================================================================
// Bridge Topics
// =============================================================================

// BridgeStatus returns the retained bridge availability topic. The broker
// publishes the Last Will here when the bridge dies without a graceful
// close, so subscribers always see the current availability.
//
// Example: hubspace/bridge/status
func (t Topics) BridgeStatus() string {
	return fmt.Sprintf("%s/bridge/status", t.root())
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllDeviceStates returns a pattern matching every retained device state.
//
// Pattern: hubspace/state/+
func (t Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/state/+", t.root())
}

// AllCommands returns a pattern matching inbound commands for any device.
//
// Pattern: hubspace/command/+
func (t Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+", t.root())
}

// AllEvents returns a pattern matching every event type.
//
// Pattern: hubspace/event/+
func (t Topics) AllEvents() string {
	return fmt.Sprintf("%s/event/+", t.root())
}

// AllTopics returns a pattern matching the bridge's entire topic tree.
// Use with caution - this receives ALL traffic.
//
// Pattern: hubspace/#
func (t Topics) AllTopics() string {
	return fmt.Sprintf("%s/#", t.root())
}
