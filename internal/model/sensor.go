package model

// alertingValue is the wire value a binary sensor reports when its
// condition is active.
const alertingValue = "alerting"

// Sensor is one measurement reported by a sensor-host device, such as
// wifi signal strength or battery level.
type Sensor struct {
	// ID is the function class, unique per owner.
	ID string `json:"id"`

	// Owner is the physical device id the reading belongs to.
	Owner string `json:"owner"`

	Instance string `json:"instance,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Value    any    `json:"value"`
}

// BinarySensor is an alert condition reported by a sensor-host device,
// keyed "class|instance" so one device can raise several.
type BinarySensor struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	Instance string `json:"instance,omitempty"`

	// Raw is the wire value; anything but "alerting" reads as inactive.
	Raw any `json:"raw"`
}

// Value reports whether the alert condition is active.
func (b BinarySensor) Value() bool {
	return b.Raw == alertingValue
}
