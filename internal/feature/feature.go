package feature

import "strconv"

// Default function classes used when a feature does not carry an explicit
// one. These match the service's state payloads.
const (
	defaultOnClass   = "power"
	defaultOpenClass = "toggle"
)

// On reports whether a resource is powered on.
type On struct {
	On bool `json:"on"`

	// FuncClass and FuncInstance identify the state entry this feature
	// was decoded from. Empty FuncClass means the default "power" class.
	FuncClass    string `json:"function_class,omitempty"`
	FuncInstance string `json:"function_instance,omitempty"`
}

// APIValue renders the feature as the service's state value.
func (f On) APIValue() map[string]any {
	cls := f.FuncClass
	if cls == "" {
		cls = defaultOnClass
	}
	out := map[string]any{
		"value":         onOff(f.On),
		"functionClass": cls,
	}
	if f.FuncInstance != "" {
		out["functionInstance"] = f.FuncInstance
	}
	return out
}

// Open reports whether a valve or outlet circuit is open.
type Open struct {
	Open bool `json:"open"`

	FuncClass    string `json:"function_class,omitempty"`
	FuncInstance string `json:"function_instance,omitempty"`
}

// APIValue renders the feature as the service's state value.
func (f Open) APIValue() map[string]any {
	cls := f.FuncClass
	if cls == "" {
		cls = defaultOpenClass
	}
	out := map[string]any{
		"value":         onOff(f.Open),
		"functionClass": cls,
	}
	if f.FuncInstance != "" {
		out["functionInstance"] = f.FuncInstance
	}
	return out
}

// Dimming holds a brightness percentage plus the discrete levels the
// device reports as supported.
type Dimming struct {
	Brightness int   `json:"brightness"`
	Supported  []int `json:"supported,omitempty"`
}

// APIValue renders the feature as the service's state value.
func (f Dimming) APIValue() int {
	return f.Brightness
}

// ColorTemperature holds a white color temperature in Kelvin. Some devices
// report temperatures as suffixed strings ("3000K"), others as bare
// numbers; Prefix records which form the device expects back.
type ColorTemperature struct {
	Temperature int    `json:"temperature"`
	Supported   []int  `json:"supported,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
}

// APIValue renders the feature as the service's state value, restoring
// the suffix form when the device uses one.
func (f ColorTemperature) APIValue() any {
	if f.Prefix != "" {
		return strconv.Itoa(f.Temperature) + f.Prefix
	}
	return f.Temperature
}

// Color holds an RGB color.
type Color struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// APIValue renders the feature as the service's state value.
func (f Color) APIValue() map[string]any {
	return map[string]any{
		"value": map[string]any{
			"color-rgb": map[string]any{
				"r": f.Red,
				"g": f.Green,
				"b": f.Blue,
			},
		},
	}
}

// ColorMode records which color subsystem is active (white, color,
// sequence).
type ColorMode struct {
	Mode string `json:"mode"`
}

// APIValue renders the feature as the service's state value.
func (f ColorMode) APIValue() string {
	return f.Mode
}

// Mode is a generic selectable mode with its allowed set.
type Mode struct {
	Mode  string          `json:"mode"`
	Modes map[string]bool `json:"modes,omitempty"`
}

// APIValue renders the feature as the service's state value.
func (f Mode) APIValue() string {
	return f.Mode
}

// Direction reports fan rotation.
type Direction struct {
	Forward bool `json:"forward"`
}

// APIValue renders the feature as the service's state value.
func (f Direction) APIValue() string {
	if f.Forward {
		return "forward"
	}
	return "reverse"
}

// Preset toggles a named device preset (for fans, typically a breeze
// mode). The function class and instance come from the device so they are
// always carried explicitly.
type Preset struct {
	Enabled      bool   `json:"enabled"`
	FuncClass    string `json:"function_class"`
	FuncInstance string `json:"function_instance"`
}

// APIValue renders the feature as the service's state value.
func (f Preset) APIValue() map[string]any {
	value := "disabled"
	if f.Enabled {
		value = "enabled"
	}
	return map[string]any{
		"value":            value,
		"functionClass":    f.FuncClass,
		"functionInstance": f.FuncInstance,
	}
}

// Position describes where a lock currently sits in its travel.
type Position string

// Position constants.
const (
	PositionLocked    Position = "locked"
	PositionLocking   Position = "locking"
	PositionUnlocked  Position = "unlocked"
	PositionUnlocking Position = "unlocking"
	PositionUnknown   Position = "unknown"
)

// AllPositions returns all valid position values.
func AllPositions() []Position {
	return []Position{
		PositionLocked, PositionLocking,
		PositionUnlocked, PositionUnlocking,
		PositionUnknown,
	}
}

// PositionFromValue maps a wire value onto a Position. Unrecognized values
// become PositionUnknown rather than an error so a firmware surprise never
// breaks decoding.
func PositionFromValue(value string) Position {
	switch p := Position(value); p {
	case PositionLocked, PositionLocking, PositionUnlocked, PositionUnlocking:
		return p
	default:
		return PositionUnknown
	}
}

// CurrentPosition holds a lock's position feature.
type CurrentPosition struct {
	Position Position `json:"position"`
}

// APIValue renders the feature as the service's state value.
func (f CurrentPosition) APIValue() string {
	return string(f.Position)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
