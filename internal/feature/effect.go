package feature

// Sequence instances used by the service's color-sequence function.
const (
	sequenceClass          = "color-sequence"
	sequenceInstancePreset = "preset"
	sequenceInstanceCustom = "custom"
)

// Effect holds the active light effect and the effects the device
// supports, grouped by sequence instance ("preset", "custom", ...).
type Effect struct {
	Effect  string                     `json:"effect"`
	Effects map[string]map[string]bool `json:"effects,omitempty"`
}

// IsPreset reports whether the named effect belongs to the preset group.
func (f Effect) IsPreset(name string) bool {
	return f.Effects[sequenceInstancePreset][name]
}

// APIValue renders the effect as the service's state values. Preset
// effects are a single entry on the preset instance; custom effects
// require the preset instance to be parked on "custom" with the real
// effect on the custom instance.
func (f Effect) APIValue() []map[string]any {
	if f.IsPreset(f.Effect) {
		return []map[string]any{
			{
				"functionClass":    sequenceClass,
				"functionInstance": sequenceInstancePreset,
				"value":            f.Effect,
			},
		}
	}
	return []map[string]any{
		{
			"functionClass":    sequenceClass,
			"functionInstance": sequenceInstancePreset,
			"value":            sequenceInstanceCustom,
		},
		{
			"functionClass":    sequenceClass,
			"functionInstance": sequenceInstanceCustom,
			"value":            f.Effect,
		},
	}
}
