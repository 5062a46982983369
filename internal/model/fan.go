package model

import (
	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
)

// Fan is a ceiling or exhaust fan.
type Fan struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`

	On        *feature.On        `json:"on,omitempty"`
	Speed     *feature.Speed     `json:"speed,omitempty"`
	Direction *feature.Direction `json:"direction,omitempty"`
	Preset    *feature.Preset    `json:"preset,omitempty"`

	Instances         map[string]string `json:"instances,omitempty"`
	DeviceInformation DeviceInformation `json:"device_information"`
	Type              ResourceType      `json:"type"`
}

func (f *Fan) GetID() string { return f.ID }

func (f *Fan) GetCategory() device.Category { return device.CategoryFan }

// Instance returns the function instance learned for the class, or "".
func (f *Fan) Instance(functionClass string) string {
	return f.Instances[functionClass]
}

// IsOn reports whether the fan is currently running.
func (f *Fan) IsOn() bool { return f.On != nil && f.On.On }

// SupportsSpeed reports whether the fan has discrete speed settings.
func (f *Fan) SupportsSpeed() bool { return f.Speed != nil }

// SupportsDirection reports whether rotation can be reversed.
func (f *Fan) SupportsDirection() bool { return f.Direction != nil }

// SupportsPreset reports whether a comfort preset is available.
func (f *Fan) SupportsPreset() bool { return f.Preset != nil }

// DeepCopy creates an independent copy of the fan.
func (f *Fan) DeepCopy() *Fan {
	if f == nil {
		return nil
	}
	cpy := *f
	if f.On != nil {
		on := *f.On
		cpy.On = &on
	}
	if f.Speed != nil {
		speed := *f.Speed
		cpy.Speed = &speed
	}
	if f.Direction != nil {
		dir := *f.Direction
		cpy.Direction = &dir
	}
	if f.Preset != nil {
		preset := *f.Preset
		cpy.Preset = &preset
	}
	cpy.Instances = copyInstances(f.Instances)
	return &cpy
}
