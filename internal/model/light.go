package model

import (
	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
)

// Light is a dimmable, optionally color-capable light.
type Light struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`

	On               *feature.On               `json:"on,omitempty"`
	Dimming          *feature.Dimming          `json:"dimming,omitempty"`
	ColorMode        *feature.ColorMode        `json:"color_mode,omitempty"`
	ColorTemperature *feature.ColorTemperature `json:"color_temperature,omitempty"`
	Color            *feature.Color            `json:"color,omitempty"`
	Effect           *feature.Effect           `json:"effect,omitempty"`

	Instances         map[string]string `json:"instances,omitempty"`
	DeviceInformation DeviceInformation `json:"device_information"`
	Type              ResourceType      `json:"type"`
}

func (l *Light) GetID() string { return l.ID }

func (l *Light) GetCategory() device.Category { return device.CategoryLight }

// Instance returns the function instance learned for the class, or "".
func (l *Light) Instance(functionClass string) string {
	return l.Instances[functionClass]
}

// SupportsColor reports whether the light can render RGB color.
func (l *Light) SupportsColor() bool { return l.Color != nil }

// SupportsColorTemperature reports whether white temperature is tunable.
func (l *Light) SupportsColorTemperature() bool { return l.ColorTemperature != nil }

// SupportsDimming reports whether brightness is adjustable.
func (l *Light) SupportsDimming() bool { return l.Dimming != nil }

// DeepCopy creates an independent copy of the light.
func (l *Light) DeepCopy() *Light {
	if l == nil {
		return nil
	}
	cpy := *l
	if l.On != nil {
		on := *l.On
		cpy.On = &on
	}
	if l.Dimming != nil {
		dim := *l.Dimming
		cpy.Dimming = &dim
	}
	if l.ColorMode != nil {
		mode := *l.ColorMode
		cpy.ColorMode = &mode
	}
	if l.ColorTemperature != nil {
		temp := *l.ColorTemperature
		cpy.ColorTemperature = &temp
	}
	if l.Color != nil {
		color := *l.Color
		cpy.Color = &color
	}
	if l.Effect != nil {
		effect := *l.Effect
		cpy.Effect = &effect
	}
	cpy.Instances = copyInstances(l.Instances)
	return &cpy
}
