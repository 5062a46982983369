package model

import (
	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
)

// Valve is a water valve or timer. Dual-spigot timers report one open
// feature per spigot, keyed by function instance.
type Valve struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`

	Open map[string]*feature.Open `json:"open,omitempty"`

	Instances         map[string]string `json:"instances,omitempty"`
	DeviceInformation DeviceInformation `json:"device_information"`
	Type              ResourceType      `json:"type"`
}

func (v *Valve) GetID() string { return v.ID }

func (v *Valve) GetCategory() device.Category { return device.CategoryValve }

// Instance returns the function instance learned for the class, or "".
func (v *Valve) Instance(functionClass string) string {
	return v.Instances[functionClass]
}

// DeepCopy creates an independent copy of the valve.
func (v *Valve) DeepCopy() *Valve {
	if v == nil {
		return nil
	}
	cpy := *v
	if v.Open != nil {
		cpy.Open = make(map[string]*feature.Open, len(v.Open))
		for inst, open := range v.Open {
			c := *open
			cpy.Open[inst] = &c
		}
	}
	cpy.Instances = copyInstances(v.Instances)
	return &cpy
}
