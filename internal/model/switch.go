package model

import (
	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
)

// Switch is a wall switch, outlet or transformer. Multi-gang units
// report one power feature per gang, keyed by function instance; the
// single-gang form uses the "" key.
type Switch struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`

	On map[string]*feature.On `json:"on,omitempty"`

	Instances         map[string]string `json:"instances,omitempty"`
	DeviceInformation DeviceInformation `json:"device_information"`
	Type              ResourceType      `json:"type"`
}

func (s *Switch) GetID() string { return s.ID }

func (s *Switch) GetCategory() device.Category { return device.CategorySwitch }

// Instance returns the function instance learned for the class, or "".
func (s *Switch) Instance(functionClass string) string {
	return s.Instances[functionClass]
}

// DeepCopy creates an independent copy of the switch.
func (s *Switch) DeepCopy() *Switch {
	if s == nil {
		return nil
	}
	cpy := *s
	if s.On != nil {
		cpy.On = make(map[string]*feature.On, len(s.On))
		for inst, on := range s.On {
			c := *on
			cpy.On[inst] = &c
		}
	}
	cpy.Instances = copyInstances(s.Instances)
	return &cpy
}
