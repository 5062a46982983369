package model

import (
	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
)

// Lock is a deadbolt or door lock.
type Lock struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`

	Position *feature.CurrentPosition `json:"position,omitempty"`

	Instances         map[string]string `json:"instances,omitempty"`
	DeviceInformation DeviceInformation `json:"device_information"`
	Type              ResourceType      `json:"type"`
}

func (l *Lock) GetID() string { return l.ID }

func (l *Lock) GetCategory() device.Category { return device.CategoryLock }

// Instance returns the function instance learned for the class, or "".
func (l *Lock) Instance(functionClass string) string {
	return l.Instances[functionClass]
}

// DeepCopy creates an independent copy of the lock.
func (l *Lock) DeepCopy() *Lock {
	if l == nil {
		return nil
	}
	cpy := *l
	if l.Position != nil {
		pos := *l.Position
		cpy.Position = &pos
	}
	cpy.Instances = copyInstances(l.Instances)
	return &cpy
}
