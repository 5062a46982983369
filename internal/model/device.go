package model

import "github.com/nerrad567/gray-logic-hubspace/internal/device"

// Device is a sensor-host: the physical unit behind one or more
// functional metadevices. It carries the diagnostics the service
// attaches to the parent rather than the children, such as wifi
// signal, battery level and alert conditions.
type Device struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`

	Sensors       map[string]Sensor       `json:"sensors,omitempty"`
	BinarySensors map[string]BinarySensor `json:"binary_sensors,omitempty"`

	Instances         map[string]string `json:"instances,omitempty"`
	DeviceInformation DeviceInformation `json:"device_information"`
	Type              ResourceType      `json:"type"`
}

func (d *Device) GetID() string { return d.ID }

func (d *Device) GetCategory() device.Category { return device.CategorySensorHost }

// Instance returns the function instance learned for the class, or "".
func (d *Device) Instance(functionClass string) string {
	return d.Instances[functionClass]
}

// DeepCopy creates an independent copy of the device.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}
	cpy := *d
	if d.Sensors != nil {
		cpy.Sensors = make(map[string]Sensor, len(d.Sensors))
		for k, v := range d.Sensors {
			cpy.Sensors[k] = v
		}
	}
	if d.BinarySensors != nil {
		cpy.BinarySensors = make(map[string]BinarySensor, len(d.BinarySensors))
		for k, v := range d.BinarySensors {
			cpy.BinarySensors[k] = v
		}
	}
	cpy.Instances = copyInstances(d.Instances)
	return &cpy
}
