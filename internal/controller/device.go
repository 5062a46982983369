package controller

import (
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/model"
)

// sensorClasses are the function classes surfaced as numeric sensors,
// with the unit applied when the wire value does not carry one.
var sensorClasses = map[string]string{
	"battery-level":         "%",
	"output-voltage-switch": "V",
	"watts":                 "W",
	"wifi-rssi":             "dB",
}

// binarySensorClasses are the function classes surfaced as alert
// conditions, keyed "class|instance" on the model.
var binarySensorClasses = map[string]bool{
	"error": true,
}

// DeviceController holds and manages sensor-host resources: the
// physical units behind the functional metadevices. It is read-only;
// diagnostics cannot be pushed back to the service.
//
// All public methods are thread-safe; returned models are deep copies.
type DeviceController struct {
	mu    sync.RWMutex
	items map[string]*model.Device
	log   Logger
}

// NewDeviceController creates an empty sensor-host store.
func NewDeviceController() *DeviceController {
	return &DeviceController{
		items: make(map[string]*model.Device),
		log:   noopLogger{},
	}
}

// SetLogger sets the logger for the controller.
func (c *DeviceController) SetLogger(log Logger) {
	c.log = log
}

// Get returns a copy of the sensor-host with the id.
func (c *DeviceController) Get(id string) (*model.Device, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return item.DeepCopy(), nil
}

// Items returns copies of every tracked sensor-host.
func (c *DeviceController) Items() []*model.Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]*model.Device, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item.DeepCopy())
	}
	return items
}

// Has reports whether the id is tracked.
func (c *DeviceController) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[id]
	return ok
}

// Category returns the category this store owns.
func (c *DeviceController) Category() device.Category {
	return device.CategorySensorHost
}

// InitializeElem builds the sensor-host model from a snapshot.
func (c *DeviceController) InitializeElem(snap *device.Snapshot) (event.Resource, error) {
	c.log.Info("initializing sensor-host", "device_id", snap.ID)

	dev := &model.Device{
		ID:                snap.ID,
		Sensors:           make(map[string]model.Sensor),
		BinarySensors:     make(map[string]model.BinarySensor),
		Instances:         model.InstancesFrom(snap.Functions),
		DeviceInformation: model.InformationFrom(snap),
		Type:              model.ResourceDevice,
	}

	for _, st := range snap.States {
		switch {
		case sensorClasses[st.FunctionClass] != "":
			value, unit := splitSensorValue(st.Value)
			if unit == "" {
				unit = sensorClasses[st.FunctionClass]
			}
			dev.Sensors[st.FunctionClass] = model.Sensor{
				ID:       st.FunctionClass,
				Owner:    snap.DeviceID,
				Instance: st.FunctionInstance,
				Unit:     unit,
				Value:    value,
			}
		case binarySensorClasses[st.FunctionClass]:
			key := st.FunctionClass + "|" + st.FunctionInstance
			dev.BinarySensors[key] = model.BinarySensor{
				ID:       key,
				Owner:    snap.DeviceID,
				Instance: st.FunctionInstance,
				Raw:      st.Value,
			}
		case st.FunctionClass == "wifi-mac-address":
			dev.DeviceInformation.WifiMAC = stringValue(st.Value)
		case st.FunctionClass == "ble-mac-address":
			dev.DeviceInformation.BleMAC = stringValue(st.Value)
		case st.FunctionClass == "available":
			dev.Available = boolValue(st.Value)
		}
	}

	c.mu.Lock()
	c.items[snap.ID] = dev
	c.mu.Unlock()
	return dev.DeepCopy(), nil
}

// UpdateElem folds a snapshot's states into the existing model and
// returns the names of the readings that changed, prefixed "sensor-"
// or "binary-" by kind.
func (c *DeviceController) UpdateElem(snap *device.Snapshot) (event.Resource, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.items[snap.ID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, snap.ID)
	}

	var changed changeSet
	for _, st := range snap.States {
		switch {
		case sensorClasses[st.FunctionClass] != "":
			sensor, ok := cur.Sensors[st.FunctionClass]
			if !ok {
				continue
			}
			value, _ := splitSensorValue(st.Value)
			if sensor.Value != value {
				sensor.Value = value
				cur.Sensors[st.FunctionClass] = sensor
				changed.mark("sensor-" + st.FunctionClass)
			}
		case binarySensorClasses[st.FunctionClass]:
			key := st.FunctionClass + "|" + st.FunctionInstance
			binary, ok := cur.BinarySensors[key]
			if !ok {
				continue
			}
			if binary.Raw != st.Value {
				binary.Raw = st.Value
				cur.BinarySensors[key] = binary
				changed.mark("binary-" + key)
			}
		case st.FunctionClass == "available":
			newVal := boolValue(st.Value)
			if cur.Available != newVal {
				cur.Available = newVal
				changed.mark("available")
			}
		}
	}

	return cur.DeepCopy(), changed.keys, nil
}

// Remove drops the sensor-host with the id; absent ids are a no-op.
func (c *DeviceController) Remove(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// splitSensorValue divides a reading into value and unit. String
// readings with a numeric prefix split at the unit boundary, keeping
// the number as a string ("4000K" reads as "4000" plus "K"); anything
// else passes through without a unit.
func splitSensorValue(v any) (any, string) {
	s, ok := v.(string)
	if !ok {
		return v, ""
	}
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := i
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == i || digits == len(s) {
		return v, ""
	}
	return s[:digits], s[digits:]
}
