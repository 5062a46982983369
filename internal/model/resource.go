package model

import "github.com/nerrad567/gray-logic-hubspace/internal/device"

// ResourceType is the service-side type of a tracked resource.
type ResourceType string

// ResourceType constants.
const (
	ResourceDevice               ResourceType = "metadevice.device"
	ResourceHome                 ResourceType = "metadata.home"
	ResourceRoom                 ResourceType = "metadata.room"
	ResourceFan                  ResourceType = "fan"
	ResourceLandscapeTransformer ResourceType = "landscape-transformer"
	ResourceLight                ResourceType = "light"
	ResourceLock                 ResourceType = "lock"
	ResourcePowerOutlet          ResourceType = "power-outlet"
	ResourceSwitch               ResourceType = "switch"
	ResourceWaterTimer           ResourceType = "water-timer"
	ResourceUnknown              ResourceType = "unknown"
)

// ResourceTypeFromValue maps a service value onto a ResourceType,
// falling back to ResourceUnknown for values this build predates.
func ResourceTypeFromValue(value string) ResourceType {
	switch rt := ResourceType(value); rt {
	case ResourceDevice, ResourceHome, ResourceRoom, ResourceFan,
		ResourceLandscapeTransformer, ResourceLight, ResourceLock,
		ResourcePowerOutlet, ResourceSwitch, ResourceWaterTimer:
		return rt
	default:
		return ResourceUnknown
	}
}

// DeviceInformation carries the descriptive metadata shared by every
// model. WifiMAC and BleMAC are only populated on sensor-host devices,
// which report them as states.
type DeviceInformation struct {
	DeviceClass  string `json:"device_class,omitempty"`
	DefaultImage string `json:"default_image,omitempty"`
	DefaultName  string `json:"default_name,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Name         string `json:"name,omitempty"`
	ParentID     string `json:"parent_id,omitempty"`
	WifiMAC      string `json:"wifi_mac,omitempty"`
	BleMAC       string `json:"ble_mac,omitempty"`
}

// InformationFrom builds DeviceInformation from a snapshot's metadata.
func InformationFrom(snap *device.Snapshot) DeviceInformation {
	return DeviceInformation{
		DeviceClass:  snap.DeviceClass,
		DefaultImage: snap.DefaultImage,
		DefaultName:  snap.DefaultName,
		Manufacturer: snap.ManufacturerName,
		Model:        snap.Model,
		Name:         snap.FriendlyName,
		ParentID:     snap.DeviceID,
	}
}

// InstancesFrom learns the functionClass to functionInstance mapping
// from a snapshot's function descriptors. Classes without an instance
// are omitted; a class declared twice keeps the last instance seen.
func InstancesFrom(functions []device.Function) map[string]string {
	instances := make(map[string]string)
	for _, fn := range functions {
		if inst := fn.Instance(); inst != "" {
			instances[fn.Class()] = inst
		}
	}
	return instances
}

func copyInstances(instances map[string]string) map[string]string {
	if instances == nil {
		return nil
	}
	out := make(map[string]string, len(instances))
	for k, v := range instances {
		out[k] = v
	}
	return out
}
