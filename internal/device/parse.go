package device

import (
	"encoding/json"
	"fmt"
	"io"
)

// rawEntry mirrors one element of the service's metadevice listing.
// Homes, rooms and devices share the shape; typeId tells them apart.
type rawEntry struct {
	ID           string         `json:"id"`
	DeviceID     string         `json:"deviceId"`
	TypeID       string         `json:"typeId"`
	FriendlyName string         `json:"friendlyName"`
	Children     []string       `json:"children"`
	Description  rawDescription `json:"description"`
	State        rawState       `json:"state"`
}

type rawDescription struct {
	Device       rawDeviceInfo `json:"device"`
	DefaultImage string        `json:"defaultImage"`
	Functions    []Function    `json:"functions"`
}

type rawDeviceInfo struct {
	Model            string `json:"model"`
	DeviceClass      string `json:"deviceClass"`
	DefaultName      string `json:"defaultName"`
	ManufacturerName string `json:"manufacturerName"`
}

type rawState struct {
	Values []State `json:"values"`
}

// DecodeSnapshots reads the service's full metadevice listing and
// returns a snapshot per device entry, quirk fixups applied. Entries
// whose typeId is not a device (homes, rooms) are skipped.
func DecodeSnapshots(r io.Reader) ([]*Snapshot, error) {
	var entries []rawEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	snaps := make([]*Snapshot, 0, len(entries))
	for _, entry := range entries {
		if entry.TypeID != TypeMetadevice {
			continue
		}
		snaps = append(snaps, entry.toSnapshot())
	}
	return snaps, nil
}

func (e rawEntry) toSnapshot() *Snapshot {
	snap := &Snapshot{
		ID:               e.ID,
		DeviceID:         e.DeviceID,
		Model:            e.Description.Device.Model,
		DeviceClass:      e.Description.Device.DeviceClass,
		DefaultName:      e.Description.Device.DefaultName,
		DefaultImage:     e.Description.DefaultImage,
		FriendlyName:     e.FriendlyName,
		ManufacturerName: e.Description.Device.ManufacturerName,
		Functions:        e.Description.Functions,
		States:           e.State.Values,
		Children:         e.Children,
	}
	applyQuirks(snap)
	return snap
}
