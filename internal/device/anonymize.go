package device

import (
	"fmt"

	"github.com/google/uuid"
)

// anonymizeClasses lists function classes whose values identify the
// owner's network or hardware and must be replaced before sharing.
var anonymizeClasses = map[string]bool{
	"wifi-ssid":        true,
	"wifi-mac-address": true,
	"ble-mac-address":  true,
}

// Anonymizer rewrites snapshots so they can be shared in bug reports.
// Identities are replaced with random ids while the relationships
// between them survive: all snapshots sharing a device id keep sharing
// one, and parent children lists still point at the rewritten child
// ids. Not safe for concurrent use.
type Anonymizer struct {
	// newID can be replaced in tests for deterministic output.
	newID func() string

	deviceLinks map[string]string
	nameIndex   int
}

// NewAnonymizer returns an anonymizer with a fresh identity mapping.
// Use one anonymizer per dump so links stay consistent within it.
func NewAnonymizer() *Anonymizer {
	return &Anonymizer{
		newID:       uuid.NewString,
		deviceLinks: make(map[string]string),
	}
}

// Snapshots anonymizes every snapshot in one pass. The input is left
// untouched. With anonNames set, friendly names are replaced with
// numbered placeholders as well.
func (a *Anonymizer) Snapshots(snaps []*Snapshot, anonNames bool) []*Snapshot {
	childIDs := a.mapChildren(snaps)

	out := make([]*Snapshot, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, a.snapshot(snap, childIDs, anonNames))
	}
	return out
}

// mapChildren pre-assigns replacement ids for every child referenced
// by a parent, keyed by original id, so parents and children agree.
func (a *Anonymizer) mapChildren(snaps []*Snapshot) map[string]string {
	childIDs := make(map[string]string)
	for _, snap := range snaps {
		for _, childID := range snap.Children {
			if _, ok := childIDs[childID]; !ok {
				childIDs[childID] = a.newID()
			}
		}
	}
	return childIDs
}

func (a *Anonymizer) snapshot(snap *Snapshot, childIDs map[string]string, anonName bool) *Snapshot {
	out := snap.DeepCopy()

	if id, ok := childIDs[out.ID]; ok {
		out.ID = id
	} else {
		out.ID = a.newID()
	}
	if _, ok := a.deviceLinks[out.DeviceID]; !ok {
		a.deviceLinks[out.DeviceID] = a.newID()
	}
	out.DeviceID = a.deviceLinks[out.DeviceID]
	for i, childID := range out.Children {
		out.Children[i] = childIDs[childID]
	}

	if anonName {
		out.FriendlyName = fmt.Sprintf("friendly-device-%d", a.nameIndex)
		a.nameIndex++
	}

	for i := range out.States {
		out.States[i] = a.State(out.States[i])
	}
	return out
}

// State scrubs a single state value. Timestamps are zeroed,
// geo coordinates are pinned to the origin and network identifiers
// become random ids.
func (a *Anonymizer) State(st State) State {
	st.LastUpdateTime = 0
	switch {
	case st.FunctionClass == "geo-coordinates":
		st.Value = map[string]any{
			"geo-coordinates": map[string]any{"latitude": "0", "longitude": "0"},
		}
	case anonymizeClasses[st.FunctionClass]:
		st.Value = a.newID()
	}
	return st
}
