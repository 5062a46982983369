// Package device turns the service's raw metadevice payloads into
// canonical snapshots.
//
// # Architecture
//
//	┌─────────────────┐     ┌──────────────┐     ┌────────────────┐
//	│ Service payload │ ──▶ │ DecodeSnapshots │ ──▶ │ Snapshot       │
//	│ (metadevice JSON)│     │ + quirk fixups │     │ (id, category, │
//	└─────────────────┘     └──────────────┘     │ functions,     │
//	                                              │ states)        │
//	                                              └────────────────┘
//
// A Snapshot is one device's full state at a point in time: a stable
// identity, its function descriptors, and the ordered state values the
// service reported. Snapshots are what the reconciliation engine diffs
// and what the category controllers decode into models.
//
// Quirk fixups correct known bad metadata before anything downstream
// sees it: dimmer switches misreported as switches, fan models inferred
// from their default image, glass doors treated as switches.
//
// The package also carries the anonymizer used to produce shareable
// device dumps with identifying values replaced.
package device
