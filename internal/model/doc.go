// Package model defines the typed resources the bridge tracks: one
// struct per device category plus the shared metadata and sensor
// types. Models are plain data. Controllers build and mutate them;
// everything handed to subscribers or API clients is a deep copy.
//
// A feature field that is nil means the device does not support that
// capability. Multi-gang devices (switches, valves) key their features
// by function instance, with "" for the single-gang form.
package model
