package device

// applyQuirks corrects snapshots the service reports with wrong or
// missing metadata. The fleet predates consistent model reporting, so
// several device families are identified by their default image
// instead. Ordering matters: the dimmer reclassification must run
// before the per-class fixes so a reclassified dimmer picks up the
// light model fix.
func applyQuirks(snap *Snapshot) {
	// A switch that reports brightness is a dimmer, which behaves as
	// a light everywhere downstream.
	if snap.DeviceClass == "switch" {
		for _, state := range snap.States {
			if state.FunctionClass == "brightness" {
				snap.DeviceClass = "light"
				break
			}
		}
	}

	if snap.DeviceClass == "exhaust-fan" {
		if snap.DefaultImage == "fan-exhaust-icon" {
			snap.Model = "BF1112"
		}
	}

	switch snap.DeviceClass {
	case "fan", "ceiling-fan":
		switch {
		case snap.Model == "" && snap.DefaultImage == "ceiling-fan-snyder-park-icon":
			snap.Model = "Driskol"
		case snap.Model == "" && snap.DefaultImage == "ceiling-fan-vinings-icon":
			snap.Model = "Vinwood"
		case snap.Model == "TBD" && snap.DefaultImage == "ceiling-fan-chandra-icon":
			snap.Model = "Zandra"
		case snap.Model == "TBD" && snap.DefaultImage == "ceiling-fan-ac-cct-dardanus-icon":
			snap.Model = "Nevali"
		case snap.Model == "" && snap.DefaultImage == "ceiling-fan-slender-icon":
			snap.Model = "Tager"
		}
	case "light":
		switch snap.DefaultImage {
		case "a19-e26-color-cct-60w-smd-frosted-icon":
			snap.Model = "12A19060WRGBWH2"
		case "slide-dimmer-icon":
			snap.Model = "HPDA110NWBP"
		}
	case "switch":
		if snap.DefaultImage == "smart-switch-icon" && snap.Model == "TBD" {
			snap.Model = "HPSA11CWB"
		}
	case "glass-door":
		// Glass doors are power toggles with no door semantics of
		// their own.
		snap.DeviceClass = "switch"
		snap.ManufacturerName = "Feather River Doors"
	}
}
