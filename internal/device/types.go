package device

// TypeMetadevice is the typeId of payload entries that describe devices.
// Other entries (homes, rooms) are metadata and never become snapshots.
const TypeMetadevice = "metadevice.device"

// State is one function's reported value at a point in time.
// FunctionClass plus FunctionInstance is unique within one snapshot.
type State struct {
	FunctionClass    string `json:"functionClass"`
	FunctionInstance string `json:"functionInstance,omitempty"`
	Value            any    `json:"value"`
	LastUpdateTime   int64  `json:"lastUpdateTime,omitempty"`
}

// Function is one capability descriptor from the service. The service
// varies the shape per function class, so it stays a raw map with typed
// accessors for the common keys.
type Function map[string]any

// Class returns the function's functionClass, or "".
func (f Function) Class() string {
	s, _ := f["functionClass"].(string)
	return s
}

// Instance returns the function's functionInstance, or "".
func (f Function) Instance() string {
	s, _ := f["functionInstance"].(string)
	return s
}

// Values returns the function's values list, or nil.
func (f Function) Values() []map[string]any {
	raw, ok := f["values"].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Type returns the function's type field ("numeric", "category", ...), or "".
func (f Function) Type() string {
	s, _ := f["type"].(string)
	return s
}

// Snapshot is one device's full fetched state at a point in time.
type Snapshot struct {
	// ID is the stable identity used when interacting with the service,
	// unique across the fleet.
	ID string `json:"id"`

	// DeviceID links all metadevices belonging to one physical unit.
	DeviceID string `json:"device_id"`

	Model            string `json:"model"`
	DeviceClass      string `json:"device_class"`
	DefaultName      string `json:"default_name"`
	DefaultImage     string `json:"default_image"`
	FriendlyName     string `json:"friendly_name"`
	ManufacturerName string `json:"manufacturerName,omitempty"`

	Functions []Function `json:"functions"`
	States    []State    `json:"states"`

	// Children lists child metadevice ids for composite/hub devices.
	Children []string `json:"children"`
}

// FunctionFor returns the snapshot's function descriptor matching the
// class and instance, or nil when the device does not declare one.
func (s *Snapshot) FunctionFor(class, instance string) Function {
	for _, fn := range s.Functions {
		if fn.Class() != class {
			continue
		}
		if fn.Instance() != instance {
			continue
		}
		return fn
	}
	return nil
}

// DeepCopy creates an independent copy of the snapshot. States and
// children are cloned; function descriptors are shared because nothing
// downstream mutates them.
func (s *Snapshot) DeepCopy() *Snapshot {
	if s == nil {
		return nil
	}
	cpy := *s
	if s.States != nil {
		cpy.States = make([]State, len(s.States))
		copy(cpy.States, s.States)
	}
	if s.Children != nil {
		cpy.Children = make([]string, len(s.Children))
		copy(cpy.Children, s.Children)
	}
	if s.Functions != nil {
		cpy.Functions = make([]Function, len(s.Functions))
		copy(cpy.Functions, s.Functions)
	}
	return &cpy
}

// Category identifies which store owns a device.
type Category string

// Category constants.
const (
	CategoryLight      Category = "light"
	CategoryFan        Category = "fan"
	CategoryLock       Category = "lock"
	CategorySwitch     Category = "switch"
	CategoryValve      Category = "valve"
	CategorySensorHost Category = "sensor-host"
	CategoryUnknown    Category = "unknown"
)

// AllCategories returns all valid category values.
func AllCategories() []Category {
	return []Category{
		CategoryLight, CategoryFan, CategoryLock, CategorySwitch,
		CategoryValve, CategorySensorHost, CategoryUnknown,
	}
}

// classCategories maps service device classes onto owning categories.
// Resolved once here rather than per-event; unknown classes stay
// untracked.
var classCategories = map[string]Category{
	"light":                 CategoryLight,
	"fan":                   CategoryFan,
	"ceiling-fan":           CategoryFan,
	"exhaust-fan":           CategoryFan,
	"lock":                  CategoryLock,
	"switch":                CategorySwitch,
	"power-outlet":          CategorySwitch,
	"landscape-transformer": CategorySwitch,
	"valve":                 CategoryValve,
	"water-timer":           CategoryValve,
}

// CategoryOf classifies a snapshot. Composite devices (those carrying
// children) are the physical units that host sensors and diagnostics,
// regardless of their declared class.
func CategoryOf(s *Snapshot) Category {
	if len(s.Children) > 0 {
		return CategorySensorHost
	}
	if cat, ok := classCategories[s.DeviceClass]; ok {
		return cat
	}
	return CategoryUnknown
}
