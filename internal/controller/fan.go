package controller

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
	"github.com/nerrad567/gray-logic-hubspace/internal/model"
)

// knownPresets are the toggle instances that expose a fan preset.
// Only one has ever been observed in the wild.
var knownPresets = map[string]bool{"comfort-breeze": true}

// FanController holds and manages fan resources.
//
// All public methods are thread-safe; returned models are deep copies.
type FanController struct {
	mu      sync.RWMutex
	items   map[string]*model.Fan
	gateway statePusher
	log     Logger
	now     func() time.Time
}

// NewFanController creates an empty fan store writing through the
// given gateway.
func NewFanController(gw statePusher) *FanController {
	return &FanController{
		items:   make(map[string]*model.Fan),
		gateway: gw,
		log:     noopLogger{},
		now:     defaultClock,
	}
}

// SetLogger sets the logger for the controller.
func (c *FanController) SetLogger(log Logger) {
	c.log = log
}

// Get returns a copy of the fan with the id.
func (c *FanController) Get(id string) (*model.Fan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return item.DeepCopy(), nil
}

// Items returns copies of every tracked fan.
func (c *FanController) Items() []*model.Fan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]*model.Fan, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item.DeepCopy())
	}
	return items
}

// Has reports whether the id is tracked.
func (c *FanController) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[id]
	return ok
}

// Category returns the category this store owns.
func (c *FanController) Category() device.Category {
	return device.CategoryFan
}

// InitializeElem builds the fan model from a snapshot.
func (c *FanController) InitializeElem(snap *device.Snapshot) (event.Resource, error) {
	c.log.Info("initializing fan", "device_id", snap.ID)

	fan := &model.Fan{
		ID:                snap.ID,
		Instances:         model.InstancesFrom(snap.Functions),
		DeviceInformation: model.InformationFrom(snap),
		Type:              model.ResourceTypeFromValue(snap.DeviceClass),
	}

	for _, st := range snap.States {
		switch {
		case st.FunctionClass == "power":
			fan.On = &feature.On{On: stringValue(st.Value) == "on"}
		case st.FunctionClass == "fan-speed":
			speed, err := speedFrom(snap, st)
			if err != nil {
				return nil, fmt.Errorf("fan %s: %w", snap.ID, err)
			}
			fan.Speed = speed
		case st.FunctionClass == "fan-reverse":
			fan.Direction = &feature.Direction{Forward: stringValue(st.Value) == "forward"}
		case st.FunctionClass == "toggle" && knownPresets[st.FunctionInstance]:
			fan.Preset = &feature.Preset{
				Enabled:      stringValue(st.Value) == "enabled",
				FuncClass:    st.FunctionClass,
				FuncInstance: st.FunctionInstance,
			}
		case st.FunctionClass == "available":
			fan.Available = boolValue(st.Value)
		}
	}

	c.mu.Lock()
	c.items[snap.ID] = fan
	c.mu.Unlock()
	return fan.DeepCopy(), nil
}

// UpdateElem folds a snapshot's states into the existing model and
// returns the names of the features that changed.
func (c *FanController) UpdateElem(snap *device.Snapshot) (event.Resource, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.items[snap.ID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, snap.ID)
	}

	var changed changeSet
	for _, st := range snap.States {
		switch {
		case st.FunctionClass == "power":
			newVal := stringValue(st.Value) == "on"
			if cur.On != nil && cur.On.On != newVal {
				cur.On.On = newVal
				changed.mark("on")
			}
		case st.FunctionClass == "fan-speed":
			if cur.Speed == nil {
				continue
			}
			newVal, err := feature.OrderedListItemToPercentage(cur.Speed.Speeds, stringValue(st.Value))
			if err != nil {
				return nil, nil, fmt.Errorf("fan %s: %w", snap.ID, err)
			}
			if cur.Speed.Speed != newVal {
				cur.Speed.Speed = newVal
				changed.mark("speed")
			}
		case st.FunctionClass == "fan-reverse":
			newVal := stringValue(st.Value) == "forward"
			if cur.Direction != nil && cur.Direction.Forward != newVal {
				cur.Direction.Forward = newVal
				changed.mark("direction")
			}
		case st.FunctionClass == "toggle" && knownPresets[st.FunctionInstance]:
			newVal := stringValue(st.Value) == "enabled"
			if cur.Preset != nil && cur.Preset.Enabled != newVal {
				cur.Preset.Enabled = newVal
				changed.mark("preset")
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

// Remove drops the fan with the id; absent ids are a no-op.
func (c *FanController) Remove(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// TurnOn turns on the fan.
func (c *FanController) TurnOn(ctx context.Context, id string) error {
	on := true
	return c.setState(ctx, id, fanState{on: &on})
}

// TurnOff turns off the fan.
func (c *FanController) TurnOff(ctx context.Context, id string) error {
	on := false
	return c.setState(ctx, id, fanState{on: &on})
}

// SetSpeed sets the fan speed as a percentage. Zero turns the fan
// off instead.
func (c *FanController) SetSpeed(ctx context.Context, id string, speed int) error {
	on := true
	return c.setState(ctx, id, fanState{on: &on, speed: &speed})
}

// SetDirection sets the rotation direction. The device ignores a
// direction sent while it is off, and pairing it with power-on in the
// same push does not work either, so the caller has to run the fan
// first.
func (c *FanController) SetDirection(ctx context.Context, id string, forward bool) error {
	cur, err := c.Get(id)
	if err != nil {
		return err
	}
	if !cur.IsOn() {
		c.log.Info("fan is not running so direction will not be set", "device_id", id)
	}
	return c.setState(ctx, id, fanState{forward: &forward})
}

// SetPreset toggles the fan preset. The fan is turned on if currently
// off.
func (c *FanController) SetPreset(ctx context.Context, id string, enabled bool) error {
	on := true
	return c.setState(ctx, id, fanState{on: &on, preset: &enabled})
}

// fanState gathers the optional fields one push can carry.
type fanState struct {
	on      *bool
	speed   *int
	forward *bool
	preset  *bool
}

func (c *FanController) setState(ctx context.Context, id string, req fanState) error {
	cur, err := c.Get(id)
	if err != nil {
		return err
	}

	ts := c.now().Unix()
	var values []device.State
	on := req.on
	if req.speed != nil && cur.Speed != nil && *req.speed == 0 {
		// Speed zero means stop.
		off := false
		on = &off
		req.speed = nil
	}
	if on != nil {
		values = append(values, stateFrom(feature.On{On: *on}.APIValue(), ts))
	}
	if req.speed != nil && cur.Speed != nil {
		name, err := feature.Speed{Speed: *req.speed, Speeds: cur.Speed.Speeds}.APIValue()
		if err != nil {
			return fmt.Errorf("fan %s: %w", id, err)
		}
		values = append(values, device.State{
			FunctionClass:    "fan-speed",
			FunctionInstance: cur.Instance("fan-speed"),
			Value:            name,
			LastUpdateTime:   ts,
		})
	}
	if req.preset != nil && cur.Preset != nil {
		preset := feature.Preset{
			Enabled:      *req.preset,
			FuncClass:    cur.Preset.FuncClass,
			FuncInstance: cur.Preset.FuncInstance,
		}
		values = append(values, stateFrom(preset.APIValue(), ts))
	}
	if req.forward != nil && cur.Direction != nil {
		values = append(values, device.State{
			FunctionClass:    "fan-reverse",
			FunctionInstance: cur.Instance("fan-reverse"),
			Value:            feature.Direction{Forward: *req.forward}.APIValue(),
			LastUpdateTime:   ts,
		})
	}
	if len(values) == 0 {
		return nil
	}

	resp, err := c.gateway.PushState(ctx, id, values)
	if err != nil {
		return err
	}
	if _, _, err := c.UpdateElem(&device.Snapshot{ID: id, States: resp}); err != nil {
		c.log.Debug("push response not applied", "device_id", id, "error", err)
	}
	return nil
}

// speedFrom decodes a fan-speed state against its function
// descriptor. Off entries ("-000") never count as a speed.
func speedFrom(snap *device.Snapshot, st device.State) (*feature.Speed, error) {
	fn := snap.FunctionFor(st.FunctionClass, st.FunctionInstance)
	values := fn.Values()
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: fan-speed", ErrMissingFunction)
	}

	var speeds []string
	seen := make(map[string]bool)
	for _, value := range values {
		name, ok := value["name"].(string)
		if !ok || seen[name] || strings.HasSuffix(name, "-000") {
			continue
		}
		seen[name] = true
		speeds = append(speeds, name)
	}
	sort.Slice(speeds, func(i, j int) bool { return speedLess(speeds[i], speeds[j]) })

	percentage, err := feature.OrderedListItemToPercentage(speeds, stringValue(st.Value))
	if err != nil {
		return nil, fmt.Errorf("fan-speed: %w", err)
	}
	return &feature.Speed{Speed: percentage, Speeds: speeds}, nil
}

// speedLess orders speed names with digit runs compared numerically,
// so "speed-4-25" sorts before "speed-4-100" whether or not the wire
// zero-pads the step suffix.
func speedLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		ac, arest, anum := speedChunk(a)
		bc, brest, bnum := speedChunk(b)
		if anum && bnum {
			av, _ := strconv.Atoi(ac)
			bv, _ := strconv.Atoi(bc)
			if av != bv {
				return av < bv
			}
		} else if ac != bc {
			return ac < bc
		}
		a, b = arest, brest
	}
	return len(a) < len(b)
}

// speedChunk splits off the leading run of digits or non-digits.
func speedChunk(s string) (chunk, rest string, numeric bool) {
	numeric = s[0] >= '0' && s[0] <= '9'
	i := 1
	for i < len(s) && (s[i] >= '0' && s[i] <= '9') == numeric {
		i++
	}
	return s[:i], s[i:], numeric
}
