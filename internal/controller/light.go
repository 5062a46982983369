package controller

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
	"github.com/nerrad567/gray-logic-hubspace/internal/model"
)

// LightController holds and manages light resources.
//
// All public methods are thread-safe; returned models are deep copies.
type LightController struct {
	mu      sync.RWMutex
	items   map[string]*model.Light
	gateway statePusher
	log     Logger
	now     func() time.Time
}

// NewLightController creates an empty light store writing through the
// given gateway.
func NewLightController(gw statePusher) *LightController {
	return &LightController{
		items:   make(map[string]*model.Light),
		gateway: gw,
		log:     noopLogger{},
		now:     defaultClock,
	}
}

// SetLogger sets the logger for the controller.
func (c *LightController) SetLogger(log Logger) {
	c.log = log
}

// Get returns a copy of the light with the id.
func (c *LightController) Get(id string) (*model.Light, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return item.DeepCopy(), nil
}

// Items returns copies of every tracked light.
func (c *LightController) Items() []*model.Light {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]*model.Light, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item.DeepCopy())
	}
	return items
}

// Has reports whether the id is tracked.
func (c *LightController) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[id]
	return ok
}

// Category returns the category this store owns.
func (c *LightController) Category() device.Category {
	return device.CategoryLight
}

// InitializeElem builds the light model from a snapshot.
func (c *LightController) InitializeElem(snap *device.Snapshot) (event.Resource, error) {
	c.log.Info("initializing light", "device_id", snap.ID)

	light := &model.Light{
		ID:                snap.ID,
		Instances:         model.InstancesFrom(snap.Functions),
		DeviceInformation: model.InformationFrom(snap),
		Type:              model.ResourceTypeFromValue(snap.DeviceClass),
	}

	for _, st := range snap.States {
		switch st.FunctionClass {
		case "power":
			light.On = &feature.On{
				On:           stringValue(st.Value) == "on",
				FuncClass:    st.FunctionClass,
				FuncInstance: st.FunctionInstance,
			}
		case "color-temperature":
			temp, err := colorTemperatureFrom(snap, st)
			if err != nil {
				return nil, fmt.Errorf("light %s: %w", snap.ID, err)
			}
			light.ColorTemperature = temp
		case "brightness":
			fn := snap.FunctionFor(st.FunctionClass, st.FunctionInstance)
			values := fn.Values()
			if len(values) == 0 {
				return nil, fmt.Errorf("light %s: %w: brightness", snap.ID, ErrMissingFunction)
			}
			supported, err := feature.ProcessRange(values[0])
			if err != nil {
				return nil, fmt.Errorf("light %s: brightness: %w", snap.ID, err)
			}
			brightness, _ := intValue(st.Value)
			light.Dimming = &feature.Dimming{Brightness: brightness, Supported: supported}
		case "color-sequence":
			light.Effect = &feature.Effect{
				Effect:  stringValue(st.Value),
				Effects: effectsFrom(snap.Functions),
			}
		case "color-rgb":
			light.Color = colorFrom(st.Value)
		case "color-mode":
			light.ColorMode = &feature.ColorMode{Mode: stringValue(st.Value)}
		case "available":
			light.Available = boolValue(st.Value)
		}
	}

	c.mu.Lock()
	c.items[snap.ID] = light
	c.mu.Unlock()
	return light.DeepCopy(), nil
}

// UpdateElem folds a snapshot's states into the existing model and
// returns the names of the features that changed.
func (c *LightController) UpdateElem(snap *device.Snapshot) (event.Resource, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.items[snap.ID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, snap.ID)
	}

	var changed changeSet
	seqStates := make(map[string]device.State)
	for _, st := range snap.States {
		switch st.FunctionClass {
		case "power":
			newVal := stringValue(st.Value) == "on"
			if cur.On != nil && cur.On.On != newVal {
				cur.On.On = newVal
				changed.mark("on")
			}
		case "color-temperature":
			newVal, ok := kelvinValue(st.Value)
			if ok && cur.ColorTemperature != nil && cur.ColorTemperature.Temperature != newVal {
				cur.ColorTemperature.Temperature = newVal
				changed.mark("color_temperature")
			}
		case "brightness":
			newVal, ok := intValue(st.Value)
			if ok && cur.Dimming != nil && cur.Dimming.Brightness != newVal {
				cur.Dimming.Brightness = newVal
				changed.mark("dimming")
			}
		case "color-sequence":
			seqStates[st.FunctionInstance] = st
		case "color-rgb":
			newVal := colorFrom(st.Value)
			if cur.Color != nil && *cur.Color != *newVal {
				*cur.Color = *newVal
				changed.mark("color")
			}
		case "color-mode":
			newVal := stringValue(st.Value)
			if cur.ColorMode != nil && cur.ColorMode.Mode != newVal {
				cur.ColorMode.Mode = newVal
				changed.mark("color_mode")
			}
		case "available":
			newVal := boolValue(st.Value)
			if cur.Available != newVal {
				cur.Available = newVal
				changed.mark("available")
			}
		}
	}

	// Several states hold the effect; which one is current always
	// hangs off the preset instance.
	if cur.Effect != nil {
		if preset, ok := seqStates["preset"]; ok {
			newVal := stringValue(preset.Value)
			if newVal != "" && !cur.Effect.IsPreset(newVal) {
				custom, ok := seqStates[newVal]
				if !ok {
					newVal = ""
				} else {
					newVal = stringValue(custom.Value)
				}
			}
			if newVal != "" && cur.Effect.Effect != newVal {
				cur.Effect.Effect = newVal
				changed.mark("effect")
			}
		}
	}

	return cur.DeepCopy(), changed.keys, nil
}

// Remove drops the light with the id; absent ids are a no-op.
func (c *LightController) Remove(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// TurnOn turns on the light.
func (c *LightController) TurnOn(ctx context.Context, id string) error {
	on := true
	return c.setState(ctx, id, lightState{on: &on})
}

// TurnOff turns off the light.
func (c *LightController) TurnOff(ctx context.Context, id string) error {
	on := false
	return c.setState(ctx, id, lightState{on: &on})
}

// SetColorTemperature sets white color temperature, snapping to the
// nearest supported value. The light is turned on if currently off.
func (c *LightController) SetColorTemperature(ctx context.Context, id string, temperature int) error {
	on := true
	return c.setState(ctx, id, lightState{
		on:          &on,
		temperature: &temperature,
		colorMode:   "white",
	})
}

// SetBrightness sets brightness. The light is turned on if currently
// off.
func (c *LightController) SetBrightness(ctx context.Context, id string, brightness int) error {
	on := true
	return c.setState(ctx, id, lightState{on: &on, brightness: &brightness})
}

// SetRGB sets an RGB color. The light is turned on if currently off.
func (c *LightController) SetRGB(ctx context.Context, id string, red, green, blue int) error {
	on := true
	return c.setState(ctx, id, lightState{
		on:        &on,
		color:     &feature.Color{Red: red, Green: green, Blue: blue},
		colorMode: "color",
	})
}

// SetEffect activates a light effect. The light is turned on if
// currently off.
func (c *LightController) SetEffect(ctx context.Context, id string, effect string) error {
	on := true
	return c.setState(ctx, id, lightState{
		on:        &on,
		effect:    &effect,
		colorMode: "sequence",
	})
}

// lightState gathers the optional fields one push can carry.
type lightState struct {
	on          *bool
	temperature *int
	brightness  *int
	color       *feature.Color
	colorMode   string
	effect      *string
}

func (c *LightController) setState(ctx context.Context, id string, req lightState) error {
	cur, err := c.Get(id)
	if err != nil {
		return err
	}

	ts := c.now().Unix()
	var values []device.State
	if req.on != nil {
		on := feature.On{On: *req.on}
		if cur.On != nil {
			on.FuncClass = cur.On.FuncClass
			on.FuncInstance = cur.On.FuncInstance
		}
		values = append(values, stateFrom(on.APIValue(), ts))
	}
	if req.temperature != nil && cur.ColorTemperature != nil {
		temp := feature.ColorTemperature{
			Temperature: closestValue(cur.ColorTemperature.Supported, *req.temperature),
			Supported:   cur.ColorTemperature.Supported,
			Prefix:      cur.ColorTemperature.Prefix,
		}
		values = append(values, device.State{
			FunctionClass:    "color-temperature",
			FunctionInstance: cur.Instance("color-temperature"),
			Value:            temp.APIValue(),
			LastUpdateTime:   ts,
		})
	}
	if req.brightness != nil && cur.Dimming != nil {
		values = append(values, device.State{
			FunctionClass:    "brightness",
			FunctionInstance: cur.Instance("brightness"),
			Value:            feature.Dimming{Brightness: *req.brightness}.APIValue(),
			LastUpdateTime:   ts,
		})
	}
	if req.color != nil && cur.Color != nil {
		values = append(values, device.State{
			FunctionClass:    "color-rgb",
			FunctionInstance: cur.Instance("color-rgb"),
			Value:            req.color.APIValue()["value"],
			LastUpdateTime:   ts,
		})
	}
	if req.colorMode != "" && cur.ColorMode != nil {
		values = append(values, device.State{
			FunctionClass:    "color-mode",
			FunctionInstance: cur.Instance("color-mode"),
			Value:            req.colorMode,
			LastUpdateTime:   ts,
		})
	}
	if req.effect != nil && cur.Effect != nil {
		effect := feature.Effect{Effect: *req.effect, Effects: cur.Effect.Effects}
		for _, value := range effect.APIValue() {
			values = append(values, stateFrom(value, ts))
		}
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

// colorTemperatureFrom decodes a color-temperature state against its
// function descriptor. Devices either enumerate named temperatures
// ("2700K") or declare a range; names imply the suffixed wire form
// unless the function is explicitly numeric.
func colorTemperatureFrom(snap *device.Snapshot, st device.State) (*feature.ColorTemperature, error) {
	fn := snap.FunctionFor(st.FunctionClass, st.FunctionInstance)
	values := fn.Values()
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: color-temperature", ErrMissingFunction)
	}

	var supported []int
	var err error
	if len(values) > 1 {
		supported = colorTempValues(values)
	} else {
		supported, err = feature.ProcessRange(values[0])
		if err != nil {
			return nil, fmt.Errorf("color-temperature: %w", err)
		}
	}

	prefix := "K"
	if fn.Type() == "numeric" {
		prefix = ""
	}
	current, _ := kelvinValue(st.Value)
	return &feature.ColorTemperature{
		Temperature: current,
		Supported:   supported,
		Prefix:      prefix,
	}, nil
}

// colorTempValues extracts the named temperatures from a function's
// value list.
func colorTempValues(values []map[string]any) []int {
	var temps []int
	for _, value := range values {
		switch name := value["name"].(type) {
		case string:
			if t, ok := intValue(strings.TrimSuffix(name, "K")); ok {
				temps = append(temps, t)
			}
		case float64:
			temps = append(temps, int(name))
		}
	}
	sort.Ints(temps)
	return temps
}

// effectsFrom gathers the supported effect names per color-sequence
// instance. "custom" marks the handoff to the custom instance, not an
// effect of its own.
func effectsFrom(functions []device.Function) map[string]map[string]bool {
	effects := make(map[string]map[string]bool)
	for _, fn := range functions {
		if fn.Class() != "color-sequence" {
			continue
		}
		names := make(map[string]bool)
		for _, value := range fn.Values() {
			if name, ok := value["name"].(string); ok {
				names[name] = true
			}
		}
		effects[fn.Instance()] = names
	}
	delete(effects["preset"], "custom")
	return effects
}

// colorFrom reads an RGB color state value.
func colorFrom(v any) *feature.Color {
	color := &feature.Color{}
	outer, ok := v.(map[string]any)
	if !ok {
		return color
	}
	rgb, ok := outer["color-rgb"].(map[string]any)
	if !ok {
		return color
	}
	color.Red, _ = intValue(rgb["r"])
	color.Green, _ = intValue(rgb["g"])
	color.Blue, _ = intValue(rgb["b"])
	return color
}
