package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
	"github.com/nerrad567/gray-logic-hubspace/internal/model"
)

// SwitchController holds and manages switch, outlet and transformer
// resources. Multi-gang units carry one power feature per function
// instance; the single-gang form uses the "" instance.
//
// All public methods are thread-safe; returned models are deep copies.
type SwitchController struct {
	mu      sync.RWMutex
	items   map[string]*model.Switch
	gateway statePusher
	log     Logger
	now     func() time.Time
}

// NewSwitchController creates an empty switch store writing through
// the given gateway.
func NewSwitchController(gw statePusher) *SwitchController {
	return &SwitchController{
		items:   make(map[string]*model.Switch),
		gateway: gw,
		log:     noopLogger{},
		now:     defaultClock,
	}
}

// SetLogger sets the logger for the controller.
func (c *SwitchController) SetLogger(log Logger) {
	c.log = log
}

// Get returns a copy of the switch with the id.
func (c *SwitchController) Get(id string) (*model.Switch, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return item.DeepCopy(), nil
}

// Items returns copies of every tracked switch.
func (c *SwitchController) Items() []*model.Switch {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]*model.Switch, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item.DeepCopy())
	}
	return items
}

// Has reports whether the id is tracked.
func (c *SwitchController) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[id]
	return ok
}

// Category returns the category this store owns.
func (c *SwitchController) Category() device.Category {
	return device.CategorySwitch
}

// InitializeElem builds the switch model from a snapshot.
func (c *SwitchController) InitializeElem(snap *device.Snapshot) (event.Resource, error) {
	c.log.Info("initializing switch", "device_id", snap.ID)

	sw := &model.Switch{
		ID:                snap.ID,
		On:                make(map[string]*feature.On),
		Instances:         model.InstancesFrom(snap.Functions),
		DeviceInformation: model.InformationFrom(snap),
		Type:              model.ResourceTypeFromValue(snap.DeviceClass),
	}

	for _, st := range snap.States {
		switch st.FunctionClass {
		case "power", "toggle":
			sw.On[st.FunctionInstance] = &feature.On{
				On:           stringValue(st.Value) == "on",
				FuncClass:    st.FunctionClass,
				FuncInstance: st.FunctionInstance,
			}
		case "available":
			sw.Available = boolValue(st.Value)
		}
	}

	c.mu.Lock()
	c.items[snap.ID] = sw
	c.mu.Unlock()
	return sw.DeepCopy(), nil
}

// UpdateElem folds a snapshot's states into the existing model and
// returns the names of the features that changed.
func (c *SwitchController) UpdateElem(snap *device.Snapshot) (event.Resource, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.items[snap.ID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, snap.ID)
	}

	var changed changeSet
	for _, st := range snap.States {
		switch st.FunctionClass {
		case "power", "toggle":
			on, ok := cur.On[st.FunctionInstance]
			if !ok {
				continue
			}
			newVal := stringValue(st.Value) == "on"
			if on.On != newVal {
				on.On = newVal
				changed.mark("on")
			}
		case "available":
			newVal := boolValue(st.Value)
			if cur.Available != newVal {
				cur.Available = newVal
				changed.mark("available")
			}
		}
	}

	return cur.DeepCopy(), changed.keys, nil
}

// Remove drops the switch with the id; absent ids are a no-op.
func (c *SwitchController) Remove(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// TurnOn turns on one gang of the switch. Single-gang devices use the
// "" instance.
func (c *SwitchController) TurnOn(ctx context.Context, id, instance string) error {
	return c.setState(ctx, id, instance, true)
}

// TurnOff turns off one gang of the switch.
func (c *SwitchController) TurnOff(ctx context.Context, id, instance string) error {
	return c.setState(ctx, id, instance, false)
}

func (c *SwitchController) setState(ctx context.Context, id, instance string, on bool) error {
	cur, err := c.Get(id)
	if err != nil {
		return err
	}
	gang, ok := cur.On[instance]
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrUnknownInstance, id, instance)
	}

	push := feature.On{On: on, FuncClass: gang.FuncClass, FuncInstance: gang.FuncInstance}
	values := []device.State{stateFrom(push.APIValue(), c.now().Unix())}

	resp, err := c.gateway.PushState(ctx, id, values)
	if err != nil {
		return err
	}
	if _, _, err := c.UpdateElem(&device.Snapshot{ID: id, States: resp}); err != nil {
		c.log.Debug("push response not applied", "device_id", id, "error", err)
	}
	return nil
}
