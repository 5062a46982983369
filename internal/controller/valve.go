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

// ValveController holds and manages water valve and timer resources.
// Dual-spigot timers carry one open feature per function instance;
// the single form uses the "" instance.
//
// All public methods are thread-safe; returned models are deep copies.
type ValveController struct {
	mu      sync.RWMutex
	items   map[string]*model.Valve
	gateway statePusher
	log     Logger
	now     func() time.Time
}

// NewValveController creates an empty valve store writing through the
// given gateway.
func NewValveController(gw statePusher) *ValveController {
	return &ValveController{
		items:   make(map[string]*model.Valve),
		gateway: gw,
		log:     noopLogger{},
		now:     defaultClock,
	}
}

// SetLogger sets the logger for the controller.
func (c *ValveController) SetLogger(log Logger) {
	c.log = log
}

// Get returns a copy of the valve with the id.
func (c *ValveController) Get(id string) (*model.Valve, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return item.DeepCopy(), nil
}

// Items returns copies of every tracked valve.
func (c *ValveController) Items() []*model.Valve {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]*model.Valve, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item.DeepCopy())
	}
	return items
}

// Has reports whether the id is tracked.
func (c *ValveController) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[id]
	return ok
}

// Category returns the category this store owns.
func (c *ValveController) Category() device.Category {
	return device.CategoryValve
}

// InitializeElem builds the valve model from a snapshot.
func (c *ValveController) InitializeElem(snap *device.Snapshot) (event.Resource, error) {
	c.log.Info("initializing valve", "device_id", snap.ID)

	valve := &model.Valve{
		ID:                snap.ID,
		Open:              make(map[string]*feature.Open),
		Instances:         model.InstancesFrom(snap.Functions),
		DeviceInformation: model.InformationFrom(snap),
		Type:              model.ResourceTypeFromValue(snap.DeviceClass),
	}

	for _, st := range snap.States {
		switch st.FunctionClass {
		case "power", "toggle":
			valve.Open[st.FunctionInstance] = &feature.Open{
				Open:         stringValue(st.Value) == "on",
				FuncClass:    st.FunctionClass,
				FuncInstance: st.FunctionInstance,
			}
		case "available":
			valve.Available = boolValue(st.Value)
		}
	}

	c.mu.Lock()
	c.items[snap.ID] = valve
	c.mu.Unlock()
	return valve.DeepCopy(), nil
}

// UpdateElem folds a snapshot's states into the existing model and
// returns the names of the features that changed.
func (c *ValveController) UpdateElem(snap *device.Snapshot) (event.Resource, []string, error) {
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
			open, ok := cur.Open[st.FunctionInstance]
			if !ok {
				continue
			}
			newVal := stringValue(st.Value) == "on"
			if open.Open != newVal {
				open.Open = newVal
				changed.mark("open")
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

// Remove drops the valve with the id; absent ids are a no-op.
func (c *ValveController) Remove(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// TurnOn opens one spigot of the valve. Single-spigot devices use the
// "" instance.
func (c *ValveController) TurnOn(ctx context.Context, id, instance string) error {
	return c.setState(ctx, id, instance, true)
}

// TurnOff closes one spigot of the valve.
func (c *ValveController) TurnOff(ctx context.Context, id, instance string) error {
	return c.setState(ctx, id, instance, false)
}

func (c *ValveController) setState(ctx context.Context, id, instance string, open bool) error {
	cur, err := c.Get(id)
	if err != nil {
		return err
	}
	spigot, ok := cur.Open[instance]
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrUnknownInstance, id, instance)
	}

	push := feature.Open{Open: open, FuncClass: spigot.FuncClass, FuncInstance: spigot.FuncInstance}
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
