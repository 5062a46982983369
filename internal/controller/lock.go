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

// lockControlClass is the function class locks report and accept
// their position on.
const lockControlClass = "lock-control"

// LockController holds and manages lock resources.
//
// All public methods are thread-safe; returned models are deep copies.
type LockController struct {
	mu      sync.RWMutex
	items   map[string]*model.Lock
	gateway statePusher
	log     Logger
	now     func() time.Time
}

// NewLockController creates an empty lock store writing through the
// given gateway.
func NewLockController(gw statePusher) *LockController {
	return &LockController{
		items:   make(map[string]*model.Lock),
		gateway: gw,
		log:     noopLogger{},
		now:     defaultClock,
	}
}

// SetLogger sets the logger for the controller.
func (c *LockController) SetLogger(log Logger) {
	c.log = log
}

// Get returns a copy of the lock with the id.
func (c *LockController) Get(id string) (*model.Lock, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return item.DeepCopy(), nil
}

// Items returns copies of every tracked lock.
func (c *LockController) Items() []*model.Lock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]*model.Lock, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item.DeepCopy())
	}
	return items
}

// Has reports whether the id is tracked.
func (c *LockController) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[id]
	return ok
}

// Category returns the category this store owns.
func (c *LockController) Category() device.Category {
	return device.CategoryLock
}

// InitializeElem builds the lock model from a snapshot.
func (c *LockController) InitializeElem(snap *device.Snapshot) (event.Resource, error) {
	c.log.Info("initializing lock", "device_id", snap.ID)

	lock := &model.Lock{
		ID:                snap.ID,
		Instances:         model.InstancesFrom(snap.Functions),
		DeviceInformation: model.InformationFrom(snap),
		Type:              model.ResourceTypeFromValue(snap.DeviceClass),
	}

	for _, st := range snap.States {
		switch st.FunctionClass {
		case lockControlClass:
			lock.Position = &feature.CurrentPosition{
				Position: feature.PositionFromValue(stringValue(st.Value)),
			}
		case "available":
			lock.Available = boolValue(st.Value)
		}
	}

	c.mu.Lock()
	c.items[snap.ID] = lock
	c.mu.Unlock()
	return lock.DeepCopy(), nil
}

// UpdateElem folds a snapshot's states into the existing model and
// returns the names of the features that changed.
func (c *LockController) UpdateElem(snap *device.Snapshot) (event.Resource, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.items[snap.ID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, snap.ID)
	}

	var changed changeSet
	for _, st := range snap.States {
		switch st.FunctionClass {
		case lockControlClass:
			newVal := feature.PositionFromValue(stringValue(st.Value))
			if cur.Position != nil && cur.Position.Position != newVal {
				cur.Position.Position = newVal
				changed.mark("position")
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

// Remove drops the lock with the id; absent ids are a no-op.
func (c *LockController) Remove(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// Lock starts locking the lock. The device reports the final
// position through a later poll.
func (c *LockController) Lock(ctx context.Context, id string) error {
	return c.setPosition(ctx, id, feature.PositionLocking)
}

// Unlock starts unlocking the lock.
func (c *LockController) Unlock(ctx context.Context, id string) error {
	return c.setPosition(ctx, id, feature.PositionUnlocking)
}

func (c *LockController) setPosition(ctx context.Context, id string, position feature.Position) error {
	cur, err := c.Get(id)
	if err != nil {
		return err
	}
	if cur.Position == nil {
		return fmt.Errorf("%w: %s lock-control", ErrMissingFunction, id)
	}

	values := []device.State{{
		FunctionClass:    lockControlClass,
		FunctionInstance: cur.Instance(lockControlClass),
		Value:            feature.CurrentPosition{Position: position}.APIValue(),
		LastUpdateTime:   c.now().Unix(),
	}}

	resp, err := c.gateway.PushState(ctx, id, values)
	if err != nil {
		return err
	}
	if _, _, err := c.UpdateElem(&device.Snapshot{ID: id, States: resp}); err != nil {
		c.log.Debug("push response not applied", "device_id", id, "error", err)
	}
	return nil
}
