package event

import (
	"sync"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

// Registry maps tracked device ids onto their owning stores. Every
// tracked device has exactly one owner: the entry appears when the
// device is first classified and disappears when the service stops
// listing it. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

type registryEntry struct {
	store    Store
	category device.Category
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Add tracks a device under its owning store. Re-adding an id
// overwrites the entry.
func (r *Registry) Add(id string, store Store, category device.Category) {
	r.mu.Lock()
	r.entries[id] = registryEntry{store: store, category: category}
	r.mu.Unlock()
}

// Remove drops a device; absent ids are a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Lookup returns the store owning the id.
func (r *Registry) Lookup(id string) (Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry.store, ok
}

// Category returns the category the id was classified under.
func (r *Registry) Category(id string) (device.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry.category, ok
}

// Has reports whether the id is tracked.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// IDs returns all tracked device ids in no particular order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of tracked devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
