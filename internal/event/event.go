package event

import (
	"context"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

// EventType identifies what an event describes. Resource values match
// the service's own add/update/delete vocabulary; connection values
// are produced by the stream itself.
type EventType string

// EventType constants.
const (
	ResourceAdded   EventType = "add"
	ResourceUpdated EventType = "update"
	ResourceDeleted EventType = "delete"

	Connected    EventType = "connected"
	Disconnected EventType = "disconnected"
	Reconnected  EventType = "reconnected"
)

// Status is the stream's view of the service connection.
type Status string

// Status constants.
const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Resource is the minimal view of a tracked model carried in events.
// The concrete types live in the model package.
type Resource interface {
	GetID() string
	GetCategory() device.Category
}

// Event is one message flowing from the poll loop through the stores
// to subscribers.
type Event struct {
	Type     EventType `json:"type"`
	DeviceID string    `json:"device_id,omitempty"`

	// Category of the owning store; empty on connection events.
	Category device.Category `json:"category,omitempty"`

	// Resource carries the built model on events handed to
	// subscribers; nil on delete and connection events.
	Resource Resource `json:"resource,omitempty"`

	// Snapshot carries the fetched device between classification and
	// processing; subscribers should use Resource.
	Snapshot *device.Snapshot `json:"-"`

	// ForceForward pushes an update to subscribers even when no
	// field changed.
	ForceForward bool `json:"-"`

	// store pins the owning store for deletions, resolved during
	// classification before the registry entry goes away.
	store Store
}

// Store is what the stream needs from a category controller.
type Store interface {
	// InitializeElem builds and stores the model for a snapshot,
	// overwriting any previous model for the same id.
	InitializeElem(snap *device.Snapshot) (Resource, error)

	// UpdateElem applies a snapshot's states to the existing model and
	// returns it along with the names of the features that changed.
	UpdateElem(snap *device.Snapshot) (Resource, []string, error)

	// Remove drops the model for the id; absent ids are a no-op.
	Remove(id string)
}

// snapshotFetcher is the slice of the gateway the stream consumes.
type snapshotFetcher interface {
	FetchSnapshots(ctx context.Context) ([]*device.Snapshot, error)
}

// Callback receives events a subscription matched.
type Callback func(evt Event)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
