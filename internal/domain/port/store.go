package port

import (
	"context"

	"github.com/bobbykesh/lms/internal/domain/event"
	"github.com/bobbykesh/lms/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Persistence port (driven/secondary adapter)
// ---------------------------------------------------------------------------

// SnapshotStore durably stores the whole loan book as a single document with
// atomic read/replace semantics. There are no partial updates: Save replaces
// everything, Load returns everything (empty collections when nothing has
// been saved yet).
type SnapshotStore interface {
	Load(ctx context.Context) (model.Dataset, error)
	Save(ctx context.Context, data model.Dataset) error

	// Subscribe delivers every external change of the stored document to
	// onData until ctx is cancelled. Delivery replaces the caller's dataset
	// wholesale. Transient failures go to onErr; the subscription itself
	// keeps running.
	Subscribe(ctx context.Context, onData func(model.Dataset), onErr func(error)) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
