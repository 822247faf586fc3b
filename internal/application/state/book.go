package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/port"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

const (
	saveAttempts  = 3
	saveBaseDelay = 100 * time.Millisecond
)

// Book owns the in-memory loan book. There is a single logical writer: every
// mutation runs to completion under the lock, applies to a working copy,
// saves the whole document, and only then becomes visible. A failed save
// leaves in-memory state untouched, so the book never drifts ahead of the
// store.
//
// Incoming subscription updates replace the dataset wholesale. Concurrent
// writers on a shared store resolve last-write-wins.
type Book struct {
	mu     sync.RWMutex
	data   model.Dataset
	store  port.SnapshotStore
	logger *slog.Logger
}

// NewBook wires a Book to its snapshot store.
func NewBook(store port.SnapshotStore, logger *slog.Logger) *Book {
	return &Book{store: store, logger: logger}
}

// Load reads the stored document into memory. Call once at startup.
func (b *Book) Load(ctx context.Context) error {
	data, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load snapshot: %w", valueobject.ErrPersistence, err)
	}
	b.mu.Lock()
	b.data = data
	b.mu.Unlock()
	return nil
}

// Watch subscribes to external changes of the stored document and replaces
// the in-memory dataset on each one. Blocks until ctx is cancelled.
func (b *Book) Watch(ctx context.Context) error {
	return b.store.Subscribe(ctx, b.replace, func(err error) {
		b.logger.Warn("snapshot subscription error", "error", err)
	})
}

// Current returns a copy of the dataset safe to read without locking.
func (b *Book) Current() model.Dataset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data.Clone()
}

// Update applies mutate to a working copy of the dataset, persists the result
// and commits it in memory. On any error the in-memory dataset is unchanged.
func (b *Book) Update(ctx context.Context, mutate func(*model.Dataset) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	working := b.data.Clone()
	if err := mutate(&working); err != nil {
		return err
	}
	working.LastUpdated = time.Now().UTC()

	if err := b.save(ctx, working); err != nil {
		return fmt.Errorf("%w: %w", valueobject.ErrPersistence, err)
	}

	b.data = working
	return nil
}

// Replace swaps the whole dataset, persisting it first. Used by backup
// restore and clear.
func (b *Book) Replace(ctx context.Context, data model.Dataset) error {
	return b.Update(ctx, func(working *model.Dataset) error {
		*working = data
		return nil
	})
}

// save writes the document with capped exponential backoff. ctx cancellation
// aborts between attempts.
func (b *Book) save(ctx context.Context, data model.Dataset) error {
	var err error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		if attempt > 0 {
			delay := saveBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			b.logger.Warn("retrying snapshot save", "attempt", attempt+1, "error", err)
		}
		if err = b.store.Save(ctx, data); err == nil {
			return nil
		}
	}
	return fmt.Errorf("save snapshot after %d attempts: %w", saveAttempts, err)
}

// replace is the subscription callback.
func (b *Book) replace(data model.Dataset) {
	b.mu.Lock()
	b.data = data
	b.mu.Unlock()
	b.logger.Debug("dataset replaced from subscription",
		"clients", len(data.Clients),
		"loans", len(data.Loans),
		"expenses", len(data.Expenses),
	)
}
