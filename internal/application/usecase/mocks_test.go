package usecase_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/domain/event"
	"github.com/bobbykesh/lms/internal/domain/model"
)

// mockSnapshotStore is a hand-rolled port.SnapshotStore double.
type mockSnapshotStore struct {
	loadFunc func(ctx context.Context) (model.Dataset, error)
	saveFunc func(ctx context.Context, data model.Dataset) error

	saved []model.Dataset
}

func (m *mockSnapshotStore) Load(ctx context.Context) (model.Dataset, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return model.Dataset{}, nil
}

func (m *mockSnapshotStore) Save(ctx context.Context, data model.Dataset) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, data); err != nil {
			return err
		}
	}
	m.saved = append(m.saved, data)
	return nil
}

func (m *mockSnapshotStore) Subscribe(ctx context.Context, _ func(model.Dataset), _ func(error)) error {
	<-ctx.Done()
	return ctx.Err()
}

// mockEventPublisher records published events.
type mockEventPublisher struct {
	publishErr error
	published  []event.DomainEvent
}

func (m *mockEventPublisher) Publish(_ context.Context, events ...event.DomainEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, events...)
	return nil
}

// newBook loads a Book over a mock store seeded with the given dataset.
func newBook(t *testing.T, store *mockSnapshotStore, seed model.Dataset) *state.Book {
	t.Helper()
	if store.loadFunc == nil {
		store.loadFunc = func(context.Context) (model.Dataset, error) {
			return seed, nil
		}
	}
	book := state.NewBook(store, slog.Default())
	require.NoError(t, book.Load(context.Background()))
	return book
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
