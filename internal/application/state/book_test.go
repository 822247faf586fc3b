package state_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

type stubStore struct {
	mu        sync.Mutex
	data      model.Dataset
	loadErr   error
	saveErrs  []error // consumed per call; nil entry means success
	saveCalls int
	onData    func(model.Dataset)
}

func (s *stubStore) Load(context.Context) (model.Dataset, error) {
	return s.data, s.loadErr
}

func (s *stubStore) Save(_ context.Context, data model.Dataset) error {
	call := s.saveCalls
	s.saveCalls++
	if call < len(s.saveErrs) && s.saveErrs[call] != nil {
		return s.saveErrs[call]
	}
	s.data = data
	return nil
}

func (s *stubStore) Subscribe(ctx context.Context, onData func(model.Dataset), _ func(error)) error {
	s.mu.Lock()
	s.onData = onData
	s.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubStore) subscriber() func(model.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onData
}

func TestBook(t *testing.T) {
	client := model.Client{ID: "c-1", Name: "Amina"}

	t.Run("load pulls the stored document", func(t *testing.T) {
		store := &stubStore{data: model.Dataset{Clients: []model.Client{client}}}
		book := state.NewBook(store, slog.Default())

		require.NoError(t, book.Load(context.Background()))
		assert.Len(t, book.Current().Clients, 1)
	})

	t.Run("load failure is a persistence error", func(t *testing.T) {
		store := &stubStore{loadErr: errors.New("no such table")}
		book := state.NewBook(store, slog.Default())

		err := book.Load(context.Background())
		require.ErrorIs(t, err, valueobject.ErrPersistence)
	})

	t.Run("current hands out an isolated copy", func(t *testing.T) {
		store := &stubStore{data: model.Dataset{Clients: []model.Client{client}}}
		book := state.NewBook(store, slog.Default())
		require.NoError(t, book.Load(context.Background()))

		snapshot := book.Current()
		snapshot.Clients[0].Name = "mutated"
		snapshot.Clients = nil

		assert.Equal(t, "Amina", book.Current().Clients[0].Name)
	})

	t.Run("update saves then commits", func(t *testing.T) {
		store := &stubStore{}
		book := state.NewBook(store, slog.Default())
		require.NoError(t, book.Load(context.Background()))

		before := time.Now().UTC()
		err := book.Update(context.Background(), func(data *model.Dataset) error {
			data.Clients = append(data.Clients, client)
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, 1, store.saveCalls)
		assert.Len(t, store.data.Clients, 1)
		assert.Len(t, book.Current().Clients, 1)
		assert.False(t, book.Current().LastUpdated.Before(before))
	})

	t.Run("mutate error aborts before any save", func(t *testing.T) {
		store := &stubStore{}
		book := state.NewBook(store, slog.Default())
		require.NoError(t, book.Load(context.Background()))

		boom := errors.New("domain said no")
		err := book.Update(context.Background(), func(*model.Dataset) error { return boom })
		require.ErrorIs(t, err, boom)
		assert.Zero(t, store.saveCalls)
	})

	t.Run("save is retried and the book converges", func(t *testing.T) {
		store := &stubStore{saveErrs: []error{errors.New("timeout"), errors.New("timeout"), nil}}
		book := state.NewBook(store, slog.Default())
		require.NoError(t, book.Load(context.Background()))

		err := book.Update(context.Background(), func(data *model.Dataset) error {
			data.Clients = append(data.Clients, client)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, store.saveCalls)
		assert.Len(t, book.Current().Clients, 1)
	})

	t.Run("exhausted retries leave memory untouched", func(t *testing.T) {
		failure := errors.New("disk full")
		store := &stubStore{saveErrs: []error{failure, failure, failure}}
		book := state.NewBook(store, slog.Default())
		require.NoError(t, book.Load(context.Background()))

		err := book.Update(context.Background(), func(data *model.Dataset) error {
			data.Clients = append(data.Clients, client)
			return nil
		})
		require.ErrorIs(t, err, valueobject.ErrPersistence)
		require.ErrorIs(t, err, failure)
		assert.Empty(t, book.Current().Clients)
	})

	t.Run("replace swaps the whole document", func(t *testing.T) {
		store := &stubStore{data: model.Dataset{Clients: []model.Client{client}}}
		book := state.NewBook(store, slog.Default())
		require.NoError(t, book.Load(context.Background()))

		next := model.Dataset{Expenses: []model.Expense{{ID: "e-1", Category: "Rent", Amount: decimal.NewFromInt(900)}}}
		require.NoError(t, book.Replace(context.Background(), next))

		current := book.Current()
		assert.Empty(t, current.Clients)
		assert.Len(t, current.Expenses, 1)
	})

	t.Run("subscription updates replace the dataset wholesale", func(t *testing.T) {
		store := &stubStore{}
		book := state.NewBook(store, slog.Default())
		require.NoError(t, book.Load(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- book.Watch(ctx) }()

		require.Eventually(t, func() bool { return store.subscriber() != nil }, time.Second, 10*time.Millisecond)

		store.subscriber()(model.Dataset{Clients: []model.Client{client}})
		assert.Len(t, book.Current().Clients, 1)

		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
	})
}
