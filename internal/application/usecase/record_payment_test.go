package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobbykesh/lms/internal/application/dto"
	"github.com/bobbykesh/lms/internal/application/usecase"
	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

func TestRecordPaymentUseCase_Execute(t *testing.T) {
	client := model.Client{ID: "c-1", Name: "Amina"}

	newUseCase := func(store *mockSnapshotStore, pub *mockEventPublisher, seed model.Dataset) *usecase.RecordPaymentUseCase {
		book := newBook(t, store, seed)
		return usecase.NewRecordPaymentUseCase(book, pub, slog.Default())
	}

	t.Run("partial payment reduces the balance", func(t *testing.T) {
		loan := seedLoan(t, client.ID, decimal.NewFromInt(6_000), decimal.Zero, 6, valueobject.FrequencyMonthly)
		store := &mockSnapshotStore{}
		pub := &mockEventPublisher{}
		uc := newUseCase(store, pub, model.Dataset{Clients: []model.Client{client}, Loans: []model.Loan{loan}})

		resp, err := uc.Execute(context.Background(), dto.RecordPaymentRequest{
			LoanID: loan.ID(),
			Amount: decimal.NewFromInt(1_000),
		})
		require.NoError(t, err)

		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(5_000)), "balance %s", resp.Balance)
		assert.Equal(t, "ACTIVE", resp.LoanStatus)

		require.Len(t, store.saved, 1)
		saved, ok := store.saved[0].LoanByID(loan.ID())
		require.True(t, ok)
		assert.True(t, saved.Schedule()[0].Paid)
		assert.False(t, saved.Schedule()[1].Paid)

		require.Len(t, pub.published, 1)
		assert.Equal(t, "lms.loan.payment_received", pub.published[0].EventType())
	})

	t.Run("final payment settles the loan", func(t *testing.T) {
		loan := seedLoan(t, client.ID, decimal.NewFromInt(1_000), decimal.Zero, 2, valueobject.FrequencyMonthly)
		pub := &mockEventPublisher{}
		uc := newUseCase(&mockSnapshotStore{}, pub, model.Dataset{Clients: []model.Client{client}, Loans: []model.Loan{loan}})

		resp, err := uc.Execute(context.Background(), dto.RecordPaymentRequest{
			LoanID: loan.ID(),
			Amount: decimal.NewFromInt(1_000),
		})
		require.NoError(t, err)

		assert.True(t, resp.Balance.IsZero())
		assert.Equal(t, "PAID", resp.LoanStatus)

		require.Len(t, pub.published, 2)
		assert.Equal(t, "lms.loan.payment_received", pub.published[0].EventType())
		assert.Equal(t, "lms.loan.paid", pub.published[1].EventType())
	})

	t.Run("unknown loan", func(t *testing.T) {
		uc := newUseCase(&mockSnapshotStore{}, &mockEventPublisher{}, model.Dataset{})

		_, err := uc.Execute(context.Background(), dto.RecordPaymentRequest{
			LoanID: "ghost",
			Amount: decimal.NewFromInt(100),
		})
		require.ErrorIs(t, err, valueobject.ErrNotFound)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		loan := seedLoan(t, client.ID, decimal.NewFromInt(1_000), decimal.Zero, 2, valueobject.FrequencyMonthly)
		uc := newUseCase(&mockSnapshotStore{}, &mockEventPublisher{}, model.Dataset{Loans: []model.Loan{loan}})

		_, err := uc.Execute(context.Background(), dto.RecordPaymentRequest{
			LoanID: loan.ID(),
			Amount: decimal.Zero,
		})
		require.ErrorIs(t, err, valueobject.ErrInvalidAmount)
	})

	t.Run("failed save leaves the book unchanged", func(t *testing.T) {
		loan := seedLoan(t, client.ID, decimal.NewFromInt(1_000), decimal.Zero, 2, valueobject.FrequencyMonthly)
		store := &mockSnapshotStore{
			saveFunc: func(context.Context, model.Dataset) error {
				return errors.New("connection reset")
			},
		}
		seed := model.Dataset{Clients: []model.Client{client}, Loans: []model.Loan{loan}}
		book := newBook(t, store, seed)
		uc := usecase.NewRecordPaymentUseCase(book, &mockEventPublisher{}, slog.Default())

		_, err := uc.Execute(context.Background(), dto.RecordPaymentRequest{
			LoanID: loan.ID(),
			Amount: decimal.NewFromInt(500),
		})
		require.ErrorIs(t, err, valueobject.ErrPersistence)

		// The partial payment must not have stuck.
		current, ok := book.Current().LoanByID(loan.ID())
		require.True(t, ok)
		assert.True(t, current.Balance().Equal(decimal.NewFromInt(1_000)), "balance %s", current.Balance())
	})
}
