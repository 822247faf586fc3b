package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bobbykesh/lms/internal/application/dto"
	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/domain/event"
	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/port"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// AddExpenseUseCase records an operating expense.
type AddExpenseUseCase struct {
	book      *state.Book
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewAddExpenseUseCase wires dependencies.
func NewAddExpenseUseCase(book *state.Book, publisher port.EventPublisher, logger *slog.Logger) *AddExpenseUseCase {
	return &AddExpenseUseCase{book: book, publisher: publisher, logger: logger}
}

// Execute validates and persists the expense entry.
func (uc *AddExpenseUseCase) Execute(ctx context.Context, req dto.AddExpenseRequest) (dto.ExpenseResponse, error) {
	expense, err := model.NewExpense(req.Date, req.Category, req.Amount, req.Note)
	if err != nil {
		return dto.ExpenseResponse{}, err
	}

	if err := uc.book.Update(ctx, func(data *model.Dataset) error {
		data.Expenses = append(data.Expenses, expense)
		return nil
	}); err != nil {
		return dto.ExpenseResponse{}, fmt.Errorf("add expense: %w", err)
	}

	publish(ctx, uc.logger, uc.publisher, event.NewExpenseRecorded(expense.ID, expense.Category, expense.Amount))

	return dto.NewExpenseResponse(expense), nil
}

// RemoveExpenseUseCase deletes an expense entry by id. Deletion is the only
// mutation an expense supports.
type RemoveExpenseUseCase struct {
	book      *state.Book
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewRemoveExpenseUseCase wires dependencies.
func NewRemoveExpenseUseCase(book *state.Book, publisher port.EventPublisher, logger *slog.Logger) *RemoveExpenseUseCase {
	return &RemoveExpenseUseCase{book: book, publisher: publisher, logger: logger}
}

// Execute removes the expense with the given id.
func (uc *RemoveExpenseUseCase) Execute(ctx context.Context, expenseID string) error {
	if err := uc.book.Update(ctx, func(data *model.Dataset) error {
		for i := range data.Expenses {
			if data.Expenses[i].ID == expenseID {
				data.Expenses = append(data.Expenses[:i], data.Expenses[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: expense %s", valueobject.ErrNotFound, expenseID)
	}); err != nil {
		return err
	}

	publish(ctx, uc.logger, uc.publisher, event.NewExpenseRemoved(expenseID))
	return nil
}
