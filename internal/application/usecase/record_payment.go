package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bobbykesh/lms/internal/application/dto"
	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/domain/event"
	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/port"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// RecordPaymentUseCase applies a repayment to a loan and re-settles its
// schedule.
type RecordPaymentUseCase struct {
	book      *state.Book
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewRecordPaymentUseCase wires dependencies.
func NewRecordPaymentUseCase(book *state.Book, publisher port.EventPublisher, logger *slog.Logger) *RecordPaymentUseCase {
	return &RecordPaymentUseCase{book: book, publisher: publisher, logger: logger}
}

// Execute records a payment against a loan.
func (uc *RecordPaymentUseCase) Execute(ctx context.Context, req dto.RecordPaymentRequest) (dto.PaymentResponse, error) {
	now := time.Now().UTC()

	var updated model.Loan
	var collected []event.DomainEvent

	if err := uc.book.Update(ctx, func(data *model.Dataset) error {
		loan, ok := data.LoanByID(req.LoanID)
		if !ok {
			return fmt.Errorf("%w: loan %s", valueobject.ErrNotFound, req.LoanID)
		}

		loan, err := loan.RecordPayment(req.Amount, now)
		if err != nil {
			return err
		}

		collected = append(collected, loan.DomainEvents()...)
		updated = loan.ClearEvents()
		data.ReplaceLoan(updated)
		return nil
	}); err != nil {
		return dto.PaymentResponse{}, err
	}

	publish(ctx, uc.logger, uc.publisher, collected...)

	return dto.PaymentResponse{
		LoanID:     updated.ID(),
		AmountPaid: req.Amount,
		Balance:    updated.Balance(),
		LoanStatus: updated.Status().String(),
	}, nil
}
