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
	"github.com/bobbykesh/lms/internal/domain/service"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// IssueLoanUseCase validates and creates loans, including top-up
// restructuring of an older active loan.
type IssueLoanUseCase struct {
	book      *state.Book
	limits    *service.CreditLimitEngine
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewIssueLoanUseCase wires dependencies.
func NewIssueLoanUseCase(
	book *state.Book,
	limits *service.CreditLimitEngine,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *IssueLoanUseCase {
	return &IssueLoanUseCase{book: book, limits: limits, publisher: publisher, logger: logger}
}

// Execute issues a loan.
//
// All preconditions are checked before anything is created: the client must
// resolve, the total exposure (requested principal plus the old loan's
// balance on a top-up) must fit the client's freshly evaluated credit limit,
// and the term must fit the frequency's maximum. On a top-up the old loan is
// restructured atomically with the creation of the new one — both land in the
// same snapshot write, and the new loan's principal is the requested amount
// plus the old loan's pre-restructure balance.
func (uc *IssueLoanUseCase) Execute(ctx context.Context, req dto.IssueLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	frequency, err := valueobject.NewFrequency(req.Frequency)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("%w: %w", valueobject.ErrValidation, err)
	}

	var (
		issued    model.Loan
		collected []event.DomainEvent
		snapshot  model.Dataset
	)

	if err := uc.book.Update(ctx, func(data *model.Dataset) error {
		client, ok := data.ClientByID(req.ClientID)
		if !ok {
			return fmt.Errorf("%w: client %s", valueobject.ErrNotFound, req.ClientID)
		}

		principal := req.Principal
		exposure := req.Principal

		var oldLoan model.Loan
		topUp := req.TopUpOfLoanID != ""
		if topUp {
			oldLoan, ok = data.LoanByID(req.TopUpOfLoanID)
			if !ok {
				return fmt.Errorf("%w: loan %s", valueobject.ErrNotFound, req.TopUpOfLoanID)
			}
			if oldLoan.ClientID() != client.ID {
				return fmt.Errorf("%w: loan %s does not belong to client %s",
					valueobject.ErrValidation, req.TopUpOfLoanID, req.ClientID)
			}
			if !oldLoan.Status().Equal(valueobject.LoanStatusActive) {
				return fmt.Errorf("top-up of %s loan: %w",
					oldLoan.Status(), valueobject.ErrInvalidStatusTransition)
			}
			exposure = exposure.Add(oldLoan.Balance())
			principal = principal.Add(oldLoan.Balance())
		}

		// Limits are never cached: every attempt re-evaluates against the
		// current repaid-loan history.
		assessment := uc.limits.Evaluate(client, data.Loans)
		if exposure.GreaterThan(assessment.Limit) {
			return fmt.Errorf("%w: exposure %s over limit %s (%s)",
				valueobject.ErrLimitExceeded, exposure, assessment.Limit, assessment.Tier)
		}

		if req.Term > frequency.MaxTerm() {
			return fmt.Errorf("%w: %d > %d for %s",
				valueobject.ErrTermExceeded, req.Term, frequency.MaxTerm(), frequency)
		}

		loan, err := model.NewLoan(client.ID, principal, req.RatePercent, req.Term, frequency, req.StartDate, now)
		if err != nil {
			return fmt.Errorf("%w: %w", valueobject.ErrValidation, err)
		}

		if topUp {
			restructured, err := oldLoan.Restructure(loan.ID(), now)
			if err != nil {
				return err
			}
			collected = append(collected, restructured.DomainEvents()...)
			data.ReplaceLoan(restructured.ClearEvents())
		}

		collected = append(collected, loan.DomainEvents()...)
		issued = loan.ClearEvents()
		data.Loans = append(data.Loans, issued)
		snapshot = *data
		return nil
	}); err != nil {
		return dto.LoanResponse{}, err
	}

	publish(ctx, uc.logger, uc.publisher, collected...)

	return dto.NewLoanResponse(issued, snapshot), nil
}
