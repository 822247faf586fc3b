package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bobbykesh/lms/internal/application/dto"
	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/domain/service"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// Queries bundles the read-only views over the book: they never mutate state
// and work on a point-in-time copy of the dataset.
type Queries struct {
	book     *state.Book
	limits   *service.CreditLimitEngine
	reporter *service.PortfolioReporter
}

// NewQueries wires dependencies.
func NewQueries(book *state.Book, limits *service.CreditLimitEngine, reporter *service.PortfolioReporter) *Queries {
	return &Queries{book: book, limits: limits, reporter: reporter}
}

// ListClients returns all clients in registration order.
func (q *Queries) ListClients(_ context.Context) []dto.ClientResponse {
	data := q.book.Current()
	out := make([]dto.ClientResponse, 0, len(data.Clients))
	for _, c := range data.Clients {
		out = append(out, dto.NewClientResponse(c))
	}
	return out
}

// CreditLimit evaluates the client's current borrowing ceiling.
func (q *Queries) CreditLimit(_ context.Context, clientID string) (dto.CreditLimitResponse, error) {
	data := q.book.Current()
	client, ok := data.ClientByID(clientID)
	if !ok {
		return dto.CreditLimitResponse{}, fmt.Errorf("%w: client %s", valueobject.ErrNotFound, clientID)
	}
	assessment := q.limits.Evaluate(client, data.Loans)
	return dto.CreditLimitResponse{
		ClientID: clientID,
		Limit:    assessment.Limit,
		Tier:     assessment.Tier,
	}, nil
}

// ListLoans returns all loans in issuance order.
func (q *Queries) ListLoans(_ context.Context) []dto.LoanResponse {
	data := q.book.Current()
	out := make([]dto.LoanResponse, 0, len(data.Loans))
	for _, l := range data.Loans {
		out = append(out, dto.NewLoanResponse(l, data))
	}
	return out
}

// GetLoan returns a single loan with its full schedule.
func (q *Queries) GetLoan(_ context.Context, loanID string) (dto.LoanResponse, error) {
	data := q.book.Current()
	loan, ok := data.LoanByID(loanID)
	if !ok {
		return dto.LoanResponse{}, fmt.Errorf("%w: loan %s", valueobject.ErrNotFound, loanID)
	}
	return dto.NewLoanResponse(loan, data), nil
}

// ListExpenses returns all expense entries in recording order.
func (q *Queries) ListExpenses(_ context.Context) []dto.ExpenseResponse {
	data := q.book.Current()
	out := make([]dto.ExpenseResponse, 0, len(data.Expenses))
	for _, e := range data.Expenses {
		out = append(out, dto.NewExpenseResponse(e))
	}
	return out
}

// Dashboard recomputes the portfolio snapshot as of the given time.
func (q *Queries) Dashboard(_ context.Context, asOf time.Time) service.PortfolioSnapshot {
	return q.reporter.Report(q.book.Current(), asOf)
}
