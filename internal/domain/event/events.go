package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobbykesh/lms/internal/platform/events"
)

// DomainEvent is an alias for the shared platform events interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Client events
// ---------------------------------------------------------------------------

// ClientRegistered is raised when a new client enters the book.
type ClientRegistered struct {
	events.BaseEvent
	Name string `json:"name"`
}

func NewClientRegistered(clientID, name string) ClientRegistered {
	return ClientRegistered{
		BaseEvent: events.NewBaseEvent("lms.client.registered", clientID, "Client"),
		Name:      name,
	}
}

// ClientBlacklistToggled is raised when the blacklist flag flips.
type ClientBlacklistToggled struct {
	events.BaseEvent
	Blacklisted bool `json:"blacklisted"`
}

func NewClientBlacklistToggled(clientID string, blacklisted bool) ClientBlacklistToggled {
	return ClientBlacklistToggled{
		BaseEvent:   events.NewBaseEvent("lms.client.blacklist_toggled", clientID, "Client"),
		Blacklisted: blacklisted,
	}
}

// ---------------------------------------------------------------------------
// Loan events
// ---------------------------------------------------------------------------

// LoanIssued is raised when a new loan is created.
type LoanIssued struct {
	events.BaseEvent
	ClientID       string          `json:"client_id"`
	Principal      decimal.Decimal `json:"principal"`
	TotalRepayable decimal.Decimal `json:"total_repayable"`
	Frequency      string          `json:"frequency"`
	Term           int             `json:"term"`
	StartDate      time.Time       `json:"start_date"`
}

func NewLoanIssued(
	loanID, clientID string,
	principal, totalRepayable decimal.Decimal,
	frequency string, term int, startDate time.Time,
) LoanIssued {
	return LoanIssued{
		BaseEvent:      events.NewBaseEvent("lms.loan.issued", loanID, "Loan"),
		ClientID:       clientID,
		Principal:      principal,
		TotalRepayable: totalRepayable,
		Frequency:      frequency,
		Term:           term,
		StartDate:      startDate,
	}
}

// LoanRestructured is raised when a top-up supersedes an active loan.
type LoanRestructured struct {
	events.BaseEvent
	SupersededByLoanID string          `json:"superseded_by_loan_id"`
	FoldedBalance      decimal.Decimal `json:"folded_balance"`
}

func NewLoanRestructured(loanID, supersededBy string, foldedBalance decimal.Decimal) LoanRestructured {
	return LoanRestructured{
		BaseEvent:          events.NewBaseEvent("lms.loan.restructured", loanID, "Loan"),
		SupersededByLoanID: supersededBy,
		FoldedBalance:      foldedBalance,
	}
}

// PaymentReceived is raised for every accepted repayment.
type PaymentReceived struct {
	events.BaseEvent
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

func NewPaymentReceived(loanID string, amount, balance decimal.Decimal) PaymentReceived {
	return PaymentReceived{
		BaseEvent: events.NewBaseEvent("lms.loan.payment_received", loanID, "Loan"),
		Amount:    amount,
		Balance:   balance,
	}
}

// LoanPaid is raised when a loan's balance reaches zero.
type LoanPaid struct {
	events.BaseEvent
}

func NewLoanPaid(loanID string) LoanPaid {
	return LoanPaid{
		BaseEvent: events.NewBaseEvent("lms.loan.paid", loanID, "Loan"),
	}
}

// ---------------------------------------------------------------------------
// Expense events
// ---------------------------------------------------------------------------

// ExpenseRecorded is raised when an expense entry is added.
type ExpenseRecorded struct {
	events.BaseEvent
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

func NewExpenseRecorded(expenseID, category string, amount decimal.Decimal) ExpenseRecorded {
	return ExpenseRecorded{
		BaseEvent: events.NewBaseEvent("lms.expense.recorded", expenseID, "Expense"),
		Category:  category,
		Amount:    amount,
	}
}

// ExpenseRemoved is raised when an expense entry is deleted.
type ExpenseRemoved struct {
	events.BaseEvent
}

func NewExpenseRemoved(expenseID string) ExpenseRemoved {
	return ExpenseRemoved{
		BaseEvent: events.NewBaseEvent("lms.expense.removed", expenseID, "Expense"),
	}
}
