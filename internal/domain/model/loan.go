package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobbykesh/lms/internal/domain/event"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// settleTolerance absorbs per-installment rounding drift: a balance at or
// below it counts as zero, and an installment whose running prefix total is
// within it of the amount paid so far counts as covered.
var settleTolerance = decimal.RequireFromString("0.01")

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy.
type Loan struct {
	id             string
	clientID       string
	principal      decimal.Decimal
	totalRepayable decimal.Decimal
	balance        decimal.Decimal
	schedule       []Installment
	status         valueobject.LoanStatus
	frequency      valueobject.Frequency
	term           int
	startDate      time.Time
	createdAt      time.Time
	updatedAt      time.Time
	domainEvents   []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan issues a loan: it computes the flat-interest repayment schedule and
// starts the loan ACTIVE with the full repayable amount outstanding.
//
// Credit limit and term checks live in the issuing use case; this constructor
// only enforces local invariants.
func NewLoan(
	clientID string,
	principal, ratePercent decimal.Decimal,
	term int,
	frequency valueobject.Frequency,
	startDate time.Time,
	now time.Time,
) (Loan, error) {
	if clientID == "" {
		return Loan{}, errors.New("client ID is required")
	}

	totalRepayable, schedule, err := ComputeSchedule(principal, ratePercent, term, frequency, startDate)
	if err != nil {
		return Loan{}, err
	}

	id := uuid.New().String()
	loan := Loan{
		id:             id,
		clientID:       clientID,
		principal:      principal,
		totalRepayable: totalRepayable,
		balance:        totalRepayable,
		schedule:       schedule,
		status:         valueobject.LoanStatusActive,
		frequency:      frequency,
		term:           term,
		startDate:      startDate,
		createdAt:      now,
		updatedAt:      now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanIssued(
		id, clientID, principal, totalRepayable, frequency.String(), term, startDate,
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, clientID string,
	principal, totalRepayable, balance decimal.Decimal,
	schedule []Installment,
	status valueobject.LoanStatus,
	frequency valueobject.Frequency,
	term int,
	startDate, createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:             id,
		clientID:       clientID,
		principal:      principal,
		totalRepayable: totalRepayable,
		balance:        balance,
		schedule:       schedule,
		status:         status,
		frequency:      frequency,
		term:           term,
		startDate:      startDate,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// RecordPayment reduces the outstanding balance and re-settles the schedule.
//
// A balance within settleTolerance of zero snaps to exactly zero and the loan
// transitions to PAID. Overpayment is never rejected; the balance floors at
// zero.
//
// Settlement is prefix-based: installments are covered strictly in schedule
// order. The amount paid so far (totalRepayable - balance) is walked against
// a running sum of installment amounts, and an installment is paid exactly
// when the running sum stays within tolerance of that figure. A payment that
// does not fully cover the next installment leaves it unpaid even if later
// installments are already due.
func (l Loan) RecordPayment(amount decimal.Decimal, now time.Time) (Loan, error) {
	if l.status.IsTerminal() {
		return l, valueobject.ErrInvalidStatusTransition
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return l, valueobject.ErrInvalidAmount
	}

	next := l
	next.balance = l.balance.Sub(amount)
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)

	if next.balance.LessThanOrEqual(settleTolerance) {
		next.balance = decimal.Zero
		next.status = valueobject.LoanStatusPaid
	}

	next.schedule = settle(l.schedule, next.totalRepayable, next.balance)

	next.domainEvents = append(next.domainEvents, event.NewPaymentReceived(l.id, amount, next.balance))
	if next.status.Equal(valueobject.LoanStatusPaid) {
		next.domainEvents = append(next.domainEvents, event.NewLoanPaid(l.id))
	}

	return next, nil
}

// Restructure closes the loan because a top-up superseded it: the remaining
// balance is folded into the new loan, so this one ends with a zero balance
// and the RESTRUCTURED terminal status.
func (l Loan) Restructure(supersededByLoanID string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusActive) {
		return l, valueobject.ErrInvalidStatusTransition
	}

	next := l
	next.balance = decimal.Zero
	next.status = valueobject.LoanStatusRestructured
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanRestructured(l.id, supersededByLoanID, l.balance))
	return next, nil
}

// settle recomputes every Paid flag from scratch. Re-running it with the same
// balance is idempotent.
func settle(schedule []Installment, totalRepayable, balance decimal.Decimal) []Installment {
	paidSoFar := totalRepayable.Sub(balance)
	covered := paidSoFar.Add(settleTolerance)

	out := make([]Installment, len(schedule))
	copy(out, schedule)

	running := decimal.Zero
	for i := range out {
		running = running.Add(out[i].Amount)
		out[i].Paid = running.LessThanOrEqual(covered)
	}
	return out
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                      { return l.id }
func (l Loan) ClientID() string                { return l.clientID }
func (l Loan) Principal() decimal.Decimal      { return l.principal }
func (l Loan) TotalRepayable() decimal.Decimal { return l.totalRepayable }
func (l Loan) Balance() decimal.Decimal        { return l.balance }
func (l Loan) Status() valueobject.LoanStatus  { return l.status }
func (l Loan) Frequency() valueobject.Frequency { return l.frequency }
func (l Loan) Term() int                       { return l.term }
func (l Loan) StartDate() time.Time            { return l.startDate }
func (l Loan) CreatedAt() time.Time            { return l.createdAt }
func (l Loan) UpdatedAt() time.Time            { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent { return l.domainEvents }

// Outstanding reports whether any balance remains.
func (l Loan) Outstanding() bool { return l.balance.GreaterThan(decimal.Zero) }

// Interest returns the flat interest margin priced into the loan.
func (l Loan) Interest() decimal.Decimal { return l.totalRepayable.Sub(l.principal) }

// Schedule returns a defensive copy of the installment schedule.
func (l Loan) Schedule() []Installment {
	if l.schedule == nil {
		return nil
	}
	out := make([]Installment, len(l.schedule))
	copy(out, l.schedule)
	return out
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

func copyEvents(events []event.DomainEvent) []event.DomainEvent {
	if events == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(events))
	copy(out, events)
	return out
}

// ---------------------------------------------------------------------------
// JSON codec
// ---------------------------------------------------------------------------

// loanRecord is the wire form of a Loan inside a snapshot document.
type loanRecord struct {
	ID             string          `json:"id"`
	ClientID       string          `json:"client_id"`
	Principal      decimal.Decimal `json:"principal"`
	TotalRepayable decimal.Decimal `json:"total_repayable"`
	Balance        decimal.Decimal `json:"balance"`
	Schedule       []Installment   `json:"schedule"`
	Status         string          `json:"status"`
	Frequency      string          `json:"frequency"`
	Term           int             `json:"term"`
	StartDate      time.Time       `json:"start_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MarshalJSON serialises the aggregate for snapshot persistence and backups.
func (l Loan) MarshalJSON() ([]byte, error) {
	return json.Marshal(loanRecord{
		ID:             l.id,
		ClientID:       l.clientID,
		Principal:      l.principal,
		TotalRepayable: l.totalRepayable,
		Balance:        l.balance,
		Schedule:       l.schedule,
		Status:         l.status.String(),
		Frequency:      l.frequency.String(),
		Term:           l.term,
		StartDate:      l.startDate,
		CreatedAt:      l.createdAt,
		UpdatedAt:      l.updatedAt,
	})
}

// UnmarshalJSON rebuilds the aggregate from its wire form, validating the
// status and frequency values.
func (l *Loan) UnmarshalJSON(data []byte) error {
	var rec loanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	status, err := valueobject.NewLoanStatus(rec.Status)
	if err != nil {
		return fmt.Errorf("loan %s: %w", rec.ID, err)
	}
	frequency, err := valueobject.NewFrequency(rec.Frequency)
	if err != nil {
		return fmt.Errorf("loan %s: %w", rec.ID, err)
	}

	*l = ReconstructLoan(
		rec.ID, rec.ClientID,
		rec.Principal, rec.TotalRepayable, rec.Balance,
		rec.Schedule, status, frequency, rec.Term,
		rec.StartDate, rec.CreatedAt, rec.UpdatedAt,
	)
	return nil
}
