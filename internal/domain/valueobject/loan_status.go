package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan. A loan starts ACTIVE
// and ends in exactly one of the two terminal states: PAID when the balance
// reaches zero, or RESTRUCTURED when it is superseded by a top-up loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusActive       = "ACTIVE"
	loanStatusPaid         = "PAID"
	loanStatusRestructured = "RESTRUCTURED"
)

var (
	LoanStatusActive       = LoanStatus{value: loanStatusActive}
	LoanStatusPaid         = LoanStatus{value: loanStatusPaid}
	LoanStatusRestructured = LoanStatus{value: loanStatusRestructured}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusActive:       LoanStatusActive,
	loanStatusPaid:         LoanStatusPaid,
	loanStatusRestructured: LoanStatusRestructured,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsTerminal returns true for PAID and RESTRUCTURED. No transition leaves a
// terminal status.
func (s LoanStatus) IsTerminal() bool { return s.value != loanStatusActive }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
