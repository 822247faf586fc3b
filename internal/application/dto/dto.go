package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobbykesh/lms/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// RegisterClientRequest carries the data for a new client record.
type RegisterClientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// IssueLoanRequest carries the data for a new loan. TopUpOfLoanID, when set,
// restructures that active loan into this one.
type IssueLoanRequest struct {
	ClientID      string          `json:"client_id"`
	Principal     decimal.Decimal `json:"principal"`
	RatePercent   decimal.Decimal `json:"rate_percent"`
	Term          int             `json:"term"`
	Frequency     string          `json:"frequency"`
	StartDate     time.Time       `json:"start_date"`
	TopUpOfLoanID string          `json:"top_up_of_loan_id,omitempty"`
}

// RecordPaymentRequest carries a repayment against a loan.
type RecordPaymentRequest struct {
	LoanID string          `json:"loan_id"`
	Amount decimal.Decimal `json:"amount"`
}

// AddExpenseRequest carries a new expense entry.
type AddExpenseRequest struct {
	Date     time.Time       `json:"date"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ClientResponse is the external representation of a client.
type ClientResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Blacklisted bool   `json:"is_blacklisted"`
}

// CreditLimitResponse is the outcome of a limit evaluation for a client.
type CreditLimitResponse struct {
	ClientID string          `json:"client_id"`
	Limit    decimal.Decimal `json:"limit"`
	Tier     string          `json:"tier"`
}

// InstallmentResponse is one schedule entry of a loan.
type InstallmentResponse struct {
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

// LoanResponse is the external representation of a loan. ClientName resolves
// through the non-owning client reference and falls back to "Unknown Client"
// when the reference dangles.
type LoanResponse struct {
	ID             string                `json:"id"`
	ClientID       string                `json:"client_id"`
	ClientName     string                `json:"client_name"`
	Principal      decimal.Decimal       `json:"principal"`
	TotalRepayable decimal.Decimal       `json:"total_repayable"`
	Balance        decimal.Decimal       `json:"balance"`
	Status         string                `json:"status"`
	Frequency      string                `json:"frequency"`
	Term           int                   `json:"term"`
	StartDate      time.Time             `json:"start_date"`
	Schedule       []InstallmentResponse `json:"schedule"`
}

// PaymentResponse reports the effect of a repayment.
type PaymentResponse struct {
	LoanID     string          `json:"loan_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Balance    decimal.Decimal `json:"balance"`
	LoanStatus string          `json:"loan_status"`
}

// ExpenseResponse is the external representation of an expense entry.
type ExpenseResponse struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

// UnknownClientName is rendered when a loan references a client id that no
// longer resolves. Corrupted references are displayed, never treated as
// errors.
const UnknownClientName = "Unknown Client"

// NewClientResponse maps a client record.
func NewClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Address:     c.Address,
		Blacklisted: c.Blacklisted,
	}
}

// NewLoanResponse maps a loan aggregate, resolving the client name against
// the given dataset.
func NewLoanResponse(loan model.Loan, data model.Dataset) LoanResponse {
	name := UnknownClientName
	if client, ok := data.ClientByID(loan.ClientID()); ok {
		name = client.Name
	}

	schedule := loan.Schedule()
	installments := make([]InstallmentResponse, 0, len(schedule))
	for _, inst := range schedule {
		installments = append(installments, InstallmentResponse{
			DueDate: inst.DueDate,
			Amount:  inst.Amount,
			Paid:    inst.Paid,
		})
	}

	return LoanResponse{
		ID:             loan.ID(),
		ClientID:       loan.ClientID(),
		ClientName:     name,
		Principal:      loan.Principal(),
		TotalRepayable: loan.TotalRepayable(),
		Balance:        loan.Balance(),
		Status:         loan.Status().String(),
		Frequency:      loan.Frequency().String(),
		Term:           loan.Term(),
		StartDate:      loan.StartDate(),
		Schedule:       installments,
	}
}

// NewExpenseResponse maps an expense record.
func NewExpenseResponse(e model.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:       e.ID,
		Date:     e.Date,
		Category: e.Category,
		Amount:   e.Amount,
		Note:     e.Note,
	}
}
