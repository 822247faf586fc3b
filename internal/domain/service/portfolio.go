package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobbykesh/lms/internal/domain/model"
)

// parDays is the overdue threshold for the portfolio-at-risk figure.
const parDays = 30

// PortfolioSnapshot is the derived health report of the whole book. It is
// recomputed on demand and never persisted.
type PortfolioSnapshot struct {
	TotalLent       decimal.Decimal `json:"total_lent"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	ExpenseTotal    decimal.Decimal `json:"expense_total"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	PortfolioAtRisk decimal.Decimal `json:"portfolio_at_risk"`
	ClientCount     int             `json:"client_count"`
	AsOf            time.Time       `json:"as_of"`
}

// PortfolioReporter aggregates portfolio metrics from current data.
type PortfolioReporter struct{}

// NewPortfolioReporter returns a new reporter instance.
func NewPortfolioReporter() *PortfolioReporter {
	return &PortfolioReporter{}
}

// Report computes the snapshot as of the given time.
//
// Net profit is the gross flat-interest margin across ALL loans minus total
// expenses. Interest on balances not yet collected counts from the day of
// issuance — a recognition-on-issuance policy, not cash basis.
//
// Portfolio at risk (>30 days) is all-or-nothing per loan: if any unpaid
// installment is more than 30 days overdue, the loan's entire current balance
// is at risk, not just the overdue installment amounts.
func (r *PortfolioReporter) Report(data model.Dataset, asOf time.Time) PortfolioSnapshot {
	snapshot := PortfolioSnapshot{
		TotalLent:       decimal.Zero,
		Outstanding:     decimal.Zero,
		ExpenseTotal:    decimal.Zero,
		NetProfit:       decimal.Zero,
		PortfolioAtRisk: decimal.Zero,
		ClientCount:     len(data.Clients),
		AsOf:            asOf,
	}

	overdueCutoff := asOf.AddDate(0, 0, -parDays)

	for _, loan := range data.Loans {
		snapshot.TotalLent = snapshot.TotalLent.Add(loan.Principal())
		snapshot.NetProfit = snapshot.NetProfit.Add(loan.Interest())

		if !loan.Outstanding() {
			continue
		}
		snapshot.Outstanding = snapshot.Outstanding.Add(loan.Balance())

		if atRisk(loan, overdueCutoff) {
			snapshot.PortfolioAtRisk = snapshot.PortfolioAtRisk.Add(loan.Balance())
		}
	}

	for _, e := range data.Expenses {
		snapshot.ExpenseTotal = snapshot.ExpenseTotal.Add(e.Amount)
	}
	snapshot.NetProfit = snapshot.NetProfit.Sub(snapshot.ExpenseTotal)

	return snapshot
}

// atRisk reports whether any unpaid installment fell due before the cutoff.
func atRisk(loan model.Loan, cutoff time.Time) bool {
	for _, inst := range loan.Schedule() {
		if !inst.Paid && inst.DueDate.Before(cutoff) {
			return true
		}
	}
	return false
}
