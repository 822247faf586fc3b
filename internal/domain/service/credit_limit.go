package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// CreditLimitEngine – domain service for exposure ceilings
// ---------------------------------------------------------------------------

// Credit policy constants. A client starts at the base limit and earns one
// increment per fully repaid loan, capped at the portfolio-wide maximum.
var (
	BaseLimit     = decimal.NewFromInt(20_000)
	TierIncrement = decimal.NewFromInt(5_000)
	MaxLoanCap    = decimal.NewFromInt(50_000)
)

// PenaltyFee is the flat fee for overdue installments. It is not applied
// anywhere in the repayment math today.
// TODO: wire into RecordPayment once product confirms the overdue fee schedule.
var PenaltyFee = decimal.NewFromInt(500)

// CreditAssessment is the outcome of a limit evaluation.
type CreditAssessment struct {
	Limit decimal.Decimal
	Tier  string
}

// CreditLimitEngine derives a client's borrowing ceiling from the blacklist
// flag and their repaid-loan history.
type CreditLimitEngine struct{}

// NewCreditLimitEngine returns a new engine instance.
func NewCreditLimitEngine() *CreditLimitEngine {
	return &CreditLimitEngine{}
}

// Evaluate computes the client's current limit and tier label.
//
// Tiers:
//
//	blacklisted        -> 0, "Blacklisted"
//	no repaid loans    -> BaseLimit, "Starter"
//	n repaid loans     -> BaseLimit + n*TierIncrement, "Level n"
//	at or over the cap -> MaxLoanCap, "MAX VIP"
//
// The result is a pure query over current state: limits are never cached on
// the client record, and every issuance attempt re-evaluates because the
// repaid-loan count can grow between attempts.
func (e *CreditLimitEngine) Evaluate(client model.Client, loans []model.Loan) CreditAssessment {
	if client.Blacklisted {
		return CreditAssessment{Limit: decimal.Zero, Tier: "Blacklisted"}
	}

	repaid := 0
	for _, l := range loans {
		if l.ClientID() == client.ID && l.Status().Equal(valueobject.LoanStatusPaid) {
			repaid++
		}
	}

	limit := BaseLimit
	tier := "Starter"
	if repaid > 0 {
		limit = BaseLimit.Add(TierIncrement.Mul(decimal.NewFromInt(int64(repaid))))
		tier = fmt.Sprintf("Level %d", repaid)
	}

	if limit.GreaterThan(MaxLoanCap) {
		limit = MaxLoanCap
		tier = "MAX VIP"
	}

	return CreditAssessment{Limit: limit, Tier: tier}
}
