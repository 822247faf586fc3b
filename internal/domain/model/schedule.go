package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// Installment is one period of a repayment schedule. It is immutable once
// created except for the Paid flag, which the settlement walk flips.
type Installment struct {
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeSchedule derives the total repayable amount and the installment list
// for a flat-interest loan.
//
// Interest is flat, not amortizing: it is computed once on the original
// principal for the whole term,
//
//	totalRepayable = principal + principal * ratePercent/100
//
// and divided equally across the term. Each installment is rounded to two
// decimals; the rounding remainder lands in the final installment so the
// schedule always sums exactly to totalRepayable.
//
// Due dates are the n-th advance from startDate: +1 day for daily, +7 days
// for weekly, +1 calendar month for monthly. The first installment falls one
// period after the start date, never on it. Monthly advances clamp to the end
// of shorter months (Jan 31 + 1 month = Feb 29 in a leap year) instead of
// overflowing into the next month.
//
// The function is pure: no side effects, deterministic for a given input.
func ComputeSchedule(
	principal decimal.Decimal,
	ratePercent decimal.Decimal,
	term int,
	frequency valueobject.Frequency,
	startDate time.Time,
) (decimal.Decimal, []Installment, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil, errors.New("principal must be positive")
	}
	if ratePercent.IsNegative() {
		return decimal.Zero, nil, errors.New("rate must not be negative")
	}
	if term <= 0 {
		return decimal.Zero, nil, errors.New("term must be positive")
	}
	if frequency.IsZero() {
		return decimal.Zero, nil, errors.New("frequency is required")
	}

	totalRepayable := principal.Add(principal.Mul(ratePercent).Div(oneHundred))

	perInstallment := totalRepayable.Div(decimal.NewFromInt(int64(term))).Round(2)

	installments := make([]Installment, 0, term)
	for n := 1; n <= term; n++ {
		amount := perInstallment
		if n == term {
			// Final installment absorbs the rounding remainder.
			amount = totalRepayable.Sub(perInstallment.Mul(decimal.NewFromInt(int64(term - 1))))
		}
		installments = append(installments, Installment{
			DueDate: advance(startDate, frequency, n),
			Amount:  amount,
		})
	}

	return totalRepayable, installments, nil
}

// advance returns startDate moved forward by n periods of the given cadence.
func advance(start time.Time, frequency valueobject.Frequency, n int) time.Time {
	switch frequency {
	case valueobject.FrequencyDaily:
		return start.AddDate(0, 0, n)
	case valueobject.FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	default:
		return addMonthsClamped(start, n)
	}
}

// addMonthsClamped advances by whole calendar months, clamping the day of
// month to the target month's last day. time.AddDate would normalise
// Jan 31 + 1 month into early March, which silently skips February.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, minute, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}
