package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// Expense is an operating cost entry. Expenses are created, optionally
// deleted by id, and never otherwise mutated.
type Expense struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

// NewExpense records an expense. Category is free text; the amount must be
// positive.
func NewExpense(date time.Time, category string, amount decimal.Decimal, note string) (Expense, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return Expense{}, fmt.Errorf("%w: expense category is required", valueobject.ErrValidation)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Expense{}, valueobject.ErrInvalidAmount
	}
	return Expense{
		ID:       uuid.New().String(),
		Date:     date,
		Category: category,
		Amount:   amount,
		Note:     strings.TrimSpace(note),
	}, nil
}
