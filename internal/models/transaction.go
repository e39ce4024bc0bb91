package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionInput is the part of a transaction the engine looks at.
// Empty Description or Merchant means the field is absent.
type TransactionInput struct {
	Description string
	Merchant    string
	// Amount is signed: positive is income-like, negative is expense-like.
	Amount decimal.Decimal
	// TypeHint is "debit" or "credit" when the bank reports it. It is only
	// a secondary signal and never changes Direction.
	TypeHint string
}

// Direction infers the category type the amount points to.
// Only strictly positive amounts count as income.
func (t TransactionInput) Direction() CategoryType {
	if t.Amount.IsPositive() {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// AbsAmount returns the unsigned amount.
func (t TransactionInput) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// NormalizedTypeHint returns the lowercased hint, or "" when it is not one
// of the recognized values.
func (t TransactionInput) NormalizedTypeHint() string {
	switch hint := strings.ToLower(strings.TrimSpace(t.TypeHint)); hint {
	case TypeHintDebit, TypeHintCredit:
		return hint
	}
	return ""
}
