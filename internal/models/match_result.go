package models

import "github.com/shopspring/decimal"

// MatchMethod records which tier produced a MatchResult.
type MatchMethod string

const (
	MethodOverride      MatchMethod = "override"
	MethodDeterministic MatchMethod = "deterministic"
	MethodLLM           MatchMethod = "llm"
	MethodNone          MatchMethod = "none"
)

// MatchResult is the outcome of categorizing one transaction.
//
// Nil pointer fields mean "not applicable": Confidence is nil for single LLM
// matches, TokensUsed and EstimatedCost are nil unless the LLM tier ran.
// A zero TokensUsed means no paid call was made or the call failed.
type MatchResult struct {
	Category        *Category
	Method          MatchMethod
	Confidence      *float64
	MatchedKeywords []string
	TokensUsed      *int
	EstimatedCost   *decimal.Decimal
}

// NoMatch returns a result that needs manual categorization.
func NoMatch() MatchResult {
	return MatchResult{Method: MethodNone}
}

// IsMatched reports whether a category was assigned.
func (r MatchResult) IsMatched() bool {
	return r.Category != nil && r.Method != MethodNone
}

// CategoryName returns the assigned category name or "".
func (r MatchResult) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return r.Category.Name
}

// WithUsage returns a copy of r carrying LLM usage figures.
func (r MatchResult) WithUsage(tokens int, cost decimal.Decimal) MatchResult {
	r.TokensUsed = &tokens
	r.EstimatedCost = &cost
	return r
}

// ConfidenceValue returns the confidence or 0 when it is absent.
func (r MatchResult) ConfidenceValue() float64 {
	if r.Confidence == nil {
		return 0
	}
	return *r.Confidence
}

// Tokens returns the tokens used or 0 when the LLM tier did not run.
func (r MatchResult) Tokens() int {
	if r.TokensUsed == nil {
		return 0
	}
	return *r.TokensUsed
}

// Cost returns the estimated cost or zero when the LLM tier did not run.
func (r MatchResult) Cost() decimal.Decimal {
	if r.EstimatedCost == nil {
		return decimal.Zero
	}
	return *r.EstimatedCost
}
