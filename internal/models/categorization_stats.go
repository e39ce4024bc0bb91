package models

import (
	"fjacquet/txcat/internal/logging"

	"github.com/shopspring/decimal"
)

// CategorizationStats tracks how a run of transactions was categorized
type CategorizationStats struct {
	Total         int             // Total number of transactions processed
	Override      int             // Resolved by a user override
	Deterministic int             // Resolved by keyword scoring or the transfer shortcut
	LLM           int             // Resolved by the completion API
	Uncategorized int             // Left for manual categorization
	TokensUsed    int             // Tokens reported by completion calls
	Cost          decimal.Decimal // Estimated USD cost of completion calls
}

// NewCategorizationStats creates a new CategorizationStats instance
func NewCategorizationStats() *CategorizationStats {
	return &CategorizationStats{Cost: decimal.Zero}
}

// Record counts one result. Token and cost figures are taken from the result,
// so callers recording batch results should pass per-transaction shares.
func (cs *CategorizationStats) Record(result MatchResult) {
	cs.Total++
	switch result.Method {
	case MethodOverride:
		cs.Override++
	case MethodDeterministic:
		cs.Deterministic++
	case MethodLLM:
		cs.LLM++
	default:
		cs.Uncategorized++
	}
}

// AddUsage adds completion usage that is tracked per call rather than per result.
func (cs *CategorizationStats) AddUsage(tokens int, cost decimal.Decimal) {
	cs.TokensUsed += tokens
	cs.Cost = cs.Cost.Add(cost)
}

// Matched returns the number of transactions that received a category.
func (cs CategorizationStats) Matched() int {
	return cs.Override + cs.Deterministic + cs.LLM
}

// GetSuccessRate calculates the success rate as a percentage
func (cs CategorizationStats) GetSuccessRate() float64 {
	if cs.Total == 0 {
		return 0.0
	}
	return float64(cs.Matched()) / float64(cs.Total) * 100.0
}

// LogSummary logs a summary of categorization statistics
func (cs CategorizationStats) LogSummary(logger logging.Logger, source string) {
	if logger == nil {
		return
	}

	logger.Info("Categorization summary",
		logging.Field{Key: "source", Value: source},
		logging.Field{Key: "total_transactions", Value: cs.Total},
		logging.Field{Key: "override", Value: cs.Override},
		logging.Field{Key: "deterministic", Value: cs.Deterministic},
		logging.Field{Key: "llm", Value: cs.LLM},
		logging.Field{Key: "uncategorized", Value: cs.Uncategorized},
		logging.Field{Key: logging.FieldTokens, Value: cs.TokensUsed},
		logging.Field{Key: logging.FieldCost, Value: cs.Cost.StringFixed(6)},
		logging.Field{Key: "success_rate", Value: cs.GetSuccessRate()},
	)
}
