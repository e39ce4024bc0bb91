package categorizer

import (
	"fmt"
	"strings"

	"fjacquet/txcat/internal/models"
)

// StrategyResult records what one tier returned for a transaction.
type StrategyResult struct {
	Strategy string
	Result   models.MatchResult
}

// StrategyResults is the ordered list of tiers tried for one transaction.
type StrategyResults struct {
	Results []StrategyResult
}

// Add appends a tier outcome.
func (sr *StrategyResults) Add(strategy string, result models.MatchResult) {
	sr.Results = append(sr.Results, StrategyResult{Strategy: strategy, Result: result})
}

// Final returns the last recorded result, or NoMatch when nothing ran.
func (sr StrategyResults) Final() models.MatchResult {
	if len(sr.Results) == 0 {
		return models.NoMatch()
	}
	return sr.Results[len(sr.Results)-1].Result
}

// Summary returns a compact description like "override:no_match, keyword:success".
func (sr StrategyResults) Summary() string {
	parts := make([]string, 0, len(sr.Results))
	for _, r := range sr.Results {
		status := "no_match"
		if r.Result.IsMatched() {
			status = "success"
		}
		parts = append(parts, fmt.Sprintf("%s:%s", r.Strategy, status))
	}
	return strings.Join(parts, ", ")
}
