package categorizer

import (
	"context"

	"fjacquet/txcat/internal/models"
)

// MatchOptions carries the per-call inputs that callers own.
type MatchOptions struct {
	// UseLLM enables the completion tier for transactions the local tiers
	// could not resolve.
	UseLLM bool
	// Overrides are checked in order before any other tier. Callers should
	// Validate them first: a rule with both patterns empty matches everything.
	Overrides []models.UserOverride
	// Guidelines are free-text hints passed verbatim to the completion API.
	Guidelines []string
}

// CategorizationStrategy is one decision tier.
type CategorizationStrategy interface {
	// Categorize returns a matched result, or a result with MethodNone when
	// the tier cannot decide. Tiers never fail: degraded outcomes are
	// expressed through the result.
	Categorize(ctx context.Context, tx models.TransactionInput, opts MatchOptions) models.MatchResult

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
