package categorizer

import (
	"context"

	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/textutils"
)

// OverrideStrategy applies user overrides. It has absolute priority over the
// other tiers.
type OverrideStrategy struct {
	index  *CategoryIndex
	logger logging.Logger
}

// NewOverrideStrategy creates a new OverrideStrategy instance.
func NewOverrideStrategy(index *CategoryIndex, logger logging.Logger) *OverrideStrategy {
	return &OverrideStrategy{index: index, logger: logging.OrNop(logger)}
}

// Name returns the name of this strategy for logging and debugging.
func (s *OverrideStrategy) Name() string {
	return "override"
}

// Categorize returns the first override that matches the transaction and
// whose target resolves to a known category. Amounts are never compared.
func (s *OverrideStrategy) Categorize(_ context.Context, tx models.TransactionInput, opts MatchOptions) models.MatchResult {
	if len(opts.Overrides) == 0 {
		return models.NoMatch()
	}
	return s.match(compileOverrides(opts.Overrides), textutils.Normalize(tx.Description), textutils.Normalize(tx.Merchant))
}

// match is shared with the batch matcher, which compiles overrides once.
func (s *OverrideStrategy) match(rules []compiledOverride, description, merchant string) models.MatchResult {
	for _, rule := range rules {
		if !rule.matches(description, merchant) {
			continue
		}
		category, ok := s.index.Lookup(rule.category)
		if !ok {
			s.logger.Debug("Override target is not a known category",
				logging.Field{Key: logging.FieldCategory, Value: rule.category})
			continue
		}

		s.logger.Debug("Transaction categorized by override",
			logging.Field{Key: logging.FieldCategory, Value: category.Name},
			logging.Field{Key: logging.FieldMethod, Value: models.MethodOverride})
		confidence := models.MaxConfidence
		return models.MatchResult{
			Category:   &category,
			Method:     models.MethodOverride,
			Confidence: &confidence,
		}
	}
	return models.NoMatch()
}

type compiledOverride struct {
	description string
	merchant    string
	category    string
}

func (o compiledOverride) matches(description, merchant string) bool {
	return (o.description == "" || o.description == description) &&
		(o.merchant == "" || o.merchant == merchant)
}

func compileOverrides(overrides []models.UserOverride) []compiledOverride {
	out := make([]compiledOverride, len(overrides))
	for i, o := range overrides {
		out[i] = compiledOverride{
			description: textutils.Normalize(o.Description),
			merchant:    textutils.Normalize(o.Merchant),
			category:    o.CategoryName,
		}
	}
	return out
}
