package categorizer

import (
	"context"
	"math"
	"strings"

	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/rules"
	"fjacquet/txcat/internal/textutils"
)

// minKeywordConfidence is the floor given to any category with at least one
// matching keyword.
const minKeywordConfidence = 10.0

// KeywordStrategy scores categories by keyword overlap with the normalized
// description and merchant.
type KeywordStrategy struct {
	index         *CategoryIndex
	table         *rules.Table
	minConfidence float64
	logger        logging.Logger
}

// NewKeywordStrategy creates a new KeywordStrategy instance. Matches scoring
// below minConfidence are discarded.
func NewKeywordStrategy(index *CategoryIndex, table *rules.Table, minConfidence float64, logger logging.Logger) *KeywordStrategy {
	return &KeywordStrategy{
		index:         index,
		table:         table,
		minConfidence: minConfidence,
		logger:        logging.OrNop(logger),
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *KeywordStrategy) Name() string {
	return "keyword"
}

// Categorize tries the transfer shortcut, then keyword scoring.
func (s *KeywordStrategy) Categorize(_ context.Context, tx models.TransactionInput, _ MatchOptions) models.MatchResult {
	text := textutils.CombineNormalized(tx.Description, tx.Merchant)
	if text == "" {
		return models.NoMatch()
	}

	if strings.Contains(text, models.TransferCategoryName) {
		if category, ok := s.index.Lookup(models.TransferCategoryName); ok {
			s.logger.Debug("Transaction categorized by transfer shortcut",
				logging.Field{Key: logging.FieldCategory, Value: category.Name})
			confidence := models.MaxConfidence
			return models.MatchResult{
				Category:   &category,
				Method:     models.MethodDeterministic,
				Confidence: &confidence,
			}
		}
	}

	best, ok := s.score(text, tx.Direction())
	if !ok {
		return models.NoMatch()
	}
	if best.confidence < s.minConfidence {
		s.logger.Debug("Best keyword match below threshold",
			logging.Field{Key: logging.FieldCategory, Value: best.category.Name},
			logging.Field{Key: logging.FieldConfidence, Value: best.confidence})
		return models.NoMatch()
	}

	s.logger.Debug("Transaction categorized by keywords",
		logging.Field{Key: logging.FieldCategory, Value: best.category.Name},
		logging.Field{Key: logging.FieldConfidence, Value: best.confidence},
		logging.Field{Key: logging.FieldKeywords, Value: best.keywords})
	category := best.category
	confidence := best.confidence
	return models.MatchResult{
		Category:        &category,
		Method:          models.MethodDeterministic,
		Confidence:      &confidence,
		MatchedKeywords: best.keywords,
	}
}

type keywordScore struct {
	category   models.Category
	confidence float64
	keywords   []string
}

// score returns the highest scoring eligible category. Ties keep the rule
// that comes first in the table.
func (s *KeywordStrategy) score(text string, direction models.CategoryType) (keywordScore, bool) {
	var best keywordScore
	found := false

	for _, rule := range s.table.Rules() {
		category, ok := s.index.Lookup(rule.Category)
		if !ok || !eligible(category.Type, direction) || len(rule.Keywords) == 0 {
			continue
		}

		var matched []string
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		confidence := math.Max(minKeywordConfidence, 100.0*float64(len(matched))/float64(len(rule.Keywords)))
		if !found || confidence > best.confidence {
			best = keywordScore{category: category, confidence: confidence, keywords: matched}
			found = true
		}
	}
	return best, found
}

// eligible reports whether a category of type t may be assigned to a
// transaction going in direction. Income categories need a positive amount,
// every other type needs a non-positive one.
func eligible(t, direction models.CategoryType) bool {
	if direction == models.CategoryTypeIncome {
		return t == models.CategoryTypeIncome
	}
	return t != models.CategoryTypeIncome
}
