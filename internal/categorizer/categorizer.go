// Package categorizer assigns transactions to user-defined categories using
// three tiers, tried in order:
//  1. user overrides matched on normalized description and merchant
//  2. the transfer shortcut and keyword scoring against a rule table
//  3. a completion API, per transaction or in batches
package categorizer

import (
	"context"
	"fmt"
	"time"

	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/rules"

	"github.com/shopspring/decimal"
)

// DefaultMinConfidence is the keyword score a match needs to be accepted.
// Keyword scores start at 10, so 30 accepts one hit among three keywords or
// two among six.
const DefaultMinConfidence = 30.0

// Options are the engine settings fixed at construction.
type Options struct {
	MinConfidence    float64
	Model            string
	Temperature      float64
	MaxTokens        int
	BatchMaxTokens   int
	BatchSize        int
	BatchConcurrency int
	MaxAttempts      int
	RetryDelay       time.Duration
	Prices           PriceTable
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MinConfidence:    DefaultMinConfidence,
		Model:            "gemini-2.0-flash",
		Temperature:      0.1,
		MaxTokens:        50,
		BatchMaxTokens:   2000,
		BatchSize:        DefaultBatchSize,
		BatchConcurrency: 1,
		MaxAttempts:      3,
		RetryDelay:       time.Second,
	}
}

func (o Options) aiSettings() AISettings {
	return AISettings{
		Model:       o.Model,
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
		Retry:       RetryPolicy{MaxAttempts: o.MaxAttempts, BaseDelay: o.RetryDelay},
		Prices:      o.Prices,
	}
}

// Categorizer is one matching session. It is immutable after construction
// and safe for concurrent use.
type Categorizer struct {
	index    *CategoryIndex
	table    *rules.Table
	override *OverrideStrategy
	keyword  *KeywordStrategy
	ai       *AIStrategy
	batch    *BatchMatcher
	logger   logging.Logger
}

// NewCategorizer builds a session. The category index is built eagerly so a
// name collision fails here rather than on first use. A nil client disables
// the LLM tier; a nil table means no keyword rules.
func NewCategorizer(categories []models.Category, table *rules.Table, client CompletionClient, opts Options, logger logging.Logger) (*Categorizer, error) {
	logger = logging.OrNop(logger)

	index, err := NewCategoryIndex(categories)
	if err != nil {
		return nil, fmt.Errorf("failed to build category index: %w", err)
	}
	if table == nil {
		table = &rules.Table{}
	}

	ai := opts.aiSettings()
	return &Categorizer{
		index:    index,
		table:    table,
		override: NewOverrideStrategy(index, logger),
		keyword:  NewKeywordStrategy(index, table, opts.MinConfidence, logger),
		ai:       NewAIStrategy(client, index, ai, logger),
		batch: NewBatchMatcher(client, index, BatchSettings{
			AISettings:     ai,
			Size:           opts.BatchSize,
			Concurrency:    opts.BatchConcurrency,
			ChunkMaxTokens: opts.BatchMaxTokens,
		}, logger),
		logger: logger,
	}, nil
}

// NewCategorizerFromStore loads categories and keyword rules from store.
func NewCategorizerFromStore(store CategoryStoreInterface, client CompletionClient, opts Options, logger logging.Logger) (*Categorizer, error) {
	categories, err := store.LoadCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	table, err := store.LoadKeywordRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword rules: %w", err)
	}
	return NewCategorizer(categories, table, client, opts, logger)
}

// Index returns the session's category index.
func (c *Categorizer) Index() *CategoryIndex {
	return c.index
}

// Rules returns the session's keyword rule table.
func (c *Categorizer) Rules() *rules.Table {
	return c.table
}

// Categorize runs override, keyword and, when opts.UseLLM is set, LLM tiers
// in order and returns the first match. Without a match the LLM result is
// returned so its usage is not lost.
func (c *Categorizer) Categorize(ctx context.Context, tx models.TransactionInput, opts MatchOptions) models.MatchResult {
	tiers := []CategorizationStrategy{c.override, c.keyword}
	if opts.UseLLM {
		tiers = append(tiers, c.ai)
	}

	var attempts StrategyResults
	for _, tier := range tiers {
		result := tier.Categorize(ctx, tx, opts)
		attempts.Add(tier.Name(), result)
		if result.IsMatched() {
			break
		}
	}

	final := attempts.Final()
	c.logger.Debug("Categorization finished",
		logging.Field{Key: logging.FieldMethod, Value: final.Method},
		logging.Field{Key: logging.FieldCategory, Value: final.CategoryName()},
		logging.Field{Key: "tiers", Value: attempts.Summary()})
	return final
}

// BatchOutcome holds one result per input transaction, in input order, plus
// the usage of every chunk call.
type BatchOutcome struct {
	Results    []models.MatchResult
	TokensUsed int
	Cost       decimal.Decimal
	Chunks     []ChunkUsage
}

// CategorizeBatch resolves every transaction locally first and sends only the
// unmatched ones to the completion API. LLM-submitted results carry their
// chunk's usage divided equally; results of failed chunks carry zero usage.
func (c *Categorizer) CategorizeBatch(ctx context.Context, txs []models.TransactionInput, opts MatchOptions) BatchOutcome {
	out := BatchOutcome{Results: make([]models.MatchResult, len(txs)), Cost: decimal.Zero}

	var unmatched []int
	for i, tx := range txs {
		result := c.override.Categorize(ctx, tx, opts)
		if !result.IsMatched() {
			result = c.keyword.Categorize(ctx, tx, opts)
		}
		out.Results[i] = result
		if !result.IsMatched() {
			unmatched = append(unmatched, i)
		}
	}

	if !opts.UseLLM || len(unmatched) == 0 {
		return out
	}

	subset := make([]models.TransactionInput, len(unmatched))
	for j, i := range unmatched {
		subset[j] = txs[i]
		out.Results[i] = models.NoMatch().WithUsage(0, decimal.Zero)
	}

	batch := c.batch.Match(ctx, subset, opts)
	out.TokensUsed = batch.TokensUsed
	out.Cost = batch.Cost

	for _, chunk := range batch.Chunks {
		remapped := chunk
		remapped.Indices = make([]int, len(chunk.Indices))
		tokens, cost := chunk.Share()

		for k, j := range chunk.Indices {
			original := unmatched[j]
			remapped.Indices[k] = original

			if match, ok := batch.Matches[j]; ok {
				category := match.Category
				confidence := match.Confidence
				out.Results[original] = models.MatchResult{
					Category:   &category,
					Method:     match.Method,
					Confidence: &confidence,
				}.WithUsage(tokens, cost)
				continue
			}
			out.Results[original] = models.NoMatch().WithUsage(tokens, cost)
		}
		out.Chunks = append(out.Chunks, remapped)
	}
	return out
}
