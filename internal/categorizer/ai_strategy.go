package categorizer

import (
	"context"
	"strings"

	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"

	"github.com/shopspring/decimal"
)

// AISettings configures completion calls.
type AISettings struct {
	Model       string
	Temperature float64
	// MaxTokens bounds the answer of a single-transaction call.
	MaxTokens int
	Retry     RetryPolicy
	Prices    PriceTable
}

func (s AISettings) estimate(resp CompletionResponse) decimal.Decimal {
	prices := s.Prices
	if prices == nil {
		prices = defaultPrices
	}
	return prices.Estimate(resp.PromptTokens, resp.CompletionTokens, s.Model)
}

// AIStrategy asks the completion API to pick one category for a transaction.
type AIStrategy struct {
	client   CompletionClient
	index    *CategoryIndex
	settings AISettings
	logger   logging.Logger
}

// NewAIStrategy creates a new AIStrategy instance. A nil client disables the tier.
func NewAIStrategy(client CompletionClient, index *CategoryIndex, settings AISettings, logger logging.Logger) *AIStrategy {
	return &AIStrategy{
		client:   client,
		index:    index,
		settings: settings,
		logger:   logging.OrNop(logger),
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *AIStrategy) Name() string {
	return "llm"
}

// Categorize never returns an error. When the tier is disabled or the call
// fails the result carries zero usage; when the call succeeded the actual
// usage is reported whether or not a category was recognized.
func (s *AIStrategy) Categorize(ctx context.Context, tx models.TransactionInput, opts MatchOptions) models.MatchResult {
	if s.client == nil {
		s.logger.Debug("No completion client configured, skipping LLM tier")
		return models.NoMatch().WithUsage(0, decimal.Zero)
	}

	direction := tx.Direction()
	candidates := s.index.Candidates(direction)
	if len(candidates) == 0 {
		s.logger.Debug("No candidate categories for direction",
			logging.Field{Key: logging.FieldReason, Value: string(direction)})
		return models.NoMatch().WithUsage(0, decimal.Zero)
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}

	req := CompletionRequest{
		Model:       s.settings.Model,
		Messages:    buildSinglePrompt(tx, names, opts),
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	}

	outcome := callWithRetry(ctx, s.client, req, s.settings.Retry, s.logger)
	if outcome.Status != callSucceeded {
		logCallFailure(s.logger, s.client.Provider(), outcome)
		return models.NoMatch().WithUsage(0, decimal.Zero)
	}

	tokens := outcome.Response.TotalTokens()
	cost := s.settings.estimate(outcome.Response)
	raw := strings.TrimSpace(outcome.Response.Text)
	answer := cleanAnswer(raw)

	if strings.EqualFold(answer, models.UnknownAnswer) {
		s.logger.Debug("Completion API found no fitting category",
			logging.Field{Key: logging.FieldTokens, Value: tokens})
		return models.NoMatch().WithUsage(tokens, cost)
	}

	for _, c := range candidates {
		if strings.EqualFold(c.Name, raw) || strings.EqualFold(c.Name, answer) {
			category := c
			s.logger.Debug("Transaction categorized by completion API",
				logging.Field{Key: logging.FieldCategory, Value: category.Name},
				logging.Field{Key: logging.FieldTokens, Value: tokens},
				logging.Field{Key: logging.FieldCost, Value: cost.String()})
			return models.MatchResult{Category: &category, Method: models.MethodLLM}.WithUsage(tokens, cost)
		}
	}

	s.logger.Warn("Completion API returned an unknown category",
		logging.Field{Key: logging.FieldCategory, Value: answer},
		logging.Field{Key: logging.FieldTokens, Value: tokens})
	return models.NoMatch().WithUsage(tokens, cost)
}

// cleanAnswer trims whitespace and the quotes or trailing period models
// sometimes add around a bare name.
func cleanAnswer(text string) string {
	answer := strings.TrimRight(strings.TrimSpace(text), ".")
	answer = strings.Trim(answer, "\"'`")
	return strings.TrimSpace(strings.TrimRight(answer, "."))
}
