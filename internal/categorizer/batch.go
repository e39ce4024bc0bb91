package categorizer

import (
	"context"

	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/textutils"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the largest number of transactions sent in one call.
const DefaultBatchSize = 50

// BatchSettings configures the batch matcher on top of AISettings.
type BatchSettings struct {
	AISettings
	// Size is the chunk size. Values below 1 mean DefaultBatchSize.
	Size int
	// Concurrency is the number of chunks in flight. Values below 1 mean 1.
	Concurrency int
	// ChunkMaxTokens bounds the answer of one chunk call.
	ChunkMaxTokens int
}

// BatchMatch is the category assigned to one input index.
type BatchMatch struct {
	Category   models.Category
	Confidence float64
	Method     models.MatchMethod
}

// ChunkUsage is the accounting for one chunk call. Indices refer to the
// input slice. A chunk whose call failed has Err set and zero usage.
type ChunkUsage struct {
	Indices          []int
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
	Err              error
}

// Size returns the number of transactions in the chunk.
func (c ChunkUsage) Size() int {
	return len(c.Indices)
}

// Tokens returns the total tokens used by the chunk call.
func (c ChunkUsage) Tokens() int {
	return c.PromptTokens + c.CompletionTokens
}

// Share returns the chunk usage divided equally between its transactions.
func (c ChunkUsage) Share() (int, decimal.Decimal) {
	if c.Size() == 0 {
		return 0, decimal.Zero
	}
	size := c.Size()
	return c.Tokens() / size, c.Cost.Div(decimal.NewFromInt(int64(size)))
}

// BatchResult maps input indices to categories. Indices without an entry
// need manual categorization.
type BatchResult struct {
	Matches    map[int]BatchMatch
	TokensUsed int
	Cost       decimal.Decimal
	Chunks     []ChunkUsage
}

// ChunkOf returns the chunk an input index was sent in.
func (r BatchResult) ChunkOf(index int) (ChunkUsage, bool) {
	for _, c := range r.Chunks {
		for _, i := range c.Indices {
			if i == index {
				return c, true
			}
		}
	}
	return ChunkUsage{}, false
}

// BatchMatcher categorizes many transactions with as few calls as possible.
type BatchMatcher struct {
	client   CompletionClient
	index    *CategoryIndex
	override *OverrideStrategy
	settings BatchSettings
	logger   logging.Logger
}

// NewBatchMatcher creates a batch matcher. A nil client disables the calls;
// overrides are still applied.
func NewBatchMatcher(client CompletionClient, index *CategoryIndex, settings BatchSettings, logger logging.Logger) *BatchMatcher {
	logger = logging.OrNop(logger)
	if settings.Size < 1 {
		settings.Size = DefaultBatchSize
	}
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	return &BatchMatcher{
		client:   client,
		index:    index,
		override: NewOverrideStrategy(index, logger),
		settings: settings,
		logger:   logger,
	}
}

// Match applies overrides to every transaction, then sends the rest to the
// completion API in chunks. A failing chunk is logged and contributes
// nothing; the other chunks are unaffected.
func (m *BatchMatcher) Match(ctx context.Context, txs []models.TransactionInput, opts MatchOptions) BatchResult {
	result := BatchResult{Matches: make(map[int]BatchMatch), Cost: decimal.Zero}

	rules := compileOverrides(opts.Overrides)
	pending := make([]int, 0, len(txs))
	for i, tx := range txs {
		if len(rules) > 0 {
			r := m.override.match(rules, textutils.Normalize(tx.Description), textutils.Normalize(tx.Merchant))
			if r.IsMatched() {
				result.Matches[i] = BatchMatch{Category: *r.Category, Confidence: r.ConfidenceValue(), Method: models.MethodOverride}
				continue
			}
		}
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return result
	}
	if m.client == nil {
		m.logger.Debug("No completion client configured, skipping batch LLM tier",
			logging.Field{Key: logging.FieldCount, Value: len(pending)})
		return result
	}

	expenseNames := m.index.Names(models.CategoryTypeExpense, models.CategoryTypeTransfer)
	incomeNames := m.index.Names(models.CategoryTypeIncome, models.CategoryTypeTransfer)
	if len(expenseNames) == 0 && len(incomeNames) == 0 {
		return result
	}

	chunks := splitChunks(pending, m.settings.Size)
	outcomes := make([]chunkOutcome, len(chunks))

	var g errgroup.Group
	g.SetLimit(m.settings.Concurrency)
	for n, indices := range chunks {
		g.Go(func() error {
			outcomes[n] = m.runChunk(ctx, n, indices, txs, expenseNames, incomeNames, opts)
			return nil
		})
	}
	_ = g.Wait()

	for n, outcome := range outcomes {
		result.Chunks = append(result.Chunks, outcome.usage)
		result.TokensUsed += outcome.usage.Tokens()
		result.Cost = result.Cost.Add(outcome.usage.Cost)
		m.apply(&result, n, outcome)
	}

	m.logger.Info("Batch categorization finished",
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: "matched", Value: len(result.Matches)},
		logging.Field{Key: "chunks", Value: len(result.Chunks)},
		logging.Field{Key: logging.FieldTokens, Value: result.TokensUsed},
		logging.Field{Key: logging.FieldCost, Value: result.Cost.String()})
	return result
}

type chunkOutcome struct {
	usage  ChunkUsage
	lines  []BatchLine
	issues []ParseIssue
}

// runChunk performs one chunk call. Retries stay inside the chunk.
func (m *BatchMatcher) runChunk(ctx context.Context, n int, indices []int, txs []models.TransactionInput, expenseNames, incomeNames []string, opts MatchOptions) chunkOutcome {
	items := make([]batchItem, len(indices))
	for local, global := range indices {
		items[local] = batchItem{Index: local, Tx: txs[global]}
	}

	req := CompletionRequest{
		Model:       m.settings.Model,
		Messages:    buildBatchPrompt(items, expenseNames, incomeNames, opts),
		Temperature: m.settings.Temperature,
		MaxTokens:   m.settings.ChunkMaxTokens,
	}

	out := chunkOutcome{usage: ChunkUsage{Indices: indices, Cost: decimal.Zero}}
	call := callWithRetry(ctx, m.client, req, m.settings.Retry, m.logger)
	if call.Status != callSucceeded {
		logCallFailure(m.logger, m.client.Provider(), call, logging.Field{Key: logging.FieldChunk, Value: n})
		out.usage.Err = call.Err
		return out
	}

	out.usage.PromptTokens = call.Response.PromptTokens
	out.usage.CompletionTokens = call.Response.CompletionTokens
	out.usage.Cost = m.settings.estimate(call.Response)
	out.lines, out.issues = ParseBatchResponse(call.Response.Text, len(indices))
	return out
}

// apply records the parsed lines of one chunk, mapping local indices back
// to input indices.
func (m *BatchMatcher) apply(result *BatchResult, n int, outcome chunkOutcome) {
	for _, issue := range outcome.issues {
		level := m.logger.Debug
		if issue.Reason == IssueOutOfRange {
			level = m.logger.Warn
		}
		level("Ignoring batch answer line",
			logging.Field{Key: logging.FieldChunk, Value: n},
			logging.Field{Key: logging.FieldReason, Value: issue.String()})
	}

	for _, line := range outcome.lines {
		category, ok := m.index.Lookup(line.Category)
		if !ok {
			m.logger.Warn("Completion API returned an unknown category",
				logging.Field{Key: logging.FieldChunk, Value: n},
				logging.Field{Key: logging.FieldIndex, Value: line.Index},
				logging.Field{Key: logging.FieldCategory, Value: line.Category})
			continue
		}
		global := outcome.usage.Indices[line.Index]
		result.Matches[global] = BatchMatch{Category: category, Confidence: line.Confidence, Method: models.MethodLLM}
	}
}

func splitChunks(indices []int, size int) [][]int {
	var chunks [][]int
	for start := 0; start < len(indices); start += size {
		end := start + size
		if end > len(indices) {
			end = len(indices)
		}
		chunks = append(chunks, indices[start:end])
	}
	return chunks
}
