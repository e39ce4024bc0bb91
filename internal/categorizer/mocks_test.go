package categorizer

import (
	"context"
	"sync"
	"testing"
	"time"

	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/rules"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// MockCompletionClient records requests and answers with CompleteFunc.
type MockCompletionClient struct {
	CompleteFunc func(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	mu       sync.Mutex
	requests []CompletionRequest
}

func (m *MockCompletionClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.CompleteFunc == nil {
		return CompletionResponse{Text: models.UnknownAnswer}, nil
	}
	return m.CompleteFunc(ctx, req)
}

func (m *MockCompletionClient) Provider() string { return "mock" }

func (m *MockCompletionClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockCompletionClient) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// answer returns a client that always replies with text and usage.
func answer(text string, promptTokens, completionTokens int) *MockCompletionClient {
	return &MockCompletionClient{
		CompleteFunc: func(context.Context, CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{Text: text, PromptTokens: promptTokens, CompletionTokens: completionTokens}, nil
		},
	}
}

// MockCategoryStore serves fixed data.
type MockCategoryStore struct {
	Categories []models.Category
	Table      *rules.Table
	Overrides  []models.UserOverride
	Guidelines []string
	Err        error
	Saved      [][]models.UserOverride
}

func (m *MockCategoryStore) LoadCategories() ([]models.Category, error) { return m.Categories, m.Err }
func (m *MockCategoryStore) LoadKeywordRules() (*rules.Table, error)    { return m.Table, m.Err }
func (m *MockCategoryStore) LoadOverrides() ([]models.UserOverride, error) {
	return m.Overrides, m.Err
}
func (m *MockCategoryStore) LoadGuidelines() ([]string, error) { return m.Guidelines, m.Err }
func (m *MockCategoryStore) SaveOverrides(overrides []models.UserOverride) error {
	m.Saved = append(m.Saved, overrides)
	return m.Err
}

func testCategories() []models.Category {
	return []models.Category{
		{ID: "1", Name: "Groceries", Type: models.CategoryTypeExpense},
		{ID: "2", Name: "Household", Type: models.CategoryTypeExpense},
		{ID: "3", Name: "Transport", Type: models.CategoryTypeExpense},
		{ID: "4", Name: "Salary", Type: models.CategoryTypeIncome},
		{ID: "5", Name: "Refunds", Type: models.CategoryTypeIncome},
		{ID: "6", Name: "transfer", Type: models.CategoryTypeTransfer},
	}
}

func testTable(t testing.TB) *rules.Table {
	t.Helper()
	table, err := rules.New([]rules.Rule{
		{Category: "Groceries", Type: models.CategoryTypeExpense, Keywords: []string{"supermarket", "tesco", "grocery", "migros", "coop", "lidl"}},
		{Category: "Transport", Type: models.CategoryTypeExpense, Keywords: []string{"uber", "taxi", "railway"}},
		{Category: "Salary", Type: models.CategoryTypeIncome, Keywords: []string{"salary", "payroll"}},
		{Category: "Refunds", Type: models.CategoryTypeIncome, Keywords: []string{"refund", "tesco"}},
	})
	require.NoError(t, err)
	return table
}

func testIndex(t testing.TB) *CategoryIndex {
	t.Helper()
	index, err := NewCategoryIndex(testCategories())
	require.NoError(t, err)
	return index
}

func tx(description, merchant, amount string) models.TransactionInput {
	return models.TransactionInput{
		Description: description,
		Merchant:    merchant,
		Amount:      decimal.RequireFromString(amount),
	}
}

// fastRetry keeps retry tests quick.
var fastRetry = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
