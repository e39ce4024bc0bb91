package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/txcat/cmd/root"
	"fjacquet/txcat/internal/categorizer"
	"fjacquet/txcat/internal/config"
	"fjacquet/txcat/internal/container"
	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	text  string
	err   error
	calls int
}

func (s *scriptedClient) Complete(_ context.Context, _ categorizer.CompletionRequest) (categorizer.CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return categorizer.CompletionResponse{}, s.err
	}
	return categorizer.CompletionResponse{Text: s.text, PromptTokens: 100, CompletionTokens: 20}, nil
}

func (s *scriptedClient) Provider() string { return "test" }

const input = `description,merchant,amount,type
TESCO SUPERMARKET,,-25.50,debit
Night bus,,-3.00,
Mystery,,-9.99,
ACME,Corner Shop,-4.20,
`

func setup(t *testing.T, client categorizer.CompletionClient) (string, *logging.MockLogger) {
	t.Helper()

	s := &store.MockCategoryStore{
		Categories: []models.Category{
			{Name: "Groceries", Type: models.CategoryTypeExpense},
			{Name: "Transport", Type: models.CategoryTypeExpense},
			{Name: "Salary", Type: models.CategoryTypeIncome},
		},
		Overrides: []models.UserOverride{{Merchant: "Corner Shop", CategoryName: "Groceries"}},
	}
	logger := logging.NewMockLogger()

	cfg := &config.Config{}
	cfg.Categorization.MinConfidence = 30
	cfg.AI.Model = "gpt-4o-mini"
	cfg.AI.MaxRetries = 1
	cfg.AI.BatchSize = 10
	cfg.AI.BatchConcurrency = 1
	cfg.AI.BatchMaxTokens = 500

	c, err := container.NewContainer(cfg,
		container.WithLogger(logger),
		container.WithStore(s),
		container.WithCompletionClient(client))
	require.NoError(t, err)
	root.SetContainer(c)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in.csv"), []byte(input), 0600))

	t.Cleanup(func() {
		root.SetContainer(nil)
		inputFile, outputFile, delimiter = "", "", ","
		useLLM = false
	})
	return dir, logger
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetArgs(args)
	err := Cmd.Execute()
	return out.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestBatchCommand_Metadata(t *testing.T) {
	assert.Equal(t, "batch", Cmd.Use)
	assert.Contains(t, Cmd.Short, "Batch categorize")
	assert.Contains(t, Cmd.Long, "Example")
	assert.Equal(t, "i", Cmd.Flags().Lookup("input").Shorthand)
	assert.Equal(t, "o", Cmd.Flags().Lookup("output").Shorthand)
	assert.Equal(t, ",", Cmd.Flags().Lookup("delimiter").DefValue)
}

func TestBatch_LocalOnly(t *testing.T) {
	dir, logger := setup(t, nil)
	out := filepath.Join(dir, "out.csv")

	stdout, err := run(t, "-i", filepath.Join(dir, "in.csv"), "-o", out)
	require.NoError(t, err)

	lines := readLines(t, out)
	require.Len(t, lines, 5)
	assert.Equal(t, "description,merchant,amount,category,method,confidence,keywords,tokens,cost_usd", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "TESCO SUPERMARKET,,"))
	assert.Contains(t, lines[1], ",Groceries,deterministic,33.3,supermarket tesco,0,0.000000")
	assert.Contains(t, lines[2], ",,none,,,0,0.000000")
	assert.Contains(t, lines[4], ",Groceries,override,")

	assert.Contains(t, stdout, "Categorized 2 of 4 transactions (50.0%)")
	assert.Contains(t, stdout, "override: 1, deterministic: 1, llm: 0, none: 2")
	assert.NotContains(t, stdout, "tokens:")
	assert.True(t, logger.HasEntry("INFO", "Categorization summary"))
}

func TestBatch_WithLLM(t *testing.T) {
	client := &scriptedClient{text: "0|Transport|80\n1|UNKNOWN|0"}
	dir, _ := setup(t, client)
	out := filepath.Join(dir, "out.csv")

	stdout, err := run(t, "-i", filepath.Join(dir, "in.csv"), "-o", out, "--llm", "--delimiter", ";")
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)

	lines := readLines(t, out)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "description;merchant;amount;category")
	assert.Contains(t, lines[2], ";Transport;llm;80.0;;60;")
	assert.Contains(t, lines[3], ";;none;;;60;")

	assert.Contains(t, stdout, "llm: 1, none: 1")
	assert.Contains(t, stdout, "tokens: 120, cost: $")
}

func TestBatch_FailedChunk(t *testing.T) {
	client := &scriptedClient{err: errors.New("boom")}
	dir, logger := setup(t, client)
	out := filepath.Join(dir, "out.csv")

	stdout, err := run(t, "-i", filepath.Join(dir, "in.csv"), "-o", out, "--llm")
	require.NoError(t, err)
	assert.Contains(t, stdout, "none: 2")
	assert.True(t, logger.HasEntry("WARN", "Chunk left uncategorized"))
}

func TestBatch_Errors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		dir, _ := setup(t, nil)
		_, err := run(t, "-i", filepath.Join(dir, "nope.csv"), "-o", filepath.Join(dir, "out.csv"))
		assert.ErrorContains(t, err, "error opening CSV file")
	})

	t.Run("bad amount", func(t *testing.T) {
		dir, _ := setup(t, nil)
		bad := filepath.Join(dir, "bad.csv")
		require.NoError(t, os.WriteFile(bad, []byte("description,merchant,amount,type\nok,,-1,\nx,,abc,\n"), 0600))
		_, err := run(t, "-i", bad, "-o", filepath.Join(dir, "out.csv"))
		assert.ErrorContains(t, err, "line 3:")
	})

	t.Run("bad delimiter", func(t *testing.T) {
		dir, _ := setup(t, nil)
		_, err := run(t, "-i", filepath.Join(dir, "in.csv"), "-o", filepath.Join(dir, "out.csv"), "--delimiter", ";;")
		assert.ErrorContains(t, err, "delimiter must be a single character")
	})
}
