// Package batch handles batch categorization of CSV files
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fjacquet/txcat/cmd/root"
	"fjacquet/txcat/internal/categorizer"
	"fjacquet/txcat/internal/common"
	"fjacquet/txcat/internal/currencyutils"
	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"

	"github.com/spf13/cobra"
)

var (
	inputFile  string
	outputFile string
	useLLM     bool
	delimiter  string
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch categorize transactions from a CSV file",
	Long: `Batch categorize transactions from a CSV file and write the results to another file.

The input needs the columns description, merchant, amount and type. Rows that
overrides and keywords cannot resolve are sent to the completion API in chunks
when --llm is set; each of them carries an equal share of its chunk's tokens
and cost.

Example:
  txcat batch -i transactions.csv -o results.csv --llm`,
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input CSV file (required)")
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output CSV file (required)")
	Cmd.Flags().BoolVar(&useLLM, "llm", false, "Send unresolved transactions to the completion API")
	Cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Output CSV delimiter")
	_ = Cmd.MarkFlagRequired("input")
	_ = Cmd.MarkFlagRequired("output")
}

func batchFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}
	logger := c.GetLogger()

	delim := []rune(delimiter)
	if len(delim) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	rows, err := common.ReadCSVFile[common.TransactionRow](inputFile, logger)
	if err != nil {
		return err
	}
	inputs, err := toInputs(rows)
	if err != nil {
		return err
	}

	session, err := c.NewSession()
	if err != nil {
		return err
	}
	opts, err := c.MatchOptions(useLLM)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	outcome := session.CategorizeBatch(ctx, inputs, opts)
	logFailedChunks(logger, outcome.Chunks)

	stats := models.NewCategorizationStats()
	results := make([]common.ResultRow, len(inputs))
	for i, input := range inputs {
		stats.Record(outcome.Results[i])
		results[i] = common.NewResultRow(input, outcome.Results[i])
	}
	stats.AddUsage(outcome.TokensUsed, outcome.Cost)

	if err := common.WriteCSVFile(results, outputFile, delim[0], logger); err != nil {
		return err
	}

	stats.LogSummary(logger, inputFile)
	printSummary(cmd.OutOrStdout(), stats)
	return nil
}

func toInputs(rows []common.TransactionRow) ([]models.TransactionInput, error) {
	inputs := make([]models.TransactionInput, len(rows))
	for i, row := range rows {
		input, err := row.ToInput()
		if err != nil {
			// +2: header line and 1-based numbering
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		inputs[i] = input
	}
	return inputs, nil
}

func logFailedChunks(logger logging.Logger, chunks []categorizer.ChunkUsage) {
	for n, chunk := range chunks {
		if chunk.Err == nil {
			continue
		}
		logger.WithError(chunk.Err).Warn("Chunk left uncategorized",
			logging.Field{Key: logging.FieldChunk, Value: n},
			logging.Field{Key: logging.FieldCount, Value: chunk.Size()})
	}
}

func printSummary(w io.Writer, stats *models.CategorizationStats) {
	_, _ = fmt.Fprintf(w, "Categorized %d of %d transactions (%.1f%%)\n", stats.Matched(), stats.Total, stats.GetSuccessRate())
	_, _ = fmt.Fprintf(w, "  override: %d, deterministic: %d, llm: %d, none: %d\n",
		stats.Override, stats.Deterministic, stats.LLM, stats.Uncategorized)
	if stats.TokensUsed > 0 {
		_, _ = fmt.Fprintf(w, "  tokens: %d, cost: %s\n", stats.TokensUsed, currencyutils.FormatCost(stats.Cost))
	}
}
