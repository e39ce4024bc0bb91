// Package categorize handles the single transaction categorization command
package categorize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/txcat/cmd/root"
	"fjacquet/txcat/internal/container"
	"fjacquet/txcat/internal/currencyutils"
	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/store"

	"github.com/spf13/cobra"
)

var (
	description string
	merchant    string
	amount      string
	typeHint    string
	useLLM      bool
	learn       bool
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize a single transaction",
	Long: `Categorize a single transaction from its description, merchant and signed amount.

Negative amounts are expenses and positive amounts are income. With --llm the
completion API is asked when overrides and keywords cannot decide, and --learn
stores its answer as a new override.

Example:
  txcat categorize --description "TESCO STORES 2041" --amount -23.40 --llm`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Transaction description")
	Cmd.Flags().StringVarP(&merchant, "merchant", "m", "", "Merchant or counterparty name")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "0", "Signed transaction amount (negative for expenses)")
	Cmd.Flags().StringVarP(&typeHint, "type", "t", "", "Bank transaction type hint (debit or credit)")
	Cmd.Flags().BoolVar(&useLLM, "llm", false, "Ask the completion API when local tiers cannot decide")
	Cmd.Flags().BoolVar(&learn, "learn", false, "Save an LLM answer as a user override")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}
	logger := c.GetLogger()

	if strings.TrimSpace(description) == "" && strings.TrimSpace(merchant) == "" {
		return errors.New("a description or a merchant is required")
	}

	value, err := currencyutils.ParseAmount(amount)
	if err != nil {
		return err
	}
	input := models.TransactionInput{
		Description: description,
		Merchant:    merchant,
		Amount:      value,
		TypeHint:    typeHint,
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
	result := session.Categorize(ctx, input, opts)
	printResult(cmd.OutOrStdout(), result)

	if learn {
		return learnOverride(c, input, result, logger)
	}
	return nil
}

func printResult(w io.Writer, result models.MatchResult) {
	category := result.CategoryName()
	if category == "" {
		category = "(uncategorized)"
	}
	_, _ = fmt.Fprintf(w, "Category:   %s\n", category)
	_, _ = fmt.Fprintf(w, "Method:     %s\n", result.Method)
	if result.Confidence != nil {
		_, _ = fmt.Fprintf(w, "Confidence: %.1f\n", *result.Confidence)
	}
	if len(result.MatchedKeywords) > 0 {
		_, _ = fmt.Fprintf(w, "Keywords:   %s\n", strings.Join(result.MatchedKeywords, ", "))
	}
	if result.TokensUsed != nil {
		_, _ = fmt.Fprintf(w, "Tokens:     %d\n", result.Tokens())
		_, _ = fmt.Fprintf(w, "Cost:       %s\n", currencyutils.FormatCost(result.Cost()))
	}
}

// learnOverride records an LLM answer. Local decisions are already
// reproducible and are not stored.
func learnOverride(c *container.Container, input models.TransactionInput, result models.MatchResult, logger logging.Logger) error {
	if result.Method != models.MethodLLM || !result.IsMatched() {
		logger.Info("Nothing to learn: result did not come from the completion API",
			logging.Field{Key: logging.FieldMethod, Value: result.Method})
		return nil
	}

	s := c.GetStore()
	overrides, err := s.LoadOverrides()
	if err != nil {
		return fmt.Errorf("failed to load overrides: %w", err)
	}

	rule := models.UserOverride{
		Description:  strings.TrimSpace(input.Description),
		Merchant:     strings.TrimSpace(input.Merchant),
		CategoryName: result.CategoryName(),
	}
	overrides, replaced := store.UpsertOverride(overrides, rule)
	if err := s.SaveOverrides(overrides); err != nil {
		return fmt.Errorf("failed to save overrides: %w", err)
	}

	logger.Info("Saved override",
		logging.Field{Key: logging.FieldCategory, Value: rule.CategoryName},
		logging.Field{Key: "replaced", Value: replaced})
	return nil
}
