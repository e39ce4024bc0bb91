package categorizer

import (
	"fmt"
	"strings"

	"fjacquet/txcat/internal/models"
)

const singleSystemPrompt = "You are a financial transaction categorizer. " +
	"You answer with exactly one category name taken from the list you are given, " +
	"or with UNKNOWN when none of them fits. Never add explanations."

const batchSystemPrompt = "You are a financial transaction categorizer. " +
	"You answer with one line per transaction in the format index|category_name|confidence_percent " +
	"and nothing else."

// buildSinglePrompt renders the messages for one transaction.
func buildSinglePrompt(tx models.TransactionInput, candidates []string, opts MatchOptions) []Message {
	var sb strings.Builder
	sb.WriteString("Categorize this transaction.\n\n")
	fmt.Fprintf(&sb, "Description: %s\n", orNone(tx.Description))
	fmt.Fprintf(&sb, "Merchant: %s\n", orNone(tx.Merchant))
	fmt.Fprintf(&sb, "Amount: %s\n", tx.AbsAmount().StringFixed(2))
	fmt.Fprintf(&sb, "Direction: %s\n", tx.Direction())
	if hint := tx.NormalizedTypeHint(); hint != "" {
		fmt.Fprintf(&sb, "Bank type: %s\n", hint)
	}

	sb.WriteString("\nCategories:\n")
	writeList(&sb, candidates)
	writeExamples(&sb, opts)

	fmt.Fprintf(&sb, "\nAnswer with exactly one category name from the list above, or %s if none fits.", models.UnknownAnswer)

	return []Message{
		{Role: RoleSystem, Content: singleSystemPrompt},
		{Role: RoleUser, Content: sb.String()},
	}
}

// batchItem is one transaction line in a batch prompt. Index is local to the chunk.
type batchItem struct {
	Index int
	Tx    models.TransactionInput
}

// buildBatchPrompt renders the messages for one chunk.
func buildBatchPrompt(items []batchItem, expenseNames, incomeNames []string, opts MatchOptions) []Message {
	var sb strings.Builder
	sb.WriteString("Categorize each transaction below. Each line is index|description|merchant|amount|DIRECTION.\n\n")
	sb.WriteString("Transactions:\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "%d|%s|%s|%s|%s\n",
			item.Index,
			sanitizeField(item.Tx.Description),
			sanitizeField(item.Tx.Merchant),
			item.Tx.AbsAmount().StringFixed(2),
			strings.ToUpper(string(item.Tx.Direction())),
		)
	}

	sb.WriteString("\nCategories for EXPENSE transactions:\n")
	writeList(&sb, expenseNames)
	sb.WriteString("\nCategories for INCOME transactions:\n")
	writeList(&sb, incomeNames)
	writeExamples(&sb, opts)

	sb.WriteString("\nAnswer with one line per transaction: index|category_name|confidence_percent\n")
	fmt.Fprintf(&sb, "Use index|%s|0 when no category fits. Use only exact category names from the lists above.", models.UnknownAnswer)

	return []Message{
		{Role: RoleSystem, Content: batchSystemPrompt},
		{Role: RoleUser, Content: sb.String()},
	}
}

func writeList(sb *strings.Builder, names []string) {
	if len(names) == 0 {
		sb.WriteString("(none)\n")
		return
	}
	for _, n := range names {
		fmt.Fprintf(sb, "- %s\n", n)
	}
}

// writeExamples appends confirmed overrides and free-text guidelines.
func writeExamples(sb *strings.Builder, opts MatchOptions) {
	if len(opts.Overrides) > 0 {
		sb.WriteString("\nPreviously confirmed categorizations:\n")
		for _, o := range opts.Overrides {
			fmt.Fprintf(sb, "- %s → %s\n", overridePattern(o), o.CategoryName)
		}
	}
	if len(opts.Guidelines) > 0 {
		sb.WriteString("\nGuidelines:\n")
		for _, g := range opts.Guidelines {
			if g = strings.TrimSpace(g); g != "" {
				fmt.Fprintf(sb, "- %s\n", g)
			}
		}
	}
}

func overridePattern(o models.UserOverride) string {
	desc := strings.TrimSpace(o.Description)
	merchant := strings.TrimSpace(o.Merchant)
	switch {
	case desc != "" && merchant != "":
		return desc + " / " + merchant
	case desc != "":
		return desc
	case merchant != "":
		return merchant
	}
	return "(any)"
}

// sanitizeField keeps user text from breaking the one-line-per-item format.
func sanitizeField(s string) string {
	s = strings.NewReplacer("|", "/", "\r", " ", "\n", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return strings.TrimSpace(s)
}
