package common

import (
	"fmt"
	"strings"

	"fjacquet/txcat/internal/currencyutils"
	"fjacquet/txcat/internal/models"
)

// TransactionRow is one line of a batch input file.
type TransactionRow struct {
	Description string `csv:"description"`
	Merchant    string `csv:"merchant"`
	Amount      string `csv:"amount"`
	Type        string `csv:"type"`
}

// ToInput converts the row. The amount must be signed; Type is only a hint.
func (r TransactionRow) ToInput() (models.TransactionInput, error) {
	amount, err := currencyutils.ParseAmount(r.Amount)
	if err != nil {
		return models.TransactionInput{}, err
	}
	return models.TransactionInput{
		Description: strings.TrimSpace(r.Description),
		Merchant:    strings.TrimSpace(r.Merchant),
		Amount:      amount,
		TypeHint:    r.Type,
	}, nil
}

// ResultRow is one line of a batch output file.
type ResultRow struct {
	Description string `csv:"description"`
	Merchant    string `csv:"merchant"`
	Amount      string `csv:"amount"`
	Category    string `csv:"category"`
	Method      string `csv:"method"`
	Confidence  string `csv:"confidence"`
	Keywords    string `csv:"keywords"`
	Tokens      int    `csv:"tokens"`
	Cost        string `csv:"cost_usd"`
}

// NewResultRow renders a match result next to the input it was computed for.
// Confidence is empty when the tier reports none.
func NewResultRow(input models.TransactionInput, result models.MatchResult) ResultRow {
	row := ResultRow{
		Description: input.Description,
		Merchant:    input.Merchant,
		Amount:      input.Amount.StringFixed(2),
		Category:    result.CategoryName(),
		Method:      string(result.Method),
		Keywords:    strings.Join(result.MatchedKeywords, " "),
		Tokens:      result.Tokens(),
		Cost:        result.Cost().StringFixed(6),
	}
	if result.Confidence != nil {
		row.Confidence = fmt.Sprintf("%.1f", *result.Confidence)
	}
	return row
}
