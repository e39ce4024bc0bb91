package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: "", expected: "0"},
		{input: "1234.56", expected: "1234.56"},
		{input: "-25.50", expected: "-25.5"},
		{input: "1,234.56", expected: "1234.56"},
		{input: "1.234,56", expected: "1234.56"},
		{input: "1234,56", expected: "1234.56"},
		{input: "1,234", expected: "1234"},
		{input: "CHF 1'234.50", expected: "1234.5"},
		{input: "chf -12.30", expected: "-12.3"},
		{input: "€1.234,56", expected: "1234.56"},
		{input: "$ 99", expected: "99"},
		{input: "(12.50)", expected: "-12.5"},
		{input: "12.50-", expected: "-12.5"},
		{input: "1 000,00", expected: "1000"},
		{input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	amount := decimal.RequireFromString("1234.5")
	assert.Equal(t, "1234.50", FormatAmount(amount, ""))
	assert.Equal(t, "€1234.50", FormatAmount(amount, "eur"))
	assert.Equal(t, "CHF 1234.50", FormatAmount(amount, "CHF"))
	assert.Equal(t, "SEK 1234.50", FormatAmount(amount, "SEK"))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.000027", FormatCost(decimal.RequireFromString("0.000027")))
	assert.Equal(t, "$0.000000", FormatCost(decimal.Zero))
}
