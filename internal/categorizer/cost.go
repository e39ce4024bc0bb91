package categorizer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ModelPrice is the USD price per one million tokens.
type ModelPrice struct {
	InputPerMillion  decimal.Decimal
	OutputPerMillion decimal.Decimal
}

// PriceTable maps model identifiers to prices.
type PriceTable map[string]ModelPrice

var million = decimal.NewFromInt(1_000_000)

func price(in, out string) ModelPrice {
	return ModelPrice{
		InputPerMillion:  decimal.RequireFromString(in),
		OutputPerMillion: decimal.RequireFromString(out),
	}
}

var defaultPrices = PriceTable{
	"gpt-4o-mini":      price("0.15", "0.60"),
	"gpt-4o":           price("2.50", "10.00"),
	"gpt-4-turbo":      price("10.00", "30.00"),
	"gpt-3.5-turbo":    price("0.50", "1.50"),
	"gemini-2.5-flash": price("0.30", "2.50"),
	"gemini-2.0-flash": price("0.10", "0.40"),
	"gemini-1.5-flash": price("0.075", "0.30"),
	"gemini-1.5-pro":   price("1.25", "5.00"),
}

// DefaultPriceTable returns a copy of the built-in price table.
func DefaultPriceTable() PriceTable {
	out := make(PriceTable, len(defaultPrices))
	for k, v := range defaultPrices {
		out[k] = v
	}
	return out
}

// Lookup finds the price of model. Case and a leading "models/" are ignored.
func (t PriceTable) Lookup(model string) (ModelPrice, bool) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(model)), "models/")
	p, ok := t[key]
	return p, ok
}

// Estimate returns the USD cost of a call. Unknown models cost zero.
func (t PriceTable) Estimate(inputTokens, outputTokens int, model string) decimal.Decimal {
	p, ok := t.Lookup(model)
	if !ok {
		return decimal.Zero
	}
	in := decimal.NewFromInt(int64(inputTokens)).Mul(p.InputPerMillion).Div(million)
	out := decimal.NewFromInt(int64(outputTokens)).Mul(p.OutputPerMillion).Div(million)
	return in.Add(out)
}

// EstimateCost prices a call with the built-in table.
func EstimateCost(inputTokens, outputTokens int, model string) decimal.Decimal {
	return defaultPrices.Estimate(inputTokens, outputTokens, model)
}
