// Package currencyutils parses and formats the money amounts found in
// transaction exports.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarks = regexp.MustCompile(`(?i)(CHF|EUR|USD|GBP|JPY)|[€$£¥₣₤₧₹₺₽₩฿₫₲₴₸₼₪\s]`)

// ParseAmount parses a string representation of an amount into a decimal value.
// It handles formats like "1,234.56", "1.234,56", "CHF 1'234.56", "(12.50)"
// and "12.50-"; the last two are negative. An empty string is zero.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, nil
	}

	standardized := StandardizeAmount(amountStr)

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount converts various currency string formats to a standard format that can be parsed by decimal.NewFromString
func StandardizeAmount(amountStr string) string {
	amountStr = currencyMarks.ReplaceAllString(amountStr, "")

	negative := false
	if strings.HasPrefix(amountStr, "(") && strings.HasSuffix(amountStr, ")") {
		negative = true
		amountStr = amountStr[1 : len(amountStr)-1]
	} else if strings.HasSuffix(amountStr, "-") {
		negative = true
		amountStr = strings.TrimSuffix(amountStr, "-")
	}

	// Remove apostrophes used as thousand separators (1'234.56)
	amountStr = strings.NewReplacer("'", "", "’", "").Replace(amountStr)

	if strings.Contains(amountStr, ",") && strings.Contains(amountStr, ".") {
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			// European format (1.234,56)
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	} else if strings.Contains(amountStr, ",") {
		// A comma followed by at most two digits is a decimal separator.
		parts := strings.Split(amountStr, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			amountStr = strings.Replace(amountStr, ",", ".", 1)
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	}

	if negative && !strings.HasPrefix(amountStr, "-") {
		amountStr = "-" + amountStr
	}
	return amountStr
}

// FormatAmount formats a decimal amount with two decimal places and the
// given currency, e.g. "CHF 1234.56" or "€1234.56".
func FormatAmount(amount decimal.Decimal, currency string) string {
	formattedAmount := amount.StringFixed(2)

	switch strings.ToUpper(currency) {
	case "":
		return formattedAmount
	case "EUR":
		return "€" + formattedAmount
	case "USD":
		return "$" + formattedAmount
	case "GBP":
		return "£" + formattedAmount
	case "JPY":
		return "¥" + formattedAmount
	case "CHF":
		return "CHF " + formattedAmount
	default:
		return currency + " " + formattedAmount
	}
}

// FormatCost formats an estimated API cost in USD. Costs are small, so six
// decimal places are kept.
func FormatCost(cost decimal.Decimal) string {
	return "$" + cost.StringFixed(6)
}
