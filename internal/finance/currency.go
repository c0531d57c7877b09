package finance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BaseCurrency is the currency all rates are expressed against.
const BaseCurrency = "EUR"

// RateTable maps a currency code to its rate, expressed as units of that
// currency per one unit of the base currency. The base currency always
// maps to 1.0 and every rate is strictly positive.
type RateTable map[string]float64

// DefaultRates returns the seed conversion table.
func DefaultRates() RateTable {
	return RateTable{
		"EUR": 1.0,
		"SEK": 11.30,
		"USD": 1.08,
		"NOK": 11.65,
		"DKK": 7.46,
		"GBP": 0.86,
	}
}

// Rate returns the rate for a currency code.
func (t RateTable) Rate(code string) (float64, error) {
	rate, ok := t[normalizeCurrency(code)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return rate, nil
}

// Convert translates an amount between two currencies in the table.
func (t RateTable) Convert(amount float64, from, to string) (float64, error) {
	fromRate, errFrom := t.Rate(from)
	if errFrom != nil {
		return 0, errFrom
	}
	toRate, errTo := t.Rate(to)
	if errTo != nil {
		return 0, errTo
	}
	return amount / fromRate * toRate, nil
}

// currencySymbol describes how a currency renders.
type currencySymbol struct {
	symbol string
	suffix bool
}

// currencySymbols maps known currency codes to display symbols. The
// Scandinavian krona currencies render as a suffix.
var currencySymbols = map[string]currencySymbol{
	"EUR": {symbol: "€"},
	"USD": {symbol: "$"},
	"GBP": {symbol: "£"},
	"SEK": {symbol: "kr", suffix: true},
	"NOK": {symbol: "kr", suffix: true},
	"DKK": {symbol: "kr", suffix: true},
}

// Format renders an integer-rounded amount with its currency symbol.
// Unknown currencies fall back to the raw ISO code as a suffix.
func Format(amount float64, code string) string {
	normalized := normalizeCurrency(code)
	rendered := strconv.FormatInt(int64(math.Round(amount)), 10)

	sym, ok := currencySymbols[normalized]
	if !ok {
		return rendered + " " + normalized
	}
	if sym.suffix {
		return rendered + " " + sym.symbol
	}
	return sym.symbol + rendered
}

// normalizeCurrency canonicalizes a currency code for lookups.
func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
