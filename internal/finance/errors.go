package finance

import "errors"

// Calculation errors raised by the finance core.
var (
	// ErrUnknownCurrency indicates a currency code absent from the rate table.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrDivisionByZero indicates a conversion with a zero per-credit price.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidPeriod indicates inconsistent or negative period inputs.
	ErrInvalidPeriod = errors.New("invalid period")
)
