package finance

import "fmt"

// CreditsToMoney prices a credit quantity in the target currency. The
// per-credit price is expressed in the base currency.
func CreditsToMoney(credits, pricePerCredit float64, currency string, rates RateTable) (float64, error) {
	if credits < 0 {
		return 0, fmt.Errorf("%w: negative credits", ErrInvalidPeriod)
	}
	return rates.Convert(credits*pricePerCredit, BaseCurrency, currency)
}

// MoneyToCredits converts a monetary amount back into credits. It fails
// when the per-credit price is zero, since the inverse is undefined.
func MoneyToCredits(amount, pricePerCredit float64, currency string, rates RateTable) (float64, error) {
	if pricePerCredit == 0 {
		return 0, fmt.Errorf("%w: price per credit", ErrDivisionByZero)
	}
	base, errConvert := rates.Convert(amount, currency, BaseCurrency)
	if errConvert != nil {
		return 0, errConvert
	}
	return base / pricePerCredit, nil
}

// DiscountVersusBaseline returns the discount percentage of a per-credit
// price against the baseline price. Prices at or above the baseline yield
// zero or a negative percentage.
func DiscountVersusBaseline(pricePerCredit, baselinePrice float64) float64 {
	if baselinePrice == 0 {
		return 0
	}
	return (baselinePrice - pricePerCredit) / baselinePrice * 100
}
