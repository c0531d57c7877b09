package finance

// MarginResult breaks revenue down against internal delivery cost. All
// amounts are in the base currency.
type MarginResult struct {
	Revenue       float64 // Credits consumed times price per credit.
	Cost          float64 // Internal delivery cost.
	Margin        float64 // Revenue minus cost; may be negative.
	MarginPercent float64 // Margin as a percentage of revenue.
}

// ComputeMargin derives gross margin from consumption and cost figures.
// Zero revenue reports a zero margin percentage rather than NaN.
func ComputeMargin(creditsConsumed, pricePerCredit, internalCost float64) MarginResult {
	revenue := creditsConsumed * pricePerCredit
	margin := revenue - internalCost

	marginPercent := 0.0
	if revenue > 0 {
		marginPercent = margin / revenue * 100
	}

	return MarginResult{
		Revenue:       revenue,
		Cost:          internalCost,
		Margin:        margin,
		MarginPercent: marginPercent,
	}
}
