package finance

import "fmt"

// BurnRate projects credit consumption for the rest of a reporting period.
type BurnRate struct {
	DailyRate        float64 // Observed credits consumed per elapsed day.
	ProjectedTotal   float64 // Projected consumption for the full period.
	ProjectedBalance float64 // Balance expected at period end; may be negative.
	DaysRemaining    float64 // Days left in the period.

	// DaysUntilDepleted is only meaningful when Depletes is true. A zero
	// daily rate never depletes, which callers must treat as "never"
	// rather than a numeric value.
	DaysUntilDepleted float64
	Depletes          bool
}

// EstimateBurnRate extrapolates consumption linearly from the observed
// burn. Zero elapsed days is not an error: with no data yet, the observed
// rate is defined as zero. Rounding is left to presentation.
func EstimateBurnRate(consumed, daysElapsed, daysInPeriod, balance float64) (BurnRate, error) {
	if consumed < 0 {
		return BurnRate{}, fmt.Errorf("%w: negative consumption", ErrInvalidPeriod)
	}
	if daysElapsed < 0 {
		return BurnRate{}, fmt.Errorf("%w: negative elapsed days", ErrInvalidPeriod)
	}
	if daysInPeriod <= 0 {
		return BurnRate{}, fmt.Errorf("%w: period length must be positive", ErrInvalidPeriod)
	}
	if daysElapsed > daysInPeriod {
		return BurnRate{}, fmt.Errorf("%w: elapsed days %.2f exceed period length %.2f", ErrInvalidPeriod, daysElapsed, daysInPeriod)
	}

	dailyRate := 0.0
	if daysElapsed > 0 {
		dailyRate = consumed / daysElapsed
	}
	daysRemaining := daysInPeriod - daysElapsed

	out := BurnRate{
		DailyRate:        dailyRate,
		ProjectedTotal:   dailyRate * daysInPeriod,
		ProjectedBalance: balance - dailyRate*daysRemaining,
		DaysRemaining:    daysRemaining,
	}
	if dailyRate > 0 {
		out.DaysUntilDepleted = balance / dailyRate
		out.Depletes = true
	}
	return out, nil
}
