package finance

import (
	"sort"
	"time"
)

// TimeEntrySummary is the per-entry fact the aggregator folds. Entries
// arrive pre-validated from the data-access layer; the core never reads
// storage itself.
type TimeEntrySummary struct {
	Hours        float64 // Hours worked.
	Credits      float64 // Credits consumed.
	InternalCost float64 // Internal delivery cost in the base currency.
	Billable     bool    // Whether the work is billable.
}

// ConsumptionPeriod describes the reporting window the entries cover.
type ConsumptionPeriod struct {
	PeriodStart  time.Time // Period start date.
	PeriodEnd    time.Time // Period end date.
	DaysElapsed  float64   // Days elapsed within the period.
	DaysInPeriod float64   // Total days in the period.
}

// CustomerSummaryInput bundles everything needed to summarize one
// customer. Each call gets its own immutable input so parallel forecasts
// cannot cross-contaminate.
type CustomerSummaryInput struct {
	Key            string            // Caller-supplied customer/period key.
	Period         ConsumptionPeriod // Reporting window.
	Balance        float64           // Current credit balance.
	Allocation     float64           // Credit allocation for the period.
	PricePerCredit float64           // Price per credit in the base currency.
	Entries        []TimeEntrySummary
}

// CustomerFinancialSummary is the dashboard-ready result for one customer.
type CustomerFinancialSummary struct {
	Key           string
	TotalHours    float64
	BillableHours float64
	TotalCredits  float64
	TotalCost     float64
	Burn          BurnRate
	Risk          RiskAssessment
	Margin        MarginResult
}

// SummarizeCustomer folds time entries into totals and composes burn
// rate, risk, and margin in one pass. An empty entry sequence yields an
// all-zero summary at low risk with no recommended action.
func SummarizeCustomer(in CustomerSummaryInput) (CustomerFinancialSummary, error) {
	out := CustomerFinancialSummary{Key: in.Key}
	if len(in.Entries) == 0 {
		out.Risk = RiskAssessment{Level: RiskLow, Action: ActionNone}
		return out, nil
	}

	for _, entry := range in.Entries {
		out.TotalHours += entry.Hours
		out.TotalCredits += entry.Credits
		out.TotalCost += entry.InternalCost
		if entry.Billable {
			out.BillableHours += entry.Hours
		}
	}

	burn, errBurn := EstimateBurnRate(out.TotalCredits, in.Period.DaysElapsed, in.Period.DaysInPeriod, in.Balance)
	if errBurn != nil {
		return CustomerFinancialSummary{}, errBurn
	}
	out.Burn = burn

	out.Risk = ClassifyRisk(RiskInput{
		BalancePercent:    balancePercent(in.Balance, in.Allocation),
		ProjectedBalance:  burn.ProjectedBalance,
		DaysUntilDepleted: burn.DaysUntilDepleted,
		Depletes:          burn.Depletes,
		DailyRate:         burn.DailyRate,
		MonthlyAllocation: in.Allocation,
		DaysInPeriod:      in.Period.DaysInPeriod,
	})

	out.Margin = ComputeMargin(out.TotalCredits, in.PricePerCredit, out.TotalCost)
	return out, nil
}

// balancePercent expresses a balance as a percentage of the allocation.
// Customers without an allocation are treated as unconstrained.
func balancePercent(balance, allocation float64) float64 {
	if allocation <= 0 {
		return 100
	}
	return balance / allocation * 100
}

// TopByMargin returns the n summaries with the highest absolute margin.
// The sort is stable so ties preserve input order.
func TopByMargin(summaries []CustomerFinancialSummary, n int) []CustomerFinancialSummary {
	ranked := make([]CustomerFinancialSummary, len(summaries))
	copy(ranked, summaries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Margin.Margin > ranked[j].Margin.Margin
	})
	return clampHead(ranked, n)
}

// BottomByMarginPercent returns the n summaries with the lowest margin
// percentage. The sort is stable so ties preserve input order.
func BottomByMarginPercent(summaries []CustomerFinancialSummary, n int) []CustomerFinancialSummary {
	ranked := make([]CustomerFinancialSummary, len(summaries))
	copy(ranked, summaries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Margin.MarginPercent < ranked[j].Margin.MarginPercent
	})
	return clampHead(ranked, n)
}

// clampHead returns at most n leading elements.
func clampHead(summaries []CustomerFinancialSummary, n int) []CustomerFinancialSummary {
	if n < 0 {
		n = 0
	}
	if n > len(summaries) {
		n = len(summaries)
	}
	return summaries[:n]
}
