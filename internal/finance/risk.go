package finance

// RiskLevel orders overdelivery risk from low to critical.
type RiskLevel int

// RiskLevel constants, ordered by severity.
const (
	// RiskLow indicates consumption well within the allocation.
	RiskLow RiskLevel = iota
	// RiskMedium indicates consumption worth watching.
	RiskMedium
	// RiskHigh indicates the allocation is likely to run out soon.
	RiskHigh
	// RiskCritical indicates the allocation is effectively exhausted.
	RiskCritical
)

// String returns the lowercase level name.
func (l RiskLevel) String() string {
	switch l {
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return "low"
	}
}

// ActionType names the follow-up recommended for a risk level. The
// literal values are part of the API; consumers switch exhaustively over
// them, so unused members stay valid.
type ActionType string

// ActionType constants.
const (
	// ActionNone recommends no follow-up.
	ActionNone ActionType = "none"
	// ActionCreditsTopup recommends purchasing additional credits.
	ActionCreditsTopup ActionType = "credits_topup"
	// ActionScopeReview recommends reviewing the engagement scope.
	ActionScopeReview ActionType = "scope_review"
	// ActionCapacityAdjustment is reserved; current rules never emit it.
	ActionCapacityAdjustment ActionType = "capacity_adjustment"
	// ActionLevelUpgrade is reserved; current rules never emit it.
	ActionLevelUpgrade ActionType = "level_upgrade"
)

// Risk factor phrasings surfaced to the dashboard.
const (
	factorNegativeProjection = "Projected balance is negative"
	factorBalanceBelow10     = "Balance below 10% of allocation"
	factorBalanceBelow20     = "Balance below 20% of allocation"
	factorBalanceBelow30     = "Balance below 30% of allocation"
	factorDepletedUnder5     = "Credits depleted in under 5 days"
	factorDepletedUnder10    = "Credits depleted in under 10 days"
	factorBurnSpike          = "Burn rate 50% above expected"
)

// RiskInput carries the forecast figures the classifier reads.
type RiskInput struct {
	BalancePercent    float64 // Remaining balance as a percentage of the allocation.
	ProjectedBalance  float64 // Projected balance at period end; may be negative.
	DaysUntilDepleted float64 // Valid only when Depletes is true.
	Depletes          bool    // Whether the balance depletes at the current rate.

	DailyRate         float64 // Observed daily burn.
	MonthlyAllocation float64 // Allocated credits for the period.
	DaysInPeriod      float64 // Length of the period in days.
}

// RiskAssessment is the classifier verdict.
type RiskAssessment struct {
	Level   RiskLevel  // Final risk level.
	Factors []string   // Human-readable reasons, most severe first.
	Action  ActionType // Recommended follow-up.
}

// burnSpikeMultiplier flags burn rates 50% above the flat-allocation pace.
const burnSpikeMultiplier = 1.5

// ClassifyRisk maps forecast figures onto an ordered risk level. Rules
// are evaluated from most to least severe and the first match wins; when
// both conditions of a rule hold, both factors are recorded. The burn
// spike check runs independently and only ever raises the level.
func ClassifyRisk(in RiskInput) RiskAssessment {
	level := RiskLow
	var factors []string

	depletesWithin := func(days float64) bool {
		return in.Depletes && in.DaysUntilDepleted < days
	}

	switch {
	case in.ProjectedBalance < 0:
		level = RiskCritical
		factors = append(factors, factorNegativeProjection)
	case in.BalancePercent < 10 || depletesWithin(5):
		level = RiskCritical
		if in.BalancePercent < 10 {
			factors = append(factors, factorBalanceBelow10)
		}
		if depletesWithin(5) {
			factors = append(factors, factorDepletedUnder5)
		}
	case in.BalancePercent < 20 || depletesWithin(10):
		level = RiskHigh
		if in.BalancePercent < 20 {
			factors = append(factors, factorBalanceBelow20)
		}
		if depletesWithin(10) {
			factors = append(factors, factorDepletedUnder10)
		}
	case in.BalancePercent < 30:
		level = RiskMedium
		factors = append(factors, factorBalanceBelow30)
	}

	if in.MonthlyAllocation > 0 && in.DaysInPeriod > 0 {
		expectedRate := in.MonthlyAllocation / in.DaysInPeriod
		if in.DailyRate > expectedRate*burnSpikeMultiplier {
			factors = append(factors, factorBurnSpike)
			if level < RiskMedium {
				level = RiskMedium
			}
		}
	}

	return RiskAssessment{
		Level:   level,
		Factors: factors,
		Action:  recommendedAction(level),
	}
}

// recommendedAction maps a final risk level to its follow-up action.
func recommendedAction(level RiskLevel) ActionType {
	switch level {
	case RiskCritical, RiskHigh:
		return ActionCreditsTopup
	case RiskMedium:
		return ActionScopeReview
	default:
		return ActionNone
	}
}
