package finance

import "testing"

func TestClassifyRiskNegativeProjection(t *testing.T) {
	// allocation=100, balance=15, rate=4, 10 days remaining:
	// projected balance = 15 - 40 = -25.
	got := ClassifyRisk(RiskInput{
		BalancePercent:    15,
		ProjectedBalance:  -25,
		DaysUntilDepleted: 3.75,
		Depletes:          true,
		DailyRate:         4,
		MonthlyAllocation: 100,
		DaysInPeriod:      30,
	})
	if got.Level != RiskCritical {
		t.Fatalf("level = %s, want critical", got.Level)
	}
	if got.Action != ActionCreditsTopup {
		t.Fatalf("action = %s, want credits_topup", got.Action)
	}
	if len(got.Factors) == 0 || got.Factors[0] != factorNegativeProjection {
		t.Fatalf("unexpected factors: %v", got.Factors)
	}
}

func TestClassifyRiskRecordsBothCriticalFactors(t *testing.T) {
	got := ClassifyRisk(RiskInput{
		BalancePercent:    8,
		ProjectedBalance:  2,
		DaysUntilDepleted: 3,
		Depletes:          true,
	})
	if got.Level != RiskCritical {
		t.Fatalf("level = %s, want critical", got.Level)
	}
	if len(got.Factors) != 2 {
		t.Fatalf("expected both critical factors, got %v", got.Factors)
	}
}

func TestClassifyRiskLevels(t *testing.T) {
	cases := []struct {
		name string
		in   RiskInput
		want RiskLevel
	}{
		{"healthy", RiskInput{BalancePercent: 80, ProjectedBalance: 50}, RiskLow},
		{"medium balance", RiskInput{BalancePercent: 25, ProjectedBalance: 10}, RiskMedium},
		{"high balance", RiskInput{BalancePercent: 15, ProjectedBalance: 5}, RiskHigh},
		{"high depletion", RiskInput{BalancePercent: 50, ProjectedBalance: 5, Depletes: true, DaysUntilDepleted: 8}, RiskHigh},
		{"critical depletion", RiskInput{BalancePercent: 50, ProjectedBalance: 5, Depletes: true, DaysUntilDepleted: 4}, RiskCritical},
	}
	for _, tc := range cases {
		if got := ClassifyRisk(tc.in); got.Level != tc.want {
			t.Fatalf("%s: level = %s, want %s", tc.name, got.Level, tc.want)
		}
	}
}

func TestClassifyRiskMonotonicInBalancePercent(t *testing.T) {
	prev := RiskCritical
	for _, percent := range []float64{5, 15, 25, 50, 90} {
		got := ClassifyRisk(RiskInput{BalancePercent: percent, ProjectedBalance: 1})
		if got.Level > prev {
			t.Fatalf("risk increased as balance improved: %s at %v%% after %s", got.Level, percent, prev)
		}
		prev = got.Level
	}
}

func TestClassifyRiskBurnSpikeRaisesToMedium(t *testing.T) {
	// Flat pace for 90 credits over 30 days is 3/day; 5/day is a spike.
	got := ClassifyRisk(RiskInput{
		BalancePercent:    80,
		ProjectedBalance:  20,
		DailyRate:         5,
		MonthlyAllocation: 90,
		DaysInPeriod:      30,
	})
	if got.Level != RiskMedium {
		t.Fatalf("spike should raise low to medium, got %s", got.Level)
	}
	if got.Action != ActionScopeReview {
		t.Fatalf("action = %s, want scope_review", got.Action)
	}
	found := false
	for _, factor := range got.Factors {
		if factor == factorBurnSpike {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing burn spike factor: %v", got.Factors)
	}
}

func TestClassifyRiskBurnSpikeNeverDowngrades(t *testing.T) {
	got := ClassifyRisk(RiskInput{
		BalancePercent:    5,
		ProjectedBalance:  1,
		DailyRate:         10,
		MonthlyAllocation: 90,
		DaysInPeriod:      30,
	})
	if got.Level != RiskCritical {
		t.Fatalf("spike must not downgrade critical, got %s", got.Level)
	}
}

func TestRecommendedActionMapping(t *testing.T) {
	cases := map[RiskLevel]ActionType{
		RiskLow:      ActionNone,
		RiskMedium:   ActionScopeReview,
		RiskHigh:     ActionCreditsTopup,
		RiskCritical: ActionCreditsTopup,
	}
	for level, want := range cases {
		if got := recommendedAction(level); got != want {
			t.Fatalf("action for %s = %s, want %s", level, got, want)
		}
	}
}
