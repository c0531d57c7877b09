package finance

import "strings"

// PricingTier describes a named plan bundle.
type PricingTier struct {
	PlanID         string   // Plan identifier, lowercase.
	PricePerCredit float64  // Price per credit in the base currency.
	MonthlyCredits float64  // Monthly credit allocation.
	MonthlyPrice   float64  // Monthly list price in the base currency.
	Features       []string // Included feature names.
}

// Catalog resolves plan identifiers to pricing tiers. Lookups are
// case-insensitive; the tolerant path degrades to the baseline tier
// instead of erroring so callers always get a usable price.
type Catalog struct {
	baseline string
	tiers    map[string]PricingTier
}

// NewCatalog builds a catalog from tiers and a baseline plan identifier.
func NewCatalog(baseline string, tiers []PricingTier) *Catalog {
	index := make(map[string]PricingTier, len(tiers))
	for _, tier := range tiers {
		index[normalizePlanID(tier.PlanID)] = tier
	}
	return &Catalog{
		baseline: normalizePlanID(baseline),
		tiers:    index,
	}
}

// DefaultCatalog returns the seed plan catalog. Enterprise carries zero
// placeholder pricing; its terms are resolved out-of-band.
func DefaultCatalog() *Catalog {
	return NewCatalog("starter", []PricingTier{
		{
			PlanID:         "starter",
			PricePerCredit: 150,
			MonthlyCredits: 20,
			MonthlyPrice:   3000,
			Features:       []string{"time_tracking", "monthly_report"},
		},
		{
			PlanID:         "growth",
			PricePerCredit: 135,
			MonthlyCredits: 50,
			MonthlyPrice:   6750,
			Features:       []string{"time_tracking", "monthly_report", "forecasting"},
		},
		{
			PlanID:         "scale",
			PricePerCredit: 120,
			MonthlyCredits: 100,
			MonthlyPrice:   12000,
			Features:       []string{"time_tracking", "monthly_report", "forecasting", "capacity_planning"},
		},
		{
			PlanID:         "enterprise",
			PricePerCredit: 0,
			MonthlyCredits: 0,
			MonthlyPrice:   0,
			Features:       []string{"time_tracking", "monthly_report", "forecasting", "capacity_planning", "dedicated_support"},
		},
	})
}

// Tier returns the tier for a plan identifier without falling back.
func (c *Catalog) Tier(planID string) (PricingTier, bool) {
	tier, ok := c.tiers[normalizePlanID(planID)]
	return tier, ok
}

// Baseline returns the designated baseline tier.
func (c *Catalog) Baseline() PricingTier {
	return c.tiers[c.baseline]
}

// ResolvePricePerCredit returns the per-credit price for a plan,
// degrading to the baseline tier price for unrecognized identifiers.
func (c *Catalog) ResolvePricePerCredit(planID string) float64 {
	if tier, ok := c.Tier(planID); ok {
		return tier.PricePerCredit
	}
	return c.Baseline().PricePerCredit
}

// Tiers returns all tiers in no particular order.
func (c *Catalog) Tiers() []PricingTier {
	out := make([]PricingTier, 0, len(c.tiers))
	for _, tier := range c.tiers {
		out = append(out, tier)
	}
	return out
}

// normalizePlanID canonicalizes a plan identifier for lookups.
func normalizePlanID(planID string) string {
	return strings.ToLower(strings.TrimSpace(planID))
}
