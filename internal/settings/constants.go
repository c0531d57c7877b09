package settings

// DB config keys and defaults.
const (
	// SiteNameKey is the DB config key for the portal display name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback portal display name.
	DefaultSiteName = "PartnerOps"
	// DefaultCurrencyKey selects the reporting currency for new customers.
	DefaultCurrencyKey = "DEFAULT_CURRENCY"
	// DefaultCurrency is the fallback reporting currency.
	DefaultCurrency = "EUR"
	// BaselinePlanKey selects the plan unknown identifiers degrade to.
	BaselinePlanKey = "BASELINE_PLAN"
	// DefaultBaselinePlan is the fallback baseline plan.
	DefaultBaselinePlan = "starter"
	// ForecastCacheTTLSecondsKey controls the forecast cache lifetime.
	ForecastCacheTTLSecondsKey = "FORECAST_CACHE_TTL_SECONDS"
	// DefaultForecastCacheTTLSeconds is the fallback cache lifetime.
	DefaultForecastCacheTTLSeconds = 300
)
