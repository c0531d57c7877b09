package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nordiqa/partnerops/internal/finance"
	"github.com/nordiqa/partnerops/internal/models"
	"github.com/nordiqa/partnerops/internal/settings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CustomerForecast is the dashboard payload for one customer period.
type CustomerForecast struct {
	CustomerID   uint64    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	PlanID       string    `json:"plan_id"`
	Currency     string    `json:"currency"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	DaysElapsed  float64   `json:"days_elapsed"`
	DaysInPeriod float64   `json:"days_in_period"`

	Balance    float64 `json:"balance"`
	Allocation float64 `json:"allocation"`

	TotalHours    float64 `json:"total_hours"`
	BillableHours float64 `json:"billable_hours"`
	TotalCredits  float64 `json:"total_credits"`

	DailyRate        float64 `json:"daily_rate"`
	ProjectedTotal   float64 `json:"projected_total"`
	ProjectedBalance float64 `json:"projected_balance"`
	// DaysUntilDepleted is nil when the balance never depletes at the
	// current rate.
	DaysUntilDepleted *float64 `json:"days_until_depleted,omitempty"`

	RiskLevel   string   `json:"risk_level"`
	RiskFactors []string `json:"risk_factors"`
	Action      string   `json:"action"`

	Revenue          float64 `json:"revenue"`
	Cost             float64 `json:"cost"`
	Margin           float64 `json:"margin"`
	MarginPercent    float64 `json:"margin_percent"`
	FormattedRevenue string  `json:"formatted_revenue"`
	FormattedMargin  string  `json:"formatted_margin"`
}

// Listing is one row of a portfolio ranking.
type Listing struct {
	CustomerID    uint64  `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	Margin        float64 `json:"margin"`
	MarginPercent float64 `json:"margin_percent"`
	RiskLevel     string  `json:"risk_level"`
}

// PortfolioSummary aggregates forecasts across all active customers.
type PortfolioSummary struct {
	Customers    int            `json:"customers"`
	RiskCounts   map[string]int `json:"risk_counts"`
	TotalRevenue float64        `json:"total_revenue"`
	TotalCost    float64        `json:"total_cost"`
	TotalMargin  float64        `json:"total_margin"`

	TopByMargin           []Listing `json:"top_by_margin"`
	BottomByMarginPercent []Listing `json:"bottom_by_margin_percent"`
}

// Service computes and caches customer forecasts.
type Service struct {
	db      *gorm.DB
	cache   *redis.Client
	catalog *finance.Catalog
	rates   finance.RateTable
}

// NewService constructs a forecast service. The cache client may be nil,
// in which case every call recomputes.
func NewService(db *gorm.DB, cache *redis.Client) *Service {
	return &Service{
		db:      db,
		cache:   cache,
		catalog: finance.DefaultCatalog(),
		rates:   finance.DefaultRates(),
	}
}

// cacheKey namespaces forecast cache entries per customer.
func cacheKey(customerID uint64) string {
	return fmt.Sprintf("forecast:customer:%d", customerID)
}

// ForecastCustomer returns the current forecast for a customer, serving
// from the cache when possible and persisting a snapshot on recompute.
func (s *Service) ForecastCustomer(ctx context.Context, customerID uint64) (*CustomerForecast, error) {
	if cached := s.cacheGet(ctx, customerID); cached != nil {
		return cached, nil
	}

	var customer models.Customer
	if errFind := s.db.WithContext(ctx).First(&customer, customerID).Error; errFind != nil {
		return nil, errFind
	}

	result, errCompute := s.compute(ctx, customer, time.Now().UTC())
	if errCompute != nil {
		return nil, errCompute
	}

	if errSnapshot := s.persistSnapshot(ctx, result); errSnapshot != nil {
		log.WithError(errSnapshot).Warn("forecast: failed to persist snapshot")
	}
	s.cacheSet(ctx, result)
	return result, nil
}

// Invalidate drops the cached forecast for a customer. Called after new
// consumption is recorded so dashboards pick it up immediately.
func (s *Service) Invalidate(ctx context.Context, customerID uint64) {
	if s.cache == nil {
		return
	}
	if errDel := s.cache.Del(ctx, cacheKey(customerID)).Err(); errDel != nil {
		log.WithError(errDel).Warn("forecast: cache invalidate failed")
	}
}

// Portfolio computes forecasts for every active customer and aggregates
// them into a portfolio view with top and bottom rankings.
func (s *Service) Portfolio(ctx context.Context, listSize int) (*PortfolioSummary, error) {
	var customers []models.Customer
	if errFind := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&customers).Error; errFind != nil {
		return nil, errFind
	}

	now := time.Now().UTC()
	out := &PortfolioSummary{
		Customers:  len(customers),
		RiskCounts: map[string]int{},
	}

	forecasts := make(map[string]*CustomerForecast, len(customers))
	summaries := make([]finance.CustomerFinancialSummary, 0, len(customers))
	for _, customer := range customers {
		result, errCompute := s.compute(ctx, customer, now)
		if errCompute != nil {
			return nil, errCompute
		}

		out.RiskCounts[result.RiskLevel]++
		out.TotalRevenue += result.Revenue
		out.TotalCost += result.Cost
		out.TotalMargin += result.Margin

		key := fmt.Sprintf("%d", customer.ID)
		forecasts[key] = result
		summaries = append(summaries, finance.CustomerFinancialSummary{
			Key:    key,
			Margin: finance.MarginResult{Margin: result.Margin, MarginPercent: result.MarginPercent},
		})
	}

	out.TopByMargin = toListings(finance.TopByMargin(summaries, listSize), forecasts)
	out.BottomByMarginPercent = toListings(finance.BottomByMarginPercent(summaries, listSize), forecasts)
	return out, nil
}

// toListings maps ranked summaries back onto portfolio listing rows.
func toListings(ranked []finance.CustomerFinancialSummary, forecasts map[string]*CustomerForecast) []Listing {
	out := make([]Listing, 0, len(ranked))
	for _, summary := range ranked {
		forecast, ok := forecasts[summary.Key]
		if !ok {
			continue
		}
		out = append(out, Listing{
			CustomerID:    forecast.CustomerID,
			CustomerName:  forecast.CustomerName,
			Margin:        forecast.Margin,
			MarginPercent: forecast.MarginPercent,
			RiskLevel:     forecast.RiskLevel,
		})
	}
	return out
}

// periodEntrySums is the grouped time entry aggregate for one period.
type periodEntrySums struct {
	Billable     bool
	Hours        float64
	Credits      float64
	InternalCost float64
}

// compute builds the forecast for one customer as of now.
func (s *Service) compute(ctx context.Context, customer models.Customer, now time.Time) (*CustomerForecast, error) {
	period, balance := s.loadPeriod(ctx, customer, now)

	var grouped []periodEntrySums
	if errSum := s.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Select("billable, COALESCE(SUM(hours), 0) AS hours, COALESCE(SUM(credits), 0) AS credits, COALESCE(SUM(internal_cost), 0) AS internal_cost").
		Where("customer_id = ? AND worked_at >= ? AND worked_at < ?", customer.ID, period.PeriodStart, period.PeriodEnd).
		Group("billable").
		Scan(&grouped).Error; errSum != nil {
		return nil, errSum
	}

	entries := make([]finance.TimeEntrySummary, 0, len(grouped))
	for _, row := range grouped {
		if row.Hours == 0 && row.Credits == 0 && row.InternalCost == 0 {
			continue
		}
		entries = append(entries, finance.TimeEntrySummary{
			Hours:        row.Hours,
			Credits:      row.Credits,
			InternalCost: row.InternalCost,
			Billable:     row.Billable,
		})
	}

	allocation := s.resolveAllocation(customer)

	summary, errSummarize := finance.SummarizeCustomer(finance.CustomerSummaryInput{
		Key:            fmt.Sprintf("%d", customer.ID),
		Period:         period,
		Balance:        balance,
		Allocation:     allocation,
		PricePerCredit: s.catalog.ResolvePricePerCredit(customer.PlanID),
		Entries:        entries,
	})
	if errSummarize != nil {
		return nil, errSummarize
	}

	return s.buildPayload(customer, period, balance, allocation, summary), nil
}

// resolveAllocation prefers the per-customer override, then the plan tier.
func (s *Service) resolveAllocation(customer models.Customer) float64 {
	if customer.MonthlyCreditAllocation != nil && *customer.MonthlyCreditAllocation > 0 {
		return *customer.MonthlyCreditAllocation
	}
	if tier, ok := s.catalog.Tier(customer.PlanID); ok {
		return tier.MonthlyCredits
	}
	return s.catalog.Baseline().MonthlyCredits
}

// loadPeriod returns the customer's reporting window and current balance.
// Customers without a balance row fall back to the current calendar month
// with a full allocation.
func (s *Service) loadPeriod(ctx context.Context, customer models.Customer, now time.Time) (finance.ConsumptionPeriod, float64) {
	var row models.CreditBalance
	errFind := s.db.WithContext(ctx).
		Where("customer_id = ?", customer.ID).
		Take(&row).Error
	if errFind != nil {
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			log.WithError(errFind).Warn("forecast: failed to load credit balance")
		}
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		return buildPeriod(start, end, now), s.resolveAllocation(customer)
	}
	return buildPeriod(row.PeriodStart.UTC(), row.PeriodEnd.UTC(), now), row.Balance
}

// buildPeriod derives elapsed and total days, clamping now into the window.
func buildPeriod(start, end, now time.Time) finance.ConsumptionPeriod {
	daysInPeriod := end.Sub(start).Hours() / 24
	if daysInPeriod <= 0 {
		daysInPeriod = 1
	}

	elapsed := now.Sub(start).Hours() / 24
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > daysInPeriod {
		elapsed = daysInPeriod
	}

	return finance.ConsumptionPeriod{
		PeriodStart:  start,
		PeriodEnd:    end,
		DaysElapsed:  elapsed,
		DaysInPeriod: daysInPeriod,
	}
}

// buildPayload renders the finance summary into the dashboard payload.
func (s *Service) buildPayload(customer models.Customer, period finance.ConsumptionPeriod, balance, allocation float64, summary finance.CustomerFinancialSummary) *CustomerForecast {
	out := &CustomerForecast{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		PlanID:       customer.PlanID,
		Currency:     customer.Currency,
		PeriodStart:  period.PeriodStart,
		PeriodEnd:    period.PeriodEnd,
		DaysElapsed:  period.DaysElapsed,
		DaysInPeriod: period.DaysInPeriod,

		Balance:    balance,
		Allocation: allocation,

		TotalHours:    summary.TotalHours,
		BillableHours: summary.BillableHours,
		TotalCredits:  summary.TotalCredits,

		DailyRate:        summary.Burn.DailyRate,
		ProjectedTotal:   summary.Burn.ProjectedTotal,
		ProjectedBalance: summary.Burn.ProjectedBalance,

		RiskLevel:   summary.Risk.Level.String(),
		RiskFactors: summary.Risk.Factors,
		Action:      string(summary.Risk.Action),

		Revenue:       summary.Margin.Revenue,
		Cost:          summary.Margin.Cost,
		Margin:        summary.Margin.Margin,
		MarginPercent: summary.Margin.MarginPercent,
	}
	if summary.Burn.Depletes {
		days := summary.Burn.DaysUntilDepleted
		out.DaysUntilDepleted = &days
	}
	if out.RiskFactors == nil {
		out.RiskFactors = []string{}
	}

	out.FormattedRevenue = s.formatInCurrency(summary.Margin.Revenue, customer.Currency)
	out.FormattedMargin = s.formatInCurrency(summary.Margin.Margin, customer.Currency)
	return out
}

// formatInCurrency converts a base-currency amount into the customer's
// reporting currency and renders it. Unknown currencies render in the
// base currency instead of failing the forecast.
func (s *Service) formatInCurrency(amount float64, currency string) string {
	converted, errConvert := s.rates.Convert(amount, finance.BaseCurrency, currency)
	if errConvert != nil {
		return finance.Format(amount, finance.BaseCurrency)
	}
	return finance.Format(converted, currency)
}

// persistSnapshot stores the computed forecast for later inspection.
func (s *Service) persistSnapshot(ctx context.Context, result *CustomerForecast) error {
	factors, errMarshal := json.Marshal(result.RiskFactors)
	if errMarshal != nil {
		return errMarshal
	}
	row := models.ForecastSnapshot{
		CustomerID:       result.CustomerID,
		PeriodStart:      result.PeriodStart,
		PeriodEnd:        result.PeriodEnd,
		DailyRate:        result.DailyRate,
		ProjectedTotal:   result.ProjectedTotal,
		ProjectedBalance: result.ProjectedBalance,
		RiskLevel:        result.RiskLevel,
		RiskFactors:      datatypes.JSON(factors),
		Action:           result.Action,
		Revenue:          result.Revenue,
		Margin:           result.Margin,
		MarginPercent:    result.MarginPercent,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// cacheGet returns a cached forecast or nil. Cache failures are logged
// and treated as misses.
func (s *Service) cacheGet(ctx context.Context, customerID uint64) *CustomerForecast {
	if s.cache == nil {
		return nil
	}
	payload, errGet := s.cache.Get(ctx, cacheKey(customerID)).Bytes()
	if errGet != nil {
		if !errors.Is(errGet, redis.Nil) {
			log.WithError(errGet).Warn("forecast: cache read failed")
		}
		return nil
	}
	var out CustomerForecast
	if errUnmarshal := json.Unmarshal(payload, &out); errUnmarshal != nil {
		log.WithError(errUnmarshal).Warn("forecast: cache payload invalid")
		return nil
	}
	return &out
}

// cacheSet stores a forecast with the settings-controlled TTL.
func (s *Service) cacheSet(ctx context.Context, result *CustomerForecast) {
	if s.cache == nil {
		return
	}
	payload, errMarshal := json.Marshal(result)
	if errMarshal != nil {
		log.WithError(errMarshal).Warn("forecast: cache marshal failed")
		return
	}
	ttl := time.Duration(settings.Int(settings.ForecastCacheTTLSecondsKey, settings.DefaultForecastCacheTTLSeconds)) * time.Second
	if errSet := s.cache.Set(ctx, cacheKey(result.CustomerID), payload, ttl).Err(); errSet != nil {
		log.WithError(errSet).Warn("forecast: cache write failed")
	}
}
