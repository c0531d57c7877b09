package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/finance"
	internalsettings "github.com/nordiqa/partnerops/internal/settings"
)

// publicConfigResponse is the response payload for public config.
type publicConfigResponse struct {
	SiteName        string `json:"site_name"`
	DefaultCurrency string `json:"default_currency"`
}

// GetPublicConfig returns public configuration for the front UI.
func GetPublicConfig(c *gin.Context) {
	c.JSON(http.StatusOK, publicConfigResponse{
		SiteName:        internalsettings.String(internalsettings.SiteNameKey, internalsettings.DefaultSiteName),
		DefaultCurrency: internalsettings.String(internalsettings.DefaultCurrencyKey, internalsettings.DefaultCurrency),
	})
}

// planDTO defines the plan catalog response payload.
type planDTO struct {
	PlanID         string   `json:"plan_id"`
	PricePerCredit float64  `json:"price_per_credit"`
	MonthlyCredits float64  `json:"monthly_credits"`
	MonthlyPrice   float64  `json:"monthly_price"`
	FormattedPrice string   `json:"formatted_price"`
	Features       []string `json:"features"`
}

// ListPlans returns the plan catalog with base-currency pricing.
func ListPlans(c *gin.Context) {
	tiers := finance.DefaultCatalog().Tiers()
	resp := make([]planDTO, 0, len(tiers))
	for _, tier := range tiers {
		resp = append(resp, planDTO{
			PlanID:         tier.PlanID,
			PricePerCredit: tier.PricePerCredit,
			MonthlyCredits: tier.MonthlyCredits,
			MonthlyPrice:   tier.MonthlyPrice,
			FormattedPrice: finance.Format(tier.MonthlyPrice, finance.BaseCurrency),
			Features:       tier.Features,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": resp})
}
