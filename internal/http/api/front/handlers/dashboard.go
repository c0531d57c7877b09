package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/forecast"
	"gorm.io/gorm"
)

// DashboardHandler serves forecast-backed dashboard endpoints.
type DashboardHandler struct {
	db          *gorm.DB
	forecastSvc *forecast.Service
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB, forecastSvc *forecast.Service) *DashboardHandler {
	return &DashboardHandler{db: db, forecastSvc: forecastSvc}
}

// KPI returns headline figures for the member's customer.
func (h *DashboardHandler) KPI(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no customer assigned"})
		return
	}

	result, errForecast := h.forecastSvc.ForecastCustomer(c.Request.Context(), customerID)
	if errForecast != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":           result.Balance,
		"allocation":        result.Allocation,
		"total_hours":       result.TotalHours,
		"billable_hours":    result.BillableHours,
		"total_credits":     result.TotalCredits,
		"risk_level":        result.RiskLevel,
		"formatted_revenue": result.FormattedRevenue,
	})
}

// Forecast returns the full burn-rate and risk payload.
func (h *DashboardHandler) Forecast(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no customer assigned"})
		return
	}

	result, errForecast := h.forecastSvc.ForecastCustomer(c.Request.Context(), customerID)
	if errForecast != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
