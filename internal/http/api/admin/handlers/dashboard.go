package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/forecast"
	"gorm.io/gorm"
)

// DashboardHandler serves portfolio-level forecast endpoints.
type DashboardHandler struct {
	db          *gorm.DB
	forecastSvc *forecast.Service
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB, forecastSvc *forecast.Service) *DashboardHandler {
	return &DashboardHandler{db: db, forecastSvc: forecastSvc}
}

// Portfolio returns the aggregated view across all active customers.
func (h *DashboardHandler) Portfolio(c *gin.Context) {
	listSize := 5
	if raw := c.Query("list_size"); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 && parsed <= 50 {
			listSize = parsed
		}
	}

	summary, errPortfolio := h.forecastSvc.Portfolio(c.Request.Context(), listSize)
	if errPortfolio != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "portfolio failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CustomerForecast returns the forecast for one customer.
func (h *DashboardHandler) CustomerForecast(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	result, errForecast := h.forecastSvc.ForecastCustomer(c.Request.Context(), id)
	if errForecast != nil {
		if errors.Is(errForecast, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
