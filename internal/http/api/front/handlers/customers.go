package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/finance"
	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/gorm"
)

// CustomerFrontHandler exposes the member's own customer record.
type CustomerFrontHandler struct {
	db *gorm.DB
}

// NewCustomerFrontHandler constructs a CustomerFrontHandler.
func NewCustomerFrontHandler(db *gorm.DB) *CustomerFrontHandler {
	return &CustomerFrontHandler{db: db}
}

// Get returns the customer the member belongs to.
func (h *CustomerFrontHandler) Get(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no customer assigned"})
		return
	}

	var customer models.Customer
	if errFind := h.db.WithContext(c.Request.Context()).First(&customer, customerID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	tier, _ := finance.DefaultCatalog().Tier(customer.PlanID)
	c.JSON(http.StatusOK, gin.H{
		"id":               customer.ID,
		"name":             customer.Name,
		"company":          customer.Company,
		"email":            customer.Email,
		"plan_id":          customer.PlanID,
		"currency":         customer.Currency,
		"monthly_credits":  tier.MonthlyCredits,
		"price_per_credit": finance.DefaultCatalog().ResolvePricePerCredit(customer.PlanID),
		"active":           customer.Active,
		"created_at":       customer.CreatedAt,
	})
}
