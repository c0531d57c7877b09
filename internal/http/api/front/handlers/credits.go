package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/models"
	"github.com/nordiqa/partnerops/internal/util"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditHandler handles credit balance and package endpoints for members.
type CreditHandler struct {
	db *gorm.DB
}

// NewCreditHandler constructs a CreditHandler.
func NewCreditHandler(db *gorm.DB) *CreditHandler {
	return &CreditHandler{db: db}
}

// Balance returns the customer's period credit balance.
func (h *CreditHandler) Balance(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no customer assigned"})
		return
	}

	var balance models.CreditBalance
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("customer_id = ?", customerID).
		Take(&balance).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"balance": nil})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query balance failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": gin.H{
			"balance":      balance.Balance,
			"allocation":   balance.Allocation,
			"period_start": balance.PeriodStart,
			"period_end":   balance.PeriodEnd,
			"updated_at":   balance.UpdatedAt,
		},
	})
}

// creditPackageDTO defines the credit package response payload.
type creditPackageDTO struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	Serial     string     `json:"serial"`
	Credits    float64    `json:"credits"`
	Remaining  float64    `json:"remaining"`
	ValidDays  int        `json:"valid_days"`
	ExpiresAt  *time.Time `json:"expires_at"`
	RedeemedAt *time.Time `json:"redeemed_at"`
}

// redeemPackageRequest defines the request body for package redemption.
type redeemPackageRequest struct {
	Serial   string `json:"serial"`
	Password string `json:"password"`
}

// Redeem redeems a credit package for the member's customer.
func (h *CreditHandler) Redeem(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no customer assigned"})
		return
	}

	var body redeemPackageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	serial := strings.TrimSpace(body.Serial)
	password := strings.TrimSpace(body.Password)
	if serial == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serial and password are required"})
		return
	}

	var result gin.H
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var pkg models.CreditPackage
		if errFind := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("serial = ?", serial).
			First(&pkg).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
				return errFind
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query package failed"})
			return errFind
		}

		if pkg.Password != password {
			log.WithField("serial", util.MaskSecret(serial)).
				Warn("credits: package redemption rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password"})
			return errors.New("invalid password")
		}
		if !pkg.IsEnabled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "package is disabled"})
			return errors.New("package disabled")
		}
		if pkg.RedeemedCustomerID != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "package already redeemed"})
			return errors.New("package redeemed")
		}

		now := time.Now().UTC()
		var expiresAt *time.Time
		if pkg.ValidDays > 0 {
			exp := now.AddDate(0, 0, pkg.ValidDays)
			expiresAt = &exp
		}
		if errUpdate := tx.Model(&pkg).Updates(map[string]any{
			"redeemed_customer_id": customerID,
			"redeemed_at":          now,
			"expires_at":           expiresAt,
			"remaining":            pkg.Credits,
		}).Error; errUpdate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redeem failed"})
			return errUpdate
		}

		result = gin.H{
			"id":          pkg.ID,
			"name":        pkg.Name,
			"serial":      pkg.Serial,
			"credits":     pkg.Credits,
			"remaining":   pkg.Credits,
			"valid_days":  pkg.ValidDays,
			"expires_at":  expiresAt,
			"redeemed_at": now,
		}
		return nil
	})
	if errTx != nil {
		// response already written inside transaction on error paths
		return
	}

	c.JSON(http.StatusOK, gin.H{"package": result})
}

// ListPackages returns all redeemed packages for the member's customer.
func (h *CreditHandler) ListPackages(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no customer assigned"})
		return
	}

	var packages []models.CreditPackage
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("redeemed_customer_id = ?", customerID).
		Order("redeemed_at DESC NULLS LAST, created_at DESC").
		Find(&packages).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query packages failed"})
		return
	}

	resp := make([]creditPackageDTO, 0, len(packages))
	for _, pkg := range packages {
		resp = append(resp, creditPackageDTO{
			ID:         pkg.ID,
			Name:       pkg.Name,
			Serial:     pkg.Serial,
			Credits:    pkg.Credits,
			Remaining:  pkg.Remaining,
			ValidDays:  pkg.ValidDays,
			ExpiresAt:  pkg.ExpiresAt,
			RedeemedAt: pkg.RedeemedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"packages": resp})
}
