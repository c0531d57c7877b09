package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/models"
	"github.com/nordiqa/partnerops/internal/security"
	"gorm.io/gorm"
)

// CreditPackageHandler handles credit package administration endpoints.
type CreditPackageHandler struct {
	db *gorm.DB
}

// NewCreditPackageHandler constructs a CreditPackageHandler.
func NewCreditPackageHandler(db *gorm.DB) *CreditPackageHandler {
	return &CreditPackageHandler{db: db}
}

// createPackageRequest defines the request body for package creation.
type createPackageRequest struct {
	Name      string  `json:"name"`
	Credits   float64 `json:"credits"`
	ValidDays int     `json:"valid_days"`
	Count     int     `json:"count"`
}

// Create mints one or more credit packages with generated serials.
func (h *CreditPackageHandler) Create(c *gin.Context) {
	var body createPackageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	if body.Credits <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "credits must be positive"})
		return
	}
	count := body.Count
	if count <= 0 {
		count = 1
	}
	if count > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count too large"})
		return
	}

	now := time.Now().UTC()
	created := make([]gin.H, 0, count)
	for i := 0; i < count; i++ {
		serial, errSerial := security.GeneratePackageSerial()
		if errSerial != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "generate serial failed"})
			return
		}
		password, errPassword := security.GenerateRandomString(12)
		if errPassword != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "generate password failed"})
			return
		}

		pkg := models.CreditPackage{
			Name:      name,
			Serial:    serial,
			Password:  password,
			Credits:   body.Credits,
			Remaining: 0,
			ValidDays: body.ValidDays,
			IsEnabled: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if errCreate := h.db.WithContext(c.Request.Context()).Create(&pkg).Error; errCreate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create package failed"})
			return
		}
		created = append(created, gin.H{
			"id":       pkg.ID,
			"serial":   pkg.Serial,
			"password": password,
			"credits":  pkg.Credits,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"packages": created})
}

// List returns packages, optionally filtered by redemption state.
func (h *CreditPackageHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.CreditPackage{})

	switch strings.TrimSpace(c.Query("state")) {
	case "redeemed":
		q = q.Where("redeemed_customer_id IS NOT NULL")
	case "unredeemed":
		q = q.Where("redeemed_customer_id IS NULL")
	}
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		if customerID, errParse := strconv.ParseUint(raw, 10, 64); errParse == nil {
			q = q.Where("redeemed_customer_id = ?", customerID)
		}
	}

	var packages []models.CreditPackage
	if errFind := q.Order("created_at DESC, id DESC").Limit(200).Find(&packages).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query packages failed"})
		return
	}

	resp := make([]gin.H, 0, len(packages))
	for _, pkg := range packages {
		resp = append(resp, gin.H{
			"id":                   pkg.ID,
			"name":                 pkg.Name,
			"serial":               pkg.Serial,
			"credits":              pkg.Credits,
			"remaining":            pkg.Remaining,
			"valid_days":           pkg.ValidDays,
			"is_enabled":           pkg.IsEnabled,
			"expires_at":           pkg.ExpiresAt,
			"redeemed_customer_id": pkg.RedeemedCustomerID,
			"redeemed_at":          pkg.RedeemedAt,
			"created_at":           pkg.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"packages": resp})
}

// Disable blocks further redemption and drawing from a package.
func (h *CreditPackageHandler) Disable(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.CreditPackage{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_enabled": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
