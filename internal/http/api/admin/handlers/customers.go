package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/nordiqa/partnerops/internal/db"
	"github.com/nordiqa/partnerops/internal/finance"
	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/gorm"
)

// CustomerHandler handles customer administration endpoints.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// customerDTO defines the customer response payload.
type customerDTO struct {
	ID                      uint64    `json:"id"`
	Name                    string    `json:"name"`
	Company                 string    `json:"company"`
	Email                   string    `json:"email"`
	PlanID                  string    `json:"plan_id"`
	Currency                string    `json:"currency"`
	MonthlyCreditAllocation *float64  `json:"monthly_credit_allocation"`
	InternalHourlyCost      float64   `json:"internal_hourly_cost"`
	Active                  bool      `json:"active"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// toCustomerDTO maps a customer model onto the response payload.
func toCustomerDTO(customer models.Customer) customerDTO {
	return customerDTO{
		ID:                      customer.ID,
		Name:                    customer.Name,
		Company:                 customer.Company,
		Email:                   customer.Email,
		PlanID:                  customer.PlanID,
		Currency:                customer.Currency,
		MonthlyCreditAllocation: customer.MonthlyCreditAllocation,
		InternalHourlyCost:      customer.InternalHourlyCost,
		Active:                  customer.Active,
		CreatedAt:               customer.CreatedAt,
		UpdatedAt:               customer.UpdatedAt,
	}
}

// List returns customers with optional name search and paging.
func (h *CustomerHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Customer{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		expr, pattern := dbutil.CaseInsensitiveLike(h.db, "name", search)
		q = q.Where(expr, pattern)
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active, errParse := strconv.ParseBool(raw)
		if errParse == nil {
			q = q.Where("active = ?", active)
		}
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var customers []models.Customer
	if errFind := q.Order("id ASC").Limit(limit).Find(&customers).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query customers failed"})
		return
	}

	resp := make([]customerDTO, 0, len(customers))
	for _, customer := range customers {
		resp = append(resp, toCustomerDTO(customer))
	}
	c.JSON(http.StatusOK, gin.H{"customers": resp})
}

// customerRequest defines the request body for create and update.
type customerRequest struct {
	Name                    string   `json:"name"`
	Company                 string   `json:"company"`
	Email                   string   `json:"email"`
	PlanID                  string   `json:"plan_id"`
	Currency                string   `json:"currency"`
	MonthlyCreditAllocation *float64 `json:"monthly_credit_allocation"`
	InternalHourlyCost      *float64 `json:"internal_hourly_cost"`
	Active                  *bool    `json:"active"`
}

// Create creates a customer and seeds its period credit balance.
func (h *CustomerHandler) Create(c *gin.Context) {
	var body customerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	catalog := finance.DefaultCatalog()
	planID := strings.ToLower(strings.TrimSpace(body.PlanID))
	if planID == "" {
		planID = catalog.Baseline().PlanID
	}
	if _, ok := catalog.Tier(planID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan"})
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(body.Currency))
	if currency == "" {
		currency = finance.BaseCurrency
	}
	if _, errRate := finance.DefaultRates().Rate(currency); errRate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown currency"})
		return
	}

	customer := models.Customer{
		Name:                    name,
		Company:                 strings.TrimSpace(body.Company),
		Email:                   strings.TrimSpace(body.Email),
		PlanID:                  planID,
		Currency:                currency,
		MonthlyCreditAllocation: body.MonthlyCreditAllocation,
		Active:                  true,
	}
	if body.InternalHourlyCost != nil {
		customer.InternalHourlyCost = *body.InternalHourlyCost
	}
	if body.Active != nil {
		customer.Active = *body.Active
	}

	allocation := resolveAllocation(catalog, customer)
	now := time.Now().UTC()
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&customer).Error; errCreate != nil {
			return errCreate
		}
		balance := models.CreditBalance{
			CustomerID:  customer.ID,
			Balance:     allocation,
			Allocation:  allocation,
			PeriodStart: periodStart,
			PeriodEnd:   periodStart.AddDate(0, 1, 0),
		}
		return tx.Create(&balance).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create customer failed"})
		return
	}

	c.JSON(http.StatusCreated, toCustomerDTO(customer))
}

// resolveAllocation prefers the per-customer override, then the plan tier.
func resolveAllocation(catalog *finance.Catalog, customer models.Customer) float64 {
	if customer.MonthlyCreditAllocation != nil && *customer.MonthlyCreditAllocation > 0 {
		return *customer.MonthlyCreditAllocation
	}
	if tier, ok := catalog.Tier(customer.PlanID); ok {
		return tier.MonthlyCredits
	}
	return catalog.Baseline().MonthlyCredits
}

// Get returns one customer.
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var customer models.Customer
	if errFind := h.db.WithContext(c.Request.Context()).First(&customer, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, toCustomerDTO(customer))
}

// Update applies partial changes to a customer.
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body customerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var customer models.Customer
	if errFind := h.db.WithContext(c.Request.Context()).First(&customer, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if name := strings.TrimSpace(body.Name); name != "" {
		updates["name"] = name
	}
	if body.Company != "" {
		updates["company"] = strings.TrimSpace(body.Company)
	}
	if body.Email != "" {
		updates["email"] = strings.TrimSpace(body.Email)
	}
	if planID := strings.ToLower(strings.TrimSpace(body.PlanID)); planID != "" {
		if _, okPlan := finance.DefaultCatalog().Tier(planID); !okPlan {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan"})
			return
		}
		updates["plan_id"] = planID
	}
	if currency := strings.ToUpper(strings.TrimSpace(body.Currency)); currency != "" {
		if _, errRate := finance.DefaultRates().Rate(currency); errRate != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown currency"})
			return
		}
		updates["currency"] = currency
	}
	if body.MonthlyCreditAllocation != nil {
		updates["monthly_credit_allocation"] = *body.MonthlyCreditAllocation
	}
	if body.InternalHourlyCost != nil {
		updates["internal_hourly_cost"] = *body.InternalHourlyCost
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&customer).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	if errFind := h.db.WithContext(c.Request.Context()).First(&customer, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, toCustomerDTO(customer))
}

// Delete deactivates a customer. Rows are kept for reporting.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// assignUserRequest defines the request body for linking a member.
type assignUserRequest struct {
	UserID uint64 `json:"user_id"`
}

// AssignUser links a registered member account to the customer.
func (h *CustomerHandler) AssignUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body assignUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}

	var customer models.Customer
	if errFind := h.db.WithContext(c.Request.Context()).First(&customer, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", body.UserID).
		Updates(map[string]any{"customer_id": id, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
