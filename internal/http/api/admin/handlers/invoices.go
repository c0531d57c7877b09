package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/finance"
	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/gorm"
)

// InvoiceHandler handles invoice administration endpoints.
type InvoiceHandler struct {
	db *gorm.DB
}

// NewInvoiceHandler constructs an InvoiceHandler.
func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{db: db}
}

// generateInvoiceRequest defines the request body for invoice generation.
type generateInvoiceRequest struct {
	CustomerID uint64 `json:"customer_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

// Generate creates a draft invoice from a month's billable consumption.
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var body generateInvoiceRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.CustomerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing customer_id"})
		return
	}
	if body.Year < 2000 || body.Month < 1 || body.Month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period"})
		return
	}

	var customer models.Customer
	if errFind := h.db.WithContext(c.Request.Context()).First(&customer, body.CustomerID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	periodStart := time.Date(body.Year, time.Month(body.Month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	// sums holds the billable consumption aggregate for the period.
	var sums struct {
		Credits float64
		Hours   float64
	}
	if errSum := h.db.WithContext(c.Request.Context()).
		Model(&models.TimeEntry{}).
		Select("COALESCE(SUM(credits), 0) AS credits, COALESCE(SUM(hours), 0) AS hours").
		Where("customer_id = ? AND billable = ? AND worked_at >= ? AND worked_at < ?", customer.ID, true, periodStart, periodEnd).
		Scan(&sums).Error; errSum != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregate consumption failed"})
		return
	}
	if sums.Credits <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no billable consumption in period"})
		return
	}

	pricePerCredit := finance.DefaultCatalog().ResolvePricePerCredit(customer.PlanID)
	baseAmount := sums.Credits * pricePerCredit

	currency := customer.Currency
	amount, errConvert := finance.DefaultRates().Convert(baseAmount, finance.BaseCurrency, currency)
	if errConvert != nil {
		currency = finance.BaseCurrency
		amount = baseAmount
	}

	invoice := models.Invoice{
		CustomerID:     customer.ID,
		Number:         fmt.Sprintf("INV-%04d%02d-%d", body.Year, body.Month, customer.ID),
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Credits:        sums.Credits,
		Hours:          sums.Hours,
		PricePerCredit: pricePerCredit,
		Currency:       currency,
		Amount:         amount,
		FormattedTotal: finance.Format(amount, currency),
		Status:         models.InvoiceStatusDraft,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&invoice).Error; errCreate != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "invoice already exists for period"})
		return
	}

	c.JSON(http.StatusCreated, toInvoiceDTO(invoice))
}

// invoiceDTO defines the invoice response payload.
type invoiceDTO struct {
	ID             uint64     `json:"id"`
	CustomerID     uint64     `json:"customer_id"`
	Number         string     `json:"number"`
	PeriodStart    time.Time  `json:"period_start"`
	PeriodEnd      time.Time  `json:"period_end"`
	Credits        float64    `json:"credits"`
	Hours          float64    `json:"hours"`
	PricePerCredit float64    `json:"price_per_credit"`
	Currency       string     `json:"currency"`
	Amount         float64    `json:"amount"`
	FormattedTotal string     `json:"formatted_total"`
	Status         int        `json:"status"`
	IssuedAt       *time.Time `json:"issued_at"`
	PaidAt         *time.Time `json:"paid_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// toInvoiceDTO maps an invoice model onto the response payload.
func toInvoiceDTO(invoice models.Invoice) invoiceDTO {
	return invoiceDTO{
		ID:             invoice.ID,
		CustomerID:     invoice.CustomerID,
		Number:         invoice.Number,
		PeriodStart:    invoice.PeriodStart,
		PeriodEnd:      invoice.PeriodEnd,
		Credits:        invoice.Credits,
		Hours:          invoice.Hours,
		PricePerCredit: invoice.PricePerCredit,
		Currency:       invoice.Currency,
		Amount:         invoice.Amount,
		FormattedTotal: invoice.FormattedTotal,
		Status:         int(invoice.Status),
		IssuedAt:       invoice.IssuedAt,
		PaidAt:         invoice.PaidAt,
		CreatedAt:      invoice.CreatedAt,
	}
}

// List returns invoices, optionally filtered by customer.
func (h *InvoiceHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Invoice{})
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		if customerID, errParse := strconv.ParseUint(raw, 10, 64); errParse == nil {
			q = q.Where("customer_id = ?", customerID)
		}
	}

	var invoices []models.Invoice
	if errFind := q.Order("period_start DESC, id DESC").Limit(200).Find(&invoices).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query invoices failed"})
		return
	}

	resp := make([]invoiceDTO, 0, len(invoices))
	for _, invoice := range invoices {
		resp = append(resp, toInvoiceDTO(invoice))
	}
	c.JSON(http.StatusOK, gin.H{"invoices": resp})
}

// updateStatusRequest defines the request body for status transitions.
type updateStatusRequest struct {
	Status int `json:"status"`
}

// UpdateStatus advances an invoice through its lifecycle. Draft invoices
// can be issued or voided, issued invoices paid or voided.
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body updateStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	target := models.InvoiceStatus(body.Status)

	var invoice models.Invoice
	if errFind := h.db.WithContext(c.Request.Context()).First(&invoice, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if !validInvoiceTransition(invoice.Status, target) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid status transition"})
		return
	}

	now := time.Now().UTC()
	updates := map[string]any{"status": target, "updated_at": now}
	switch target {
	case models.InvoiceStatusIssued:
		updates["issued_at"] = now
	case models.InvoiceStatusPaid:
		updates["paid_at"] = now
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&invoice).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": int(target)})
}

// validInvoiceTransition reports whether a status change is allowed.
func validInvoiceTransition(from, to models.InvoiceStatus) bool {
	switch from {
	case models.InvoiceStatusDraft:
		return to == models.InvoiceStatusIssued || to == models.InvoiceStatusVoid
	case models.InvoiceStatusIssued:
		return to == models.InvoiceStatusPaid || to == models.InvoiceStatusVoid
	default:
		return false
	}
}
