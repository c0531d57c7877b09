package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/consumption"
	"github.com/nordiqa/partnerops/internal/forecast"
	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/gorm"
)

// TimeEntryHandler handles time entry endpoints for members.
type TimeEntryHandler struct {
	db          *gorm.DB
	recorder    *consumption.Recorder
	forecastSvc *forecast.Service
}

// NewTimeEntryHandler constructs a TimeEntryHandler.
func NewTimeEntryHandler(db *gorm.DB, recorder *consumption.Recorder, forecastSvc *forecast.Service) *TimeEntryHandler {
	return &TimeEntryHandler{db: db, recorder: recorder, forecastSvc: forecastSvc}
}

// createEntryRequest defines the request body for recording work.
type createEntryRequest struct {
	WorkedAt string  `json:"worked_at"` // RFC 3339 date or timestamp.
	Hours    float64 `json:"hours"`
	Credits  float64 `json:"credits"`
	Billable *bool   `json:"billable"`
	Note     string  `json:"note"`
}

// Create records delivered work and deducts credits.
func (h *TimeEntryHandler) Create(c *gin.Context) {
	userID := getUserID(c)
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no customer assigned"})
		return
	}

	var body createEntryRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Hours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be positive"})
		return
	}
	if body.Credits < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "credits must not be negative"})
		return
	}

	workedAt := time.Now().UTC()
	if body.WorkedAt != "" {
		parsed, errParse := parseWorkedAt(body.WorkedAt)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid worked_at"})
			return
		}
		workedAt = parsed
	}

	billable := true
	if body.Billable != nil {
		billable = *body.Billable
	}

	entry, errRecord := h.recorder.Record(c.Request.Context(), consumption.Entry{
		CustomerID: customerID,
		UserID:     &userID,
		WorkedAt:   workedAt,
		Hours:      body.Hours,
		Credits:    body.Credits,
		Billable:   billable,
		Note:       body.Note,
	})
	if errRecord != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record entry failed"})
		return
	}

	h.forecastSvc.Invalidate(c.Request.Context(), customerID)

	c.JSON(http.StatusCreated, gin.H{
		"id":         entry.ID,
		"worked_at":  entry.WorkedAt,
		"hours":      entry.Hours,
		"credits":    entry.Credits,
		"billable":   entry.Billable,
		"charged_to": entry.ChargedTo,
	})
}

// parseWorkedAt accepts a date or a full timestamp.
func parseWorkedAt(raw string) (time.Time, error) {
	if parsed, errParse := time.Parse(time.RFC3339, raw); errParse == nil {
		return parsed.UTC(), nil
	}
	parsed, errParse := time.Parse("2006-01-02", raw)
	if errParse != nil {
		return time.Time{}, errParse
	}
	return parsed.UTC(), nil
}

// timeEntryDTO defines the time entry response payload.
type timeEntryDTO struct {
	ID        uint64    `json:"id"`
	WorkedAt  time.Time `json:"worked_at"`
	Hours     float64   `json:"hours"`
	Credits   float64   `json:"credits"`
	Billable  bool      `json:"billable"`
	Note      string    `json:"note"`
	ChargedTo string    `json:"charged_to"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns recent time entries for the member's customer.
func (h *TimeEntryHandler) List(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no customer assigned"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var entries []models.TimeEntry
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("customer_id = ?", customerID).
		Order("worked_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query entries failed"})
		return
	}

	resp := make([]timeEntryDTO, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, timeEntryDTO{
			ID:        entry.ID,
			WorkedAt:  entry.WorkedAt,
			Hours:     entry.Hours,
			Credits:   entry.Credits,
			Billable:  entry.Billable,
			Note:      entry.Note,
			ChargedTo: entry.ChargedTo,
			CreatedAt: entry.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": resp})
}
