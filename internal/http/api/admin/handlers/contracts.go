package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContractHandler handles contract administration endpoints.
type ContractHandler struct {
	db *gorm.DB
}

// NewContractHandler constructs a ContractHandler.
func NewContractHandler(db *gorm.DB) *ContractHandler {
	return &ContractHandler{db: db}
}

// createContractRequest defines the request body for a new version.
type createContractRequest struct {
	CustomerID uint64          `json:"customer_id"`
	Title      string          `json:"title"`
	Terms      json.RawMessage `json:"terms"`
}

// Create appends a new draft contract version for a customer.
func (h *ContractHandler) Create(c *gin.Context) {
	var body createContractRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.CustomerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing customer_id"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}

	terms := body.Terms
	if len(terms) == 0 {
		terms = json.RawMessage(`{}`)
	}
	if !json.Valid(terms) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid terms"})
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

	var contract models.Contract
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		if errMax := tx.Model(&models.Contract{}).
			Where("customer_id = ?", customer.ID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error; errMax != nil {
			return errMax
		}

		contract = models.Contract{
			CustomerID: customer.ID,
			Version:    maxVersion + 1,
			Title:      title,
			Terms:      datatypes.JSON(terms),
			Status:     models.ContractStatusDraft,
		}
		return tx.Create(&contract).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create contract failed"})
		return
	}

	c.JSON(http.StatusCreated, toContractDTO(contract))
}

// contractDTO defines the contract response payload.
type contractDTO struct {
	ID          uint64          `json:"id"`
	CustomerID  uint64          `json:"customer_id"`
	Version     int             `json:"version"`
	Title       string          `json:"title"`
	Terms       json.RawMessage `json:"terms"`
	Status      int             `json:"status"`
	SignedAt    *time.Time      `json:"signed_at"`
	EffectiveAt *time.Time      `json:"effective_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// toContractDTO maps a contract model onto the response payload.
func toContractDTO(contract models.Contract) contractDTO {
	return contractDTO{
		ID:          contract.ID,
		CustomerID:  contract.CustomerID,
		Version:     contract.Version,
		Title:       contract.Title,
		Terms:       json.RawMessage(contract.Terms),
		Status:      int(contract.Status),
		SignedAt:    contract.SignedAt,
		EffectiveAt: contract.EffectiveAt,
		CreatedAt:   contract.CreatedAt,
	}
}

// List returns contract versions, optionally filtered by customer.
func (h *ContractHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Contract{})
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		if customerID, errParse := strconv.ParseUint(raw, 10, 64); errParse == nil {
			q = q.Where("customer_id = ?", customerID)
		}
	}

	var contracts []models.Contract
	if errFind := q.Order("customer_id ASC, version DESC").Limit(200).Find(&contracts).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query contracts failed"})
		return
	}

	resp := make([]contractDTO, 0, len(contracts))
	for _, contract := range contracts {
		resp = append(resp, toContractDTO(contract))
	}
	c.JSON(http.StatusOK, gin.H{"contracts": resp})
}

// Activate puts a draft version in force and supersedes the previously
// active one.
func (h *ContractHandler) Activate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if errFind := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&contract, id).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
				return errFind
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return errFind
		}
		if contract.Status != models.ContractStatusDraft {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "only draft versions can be activated"})
			return errors.New("not a draft")
		}

		now := time.Now().UTC()
		if errSupersede := tx.Model(&models.Contract{}).
			Where("customer_id = ? AND status = ?", contract.CustomerID, models.ContractStatusActive).
			Updates(map[string]any{"status": models.ContractStatusSuperseded, "updated_at": now}).Error; errSupersede != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "supersede failed"})
			return errSupersede
		}

		if errActivate := tx.Model(&contract).Updates(map[string]any{
			"status":       models.ContractStatusActive,
			"effective_at": now,
			"updated_at":   now,
		}).Error; errActivate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "activate failed"})
			return errActivate
		}
		return nil
	})
	if errTx != nil {
		// response already written inside transaction on error paths
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
