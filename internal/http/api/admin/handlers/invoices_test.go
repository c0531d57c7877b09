package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/gorm"
)

func setupInvoiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:invoices_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Customer{}, &models.TimeEntry{}, &models.Invoice{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func invoiceRouter(db *gorm.DB) *gin.Engine {
	handler := NewInvoiceHandler(db)
	router := gin.New()
	router.POST("/v0/admin/invoices/generate", handler.Generate)
	router.POST("/v0/admin/invoices/:id/status", handler.UpdateStatus)
	return router
}

func TestGenerateInvoiceFromBillableConsumption(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupInvoiceDB(t)

	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "SEK"}
	if errCreate := db.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}

	workedAt := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	entries := []models.TimeEntry{
		{CustomerID: customer.ID, WorkedAt: workedAt, Hours: 8, Credits: 4, Billable: true},
		{CustomerID: customer.ID, WorkedAt: workedAt.AddDate(0, 0, 5), Hours: 4, Credits: 2, Billable: true},
		{CustomerID: customer.ID, WorkedAt: workedAt, Hours: 3, Credits: 1.5, Billable: false},
	}
	for i := range entries {
		if errCreate := db.Create(&entries[i]).Error; errCreate != nil {
			t.Fatalf("create entry: %v", errCreate)
		}
	}

	router := invoiceRouter(db)
	body := fmt.Sprintf(`{"customer_id":%d,"year":2026,"month":7}`, customer.ID)
	req := httptest.NewRequest(http.MethodPost, "/v0/admin/invoices/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Number         string  `json:"number"`
		Credits        float64 `json:"credits"`
		Hours          float64 `json:"hours"`
		PricePerCredit float64 `json:"price_per_credit"`
		Currency       string  `json:"currency"`
		Status         int     `json:"status"`
		FormattedTotal string  `json:"formatted_total"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}

	// Non-billable work stays off the invoice.
	if resp.Credits != 6 {
		t.Fatalf("expected 6 billable credits, got %v", resp.Credits)
	}
	if resp.Hours != 12 {
		t.Fatalf("expected 12 billable hours, got %v", resp.Hours)
	}
	if resp.PricePerCredit != 135 {
		t.Fatalf("expected growth plan price 135, got %v", resp.PricePerCredit)
	}
	if resp.Currency != "SEK" {
		t.Fatalf("expected SEK invoice, got %s", resp.Currency)
	}
	if resp.Status != int(models.InvoiceStatusDraft) {
		t.Fatalf("expected draft status, got %d", resp.Status)
	}
	wantNumber := fmt.Sprintf("INV-202607-%d", customer.ID)
	if resp.Number != wantNumber {
		t.Fatalf("expected number %s, got %s", wantNumber, resp.Number)
	}
	if !strings.HasSuffix(resp.FormattedTotal, "kr") {
		t.Fatalf("expected kr suffix on formatted total, got %q", resp.FormattedTotal)
	}
}

func TestGenerateInvoiceRejectsEmptyPeriod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupInvoiceDB(t)

	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "EUR"}
	if errCreate := db.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}

	router := invoiceRouter(db)
	body := fmt.Sprintf(`{"customer_id":%d,"year":2026,"month":7}`, customer.ID)
	req := httptest.NewRequest(http.MethodPost, "/v0/admin/invoices/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 for empty period, got %d", w.Code)
	}
}

func TestInvoiceStatusTransitions(t *testing.T) {
	cases := []struct {
		name string
		from models.InvoiceStatus
		to   models.InvoiceStatus
		want bool
	}{
		{"draft to issued", models.InvoiceStatusDraft, models.InvoiceStatusIssued, true},
		{"draft to void", models.InvoiceStatusDraft, models.InvoiceStatusVoid, true},
		{"draft to paid", models.InvoiceStatusDraft, models.InvoiceStatusPaid, false},
		{"issued to paid", models.InvoiceStatusIssued, models.InvoiceStatusPaid, true},
		{"issued to void", models.InvoiceStatusIssued, models.InvoiceStatusVoid, true},
		{"issued to draft", models.InvoiceStatusIssued, models.InvoiceStatusDraft, false},
		{"paid to void", models.InvoiceStatusPaid, models.InvoiceStatusVoid, false},
		{"void to issued", models.InvoiceStatusVoid, models.InvoiceStatusIssued, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validInvoiceTransition(tc.from, tc.to); got != tc.want {
				t.Fatalf("validInvoiceTransition(%d, %d) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestUpdateInvoiceStatusSetsIssuedAt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupInvoiceDB(t)

	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "EUR"}
	if errCreate := db.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}
	invoice := models.Invoice{
		CustomerID:  customer.ID,
		Number:      "INV-202607-1",
		PeriodStart: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Credits:     6,
		Currency:    "EUR",
		Status:      models.InvoiceStatusDraft,
	}
	if errCreate := db.Create(&invoice).Error; errCreate != nil {
		t.Fatalf("create invoice: %v", errCreate)
	}

	router := invoiceRouter(db)
	body := fmt.Sprintf(`{"status":%d}`, models.InvoiceStatusIssued)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/v0/admin/invoices/%d/status", invoice.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Invoice
	if errFind := db.First(&stored, invoice.ID).Error; errFind != nil {
		t.Fatalf("reload invoice: %v", errFind)
	}
	if stored.Status != models.InvoiceStatusIssued {
		t.Fatalf("expected issued status, got %d", stored.Status)
	}
	if stored.IssuedAt == nil {
		t.Fatalf("expected issued_at to be set")
	}
}
