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

func setupCreditsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:credits_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Customer{}, &models.CreditBalance{}, &models.CreditPackage{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func creditsRouter(db *gorm.DB, customerID uint64) *gin.Engine {
	handler := NewCreditHandler(db)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", uint64(1))
		c.Set("customerID", customerID)
		c.Next()
	})
	router.GET("/v0/front/credits/balance", handler.Balance)
	router.POST("/v0/front/credits/packages/redeem", handler.Redeem)
	router.GET("/v0/front/credits/packages", handler.ListPackages)
	return router
}

func TestCreditBalanceReturnsPeriodRow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupCreditsDB(t)

	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "EUR"}
	if errCreate := db.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}
	balance := models.CreditBalance{
		CustomerID:  customer.ID,
		Balance:     32.5,
		Allocation:  50,
		PeriodStart: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	if errCreate := db.Create(&balance).Error; errCreate != nil {
		t.Fatalf("create balance: %v", errCreate)
	}

	router := creditsRouter(db, customer.ID)
	req := httptest.NewRequest(http.MethodGet, "/v0/front/credits/balance", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Balance *struct {
			Balance    float64 `json:"balance"`
			Allocation float64 `json:"allocation"`
		} `json:"balance"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if resp.Balance == nil {
		t.Fatalf("expected balance payload, got nil")
	}
	if resp.Balance.Balance != 32.5 || resp.Balance.Allocation != 50 {
		t.Fatalf("unexpected balance payload: %+v", resp.Balance)
	}
}

func TestRedeemPackageMarksRedemption(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupCreditsDB(t)

	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "EUR"}
	if errCreate := db.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}
	pkg := models.CreditPackage{
		Name:      "Top-up 10",
		Serial:    "pkg_TESTSERIAL01",
		Password:  "secretpass",
		Credits:   10,
		ValidDays: 30,
		IsEnabled: true,
	}
	if errCreate := db.Create(&pkg).Error; errCreate != nil {
		t.Fatalf("create package: %v", errCreate)
	}

	router := creditsRouter(db, customer.ID)
	body := `{"serial":"pkg_TESTSERIAL01","password":"secretpass"}`
	req := httptest.NewRequest(http.MethodPost, "/v0/front/credits/packages/redeem", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.CreditPackage
	if errFind := db.First(&stored, pkg.ID).Error; errFind != nil {
		t.Fatalf("reload package: %v", errFind)
	}
	if stored.RedeemedCustomerID == nil || *stored.RedeemedCustomerID != customer.ID {
		t.Fatalf("expected package redeemed by customer %d, got %#v", customer.ID, stored.RedeemedCustomerID)
	}
	if stored.Remaining != 10 {
		t.Fatalf("expected remaining=10 after redemption, got %v", stored.Remaining)
	}
	if stored.ExpiresAt == nil {
		t.Fatalf("expected expires_at to be set from valid_days")
	}
}

func TestRedeemPackageRejectsWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupCreditsDB(t)

	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "EUR"}
	if errCreate := db.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}
	pkg := models.CreditPackage{
		Name:      "Top-up 10",
		Serial:    "pkg_TESTSERIAL02",
		Password:  "secretpass",
		Credits:   10,
		IsEnabled: true,
	}
	if errCreate := db.Create(&pkg).Error; errCreate != nil {
		t.Fatalf("create package: %v", errCreate)
	}

	router := creditsRouter(db, customer.ID)
	body := `{"serial":"pkg_TESTSERIAL02","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/v0/front/credits/packages/redeem", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var stored models.CreditPackage
	if errFind := db.First(&stored, pkg.ID).Error; errFind != nil {
		t.Fatalf("reload package: %v", errFind)
	}
	if stored.RedeemedCustomerID != nil {
		t.Fatalf("expected package to stay unredeemed")
	}
}

func TestRedeemPackageRejectsSecondRedemption(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupCreditsDB(t)

	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "EUR"}
	if errCreate := db.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}
	redeemedAt := time.Now().UTC()
	pkg := models.CreditPackage{
		Name:               "Top-up 10",
		Serial:             "pkg_TESTSERIAL03",
		Password:           "secretpass",
		Credits:            10,
		Remaining:          10,
		IsEnabled:          true,
		RedeemedCustomerID: &customer.ID,
		RedeemedAt:         &redeemedAt,
	}
	if errCreate := db.Create(&pkg).Error; errCreate != nil {
		t.Fatalf("create package: %v", errCreate)
	}

	router := creditsRouter(db, customer.ID)
	body := `{"serial":"pkg_TESTSERIAL03","password":"secretpass"}`
	req := httptest.NewRequest(http.MethodPost, "/v0/front/credits/packages/redeem", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for already redeemed package, got %d", w.Code)
	}
}
