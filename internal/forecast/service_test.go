package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nordiqa/partnerops/internal/db"
	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func seedForecastCustomer(t *testing.T, conn *gorm.DB, name string, balance float64, consumed float64) models.Customer {
	t.Helper()
	customer := models.Customer{Name: name, PlanID: "growth", Currency: "SEK", InternalHourlyCost: 60, Active: true}
	if errCreate := conn.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}

	now := time.Now().UTC()
	row := models.CreditBalance{
		CustomerID:  customer.ID,
		Balance:     balance,
		Allocation:  50,
		PeriodStart: now.AddDate(0, 0, -10),
		PeriodEnd:   now.AddDate(0, 0, 20),
	}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		t.Fatalf("create balance: %v", errCreate)
	}

	if consumed > 0 {
		entry := models.TimeEntry{
			CustomerID:   customer.ID,
			WorkedAt:     now.AddDate(0, 0, -2),
			Hours:        consumed / 2,
			Credits:      consumed,
			InternalCost: consumed / 2 * 60,
			Billable:     true,
			ChargedTo:    models.ChargedToAllocation,
		}
		if errCreate := conn.Create(&entry).Error; errCreate != nil {
			t.Fatalf("create entry: %v", errCreate)
		}
	}
	return customer
}

func TestForecastCustomerComputesAndSnapshots(t *testing.T) {
	conn := openTestDB(t)
	customer := seedForecastCustomer(t, conn, "Acme", 30, 20)

	svc := NewService(conn, nil)
	result, errForecast := svc.ForecastCustomer(context.Background(), customer.ID)
	if errForecast != nil {
		t.Fatalf("forecast: %v", errForecast)
	}

	if result.CustomerID != customer.ID || result.PlanID != "growth" {
		t.Fatalf("payload = %+v", result)
	}
	// 20 credits over 10 elapsed days of 30 -> rate 2/day, 20 days left,
	// projected balance 30 - 40 = -10.
	if math.Abs(result.DailyRate-2) > 0.01 {
		t.Fatalf("daily rate = %v, want ~2", result.DailyRate)
	}
	if result.ProjectedBalance > -9 || result.ProjectedBalance < -11 {
		t.Fatalf("projected balance = %v, want ~-10", result.ProjectedBalance)
	}
	if result.RiskLevel != "critical" {
		t.Fatalf("risk = %s, want critical", result.RiskLevel)
	}
	if result.Action != "credits_topup" {
		t.Fatalf("action = %s", result.Action)
	}
	// growth plan: 20 credits at 135 = 2700 revenue, cost 600.
	if math.Abs(result.Revenue-2700) > 0.01 {
		t.Fatalf("revenue = %v, want 2700", result.Revenue)
	}
	if result.FormattedRevenue == "" || result.FormattedRevenue[len(result.FormattedRevenue)-2:] != "kr" {
		t.Fatalf("formatted revenue = %q, want kr suffix", result.FormattedRevenue)
	}

	var snapshots []models.ForecastSnapshot
	if errFind := conn.Where("customer_id = ?", customer.ID).Find(&snapshots).Error; errFind != nil {
		t.Fatalf("load snapshots: %v", errFind)
	}
	if len(snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snapshots))
	}
	if snapshots[0].RiskLevel != "critical" {
		t.Fatalf("snapshot risk = %s", snapshots[0].RiskLevel)
	}
}

func TestForecastCustomerWithoutEntriesIsLowRisk(t *testing.T) {
	conn := openTestDB(t)
	customer := seedForecastCustomer(t, conn, "Quiet", 50, 0)

	svc := NewService(conn, nil)
	result, errForecast := svc.ForecastCustomer(context.Background(), customer.ID)
	if errForecast != nil {
		t.Fatalf("forecast: %v", errForecast)
	}
	if result.RiskLevel != "low" || result.Action != "none" {
		t.Fatalf("risk = %s action = %s, want low/none", result.RiskLevel, result.Action)
	}
	if result.TotalCredits != 0 || result.DailyRate != 0 {
		t.Fatalf("expected zero totals, got %+v", result)
	}
	if result.DaysUntilDepleted != nil {
		t.Fatal("expected nil days until depleted")
	}
}

func TestForecastUnknownCustomer(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn, nil)
	if _, errForecast := svc.ForecastCustomer(context.Background(), 999); errForecast == nil {
		t.Fatal("expected error for unknown customer")
	}
}

func TestPortfolioAggregatesAndRanks(t *testing.T) {
	conn := openTestDB(t)
	healthy := seedForecastCustomer(t, conn, "Healthy", 45, 5)
	burning := seedForecastCustomer(t, conn, "Burning", 10, 45)

	svc := NewService(conn, nil)
	portfolio, errPortfolio := svc.Portfolio(context.Background(), 5)
	if errPortfolio != nil {
		t.Fatalf("portfolio: %v", errPortfolio)
	}

	if portfolio.Customers != 2 {
		t.Fatalf("customers = %d", portfolio.Customers)
	}
	total := 0
	for _, count := range portfolio.RiskCounts {
		total += count
	}
	if total != 2 {
		t.Fatalf("risk counts = %v", portfolio.RiskCounts)
	}

	if len(portfolio.TopByMargin) != 2 {
		t.Fatalf("top listing = %d rows", len(portfolio.TopByMargin))
	}
	// The heavy consumer generates the larger absolute margin.
	if portfolio.TopByMargin[0].CustomerID != burning.ID {
		t.Fatalf("top customer = %d, want %d", portfolio.TopByMargin[0].CustomerID, burning.ID)
	}
	if portfolio.TopByMargin[1].CustomerID != healthy.ID {
		t.Fatalf("second customer = %d, want %d", portfolio.TopByMargin[1].CustomerID, healthy.ID)
	}
}
