package consumption

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

func seedCustomer(t *testing.T, conn *gorm.DB, balance float64) models.Customer {
	t.Helper()
	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "SEK", InternalHourlyCost: 50, Active: true}
	if errCreate := conn.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}
	now := time.Now().UTC()
	row := models.CreditBalance{
		CustomerID:  customer.ID,
		Balance:     balance,
		Allocation:  balance,
		PeriodStart: now.AddDate(0, 0, -10),
		PeriodEnd:   now.AddDate(0, 0, 20),
	}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		t.Fatalf("create balance: %v", errCreate)
	}
	return customer
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestRecordDeductsAllocationFirst(t *testing.T) {
	conn := openTestDB(t)
	customer := seedCustomer(t, conn, 40)
	recorder := NewRecorder(conn)

	entry, errRecord := recorder.Record(context.Background(), Entry{
		CustomerID: customer.ID,
		WorkedAt:   time.Now(),
		Hours:      3,
		Credits:    12,
		Billable:   true,
		Note:       "sprint work",
	})
	if errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	if entry.ChargedTo != models.ChargedToAllocation {
		t.Fatalf("charged to = %s", entry.ChargedTo)
	}
	if !almostEqual(entry.InternalCost, 150) {
		t.Fatalf("internal cost = %v", entry.InternalCost)
	}

	var balance models.CreditBalance
	if errFind := conn.Where("customer_id = ?", customer.ID).Take(&balance).Error; errFind != nil {
		t.Fatalf("load balance: %v", errFind)
	}
	if !almostEqual(balance.Balance, 28) {
		t.Fatalf("balance = %v, want 28", balance.Balance)
	}
}

func TestRecordFallsBackToPackagesInExpiryOrder(t *testing.T) {
	conn := openTestDB(t)
	customer := seedCustomer(t, conn, 5)

	now := time.Now().UTC()
	soon := now.AddDate(0, 0, 7)
	later := now.AddDate(0, 1, 0)
	redeemed := now.AddDate(0, 0, -1)
	packages := []models.CreditPackage{
		{Name: "late", Serial: "pkg_LATE", Password: "x", Credits: 10, Remaining: 10, IsEnabled: true, RedeemedCustomerID: &customer.ID, RedeemedAt: &redeemed, ExpiresAt: &later},
		{Name: "soon", Serial: "pkg_SOON", Password: "x", Credits: 4, Remaining: 4, IsEnabled: true, RedeemedCustomerID: &customer.ID, RedeemedAt: &redeemed, ExpiresAt: &soon},
	}
	for i := range packages {
		if errCreate := conn.Create(&packages[i]).Error; errCreate != nil {
			t.Fatalf("create package: %v", errCreate)
		}
	}

	recorder := NewRecorder(conn)
	entry, errRecord := recorder.Record(context.Background(), Entry{
		CustomerID: customer.ID,
		Hours:      2,
		Credits:    11, // 5 from allocation, 4 from the soon package, 2 from the late one.
		Billable:   true,
	})
	if errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	if entry.ChargedTo != models.ChargedToPackage {
		t.Fatalf("charged to = %s", entry.ChargedTo)
	}

	var soonPkg, latePkg models.CreditPackage
	if errFind := conn.Where("serial = ?", "pkg_SOON").Take(&soonPkg).Error; errFind != nil {
		t.Fatalf("load soon package: %v", errFind)
	}
	if errFind := conn.Where("serial = ?", "pkg_LATE").Take(&latePkg).Error; errFind != nil {
		t.Fatalf("load late package: %v", errFind)
	}
	if !almostEqual(soonPkg.Remaining, 0) {
		t.Fatalf("soon remaining = %v, want 0", soonPkg.Remaining)
	}
	if !almostEqual(latePkg.Remaining, 8) {
		t.Fatalf("late remaining = %v, want 8", latePkg.Remaining)
	}
}

func TestRecordMarksOverdraft(t *testing.T) {
	conn := openTestDB(t)
	customer := seedCustomer(t, conn, 2)

	recorder := NewRecorder(conn)
	entry, errRecord := recorder.Record(context.Background(), Entry{
		CustomerID: customer.ID,
		Hours:      1,
		Credits:    10,
		Billable:   true,
	})
	if errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	if entry.ChargedTo != models.ChargedToOverdraft {
		t.Fatalf("charged to = %s, want overdraft", entry.ChargedTo)
	}

	var balance models.CreditBalance
	if errFind := conn.Where("customer_id = ?", customer.ID).Take(&balance).Error; errFind != nil {
		t.Fatalf("load balance: %v", errFind)
	}
	if !almostEqual(balance.Balance, 0) {
		t.Fatalf("balance = %v, want 0", balance.Balance)
	}
}

func TestRecordNonBillableSkipsDeduction(t *testing.T) {
	conn := openTestDB(t)
	customer := seedCustomer(t, conn, 20)

	recorder := NewRecorder(conn)
	entry, errRecord := recorder.Record(context.Background(), Entry{
		CustomerID: customer.ID,
		Hours:      4,
		Credits:    8,
		Billable:   false,
	})
	if errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	if entry.ChargedTo != models.ChargedToAllocation {
		t.Fatalf("charged to = %s", entry.ChargedTo)
	}

	var balance models.CreditBalance
	if errFind := conn.Where("customer_id = ?", customer.ID).Take(&balance).Error; errFind != nil {
		t.Fatalf("load balance: %v", errFind)
	}
	if !almostEqual(balance.Balance, 20) {
		t.Fatalf("balance = %v, want unchanged 20", balance.Balance)
	}
}

func TestRecordRejectsUnknownCustomer(t *testing.T) {
	conn := openTestDB(t)
	recorder := NewRecorder(conn)
	if _, errRecord := recorder.Record(context.Background(), Entry{CustomerID: 999, Credits: 1, Billable: true}); errRecord == nil {
		t.Fatal("expected error for unknown customer")
	}
}
