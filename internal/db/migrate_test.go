package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/gorm"
)

func TestMigrateSQLiteCreatesSchema(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{"customers", "credit_balances", "credit_packages", "time_entries", "invoices", "contracts", "forecast_snapshots", "settings"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}

	for _, column := range []string{"plan_id", "currency", "internal_hourly_cost"} {
		if !conn.Migrator().HasColumn("customers", column) {
			t.Fatalf("customers missing column %s", column)
		}
	}
}

func TestMigrateSeedsBalanceForExistingCustomers(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	customer := models.Customer{Name: "Acme", PlanID: "growth", Currency: "SEK"}
	if errCreate := conn.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}

	// Running migrations again backfills the balance row.
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("second migrate: %v", errMigrate)
	}

	var balance models.CreditBalance
	if errFind := conn.Where("customer_id = ?", customer.ID).First(&balance).Error; errFind != nil {
		t.Fatalf("expected seeded balance: %v", errFind)
	}
	if balance.PeriodEnd.Before(balance.PeriodStart) {
		t.Fatal("seeded period is inverted")
	}
}
