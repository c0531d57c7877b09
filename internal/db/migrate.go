package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/nordiqa/partnerops/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema and seeds required rows.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.Customer{},
		&models.CreditBalance{},
		&models.CreditPackage{},
		&models.TimeEntry{},
		&models.Invoice{},
		&models.Contract{},
		&models.ForecastSnapshot{},
		&models.Setting{},
	); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}

	return seedDefaults(conn)
}

// seedDefaults ensures each customer carries a credit balance row for the
// current period. New installs start empty otherwise.
func seedDefaults(conn *gorm.DB) error {
	var customers []models.Customer
	if errFind := conn.Select("id").Find(&customers).Error; errFind != nil {
		return fmt.Errorf("db: seed: %w", errFind)
	}

	now := time.Now().UTC()
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	for _, customer := range customers {
		var balance models.CreditBalance
		errFind := conn.Where("customer_id = ?", customer.ID).First(&balance).Error
		if errFind == nil {
			continue
		}
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			return fmt.Errorf("db: seed balance lookup: %w", errFind)
		}
		if errCreate := conn.Create(&models.CreditBalance{
			CustomerID:  customer.ID,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		}).Error; errCreate != nil {
			return fmt.Errorf("db: seed balance: %w", errCreate)
		}
	}
	return nil
}
