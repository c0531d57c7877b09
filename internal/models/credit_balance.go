package models

import "time"

// CreditBalance tracks a customer's credits for the current period.
type CreditBalance struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;uniqueIndex"`  // Owning customer ID.
	Customer   *Customer `gorm:"foreignKey:CustomerID"` // Related customer record.

	Balance    float64 `gorm:"type:decimal(20,10);not null;default:0"` // Remaining credits.
	Allocation float64 `gorm:"type:decimal(20,10);not null;default:0"` // Credits allocated for the period.

	PeriodStart time.Time `gorm:"not null"` // Current period start.
	PeriodEnd   time.Time `gorm:"not null"` // Current period end.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
