package models

import "time"

// ChargeSource identifies what funded a time entry's credits.
const (
	// ChargedToAllocation marks entries funded by the period allocation.
	ChargedToAllocation = "allocation"
	// ChargedToPackage marks entries funded by redeemed credit packages.
	ChargedToPackage = "package"
	// ChargedToOverdraft marks entries recorded past all available credits.
	ChargedToOverdraft = "overdraft"
)

// TimeEntry records delivered work against a customer.
type TimeEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;index"`        // Billed customer ID.
	Customer   *Customer `gorm:"foreignKey:CustomerID"` // Related customer record.

	UserID *uint64 `gorm:"index"`             // Member who logged the work.
	User   *User   `gorm:"foreignKey:UserID"` // Related user record.

	WorkedAt time.Time `gorm:"not null;index"` // Date the work was performed.

	Hours        float64 `gorm:"type:decimal(20,10);not null;default:0"` // Hours worked.
	Credits      float64 `gorm:"type:decimal(20,10);not null;default:0"` // Credits consumed.
	InternalCost float64 `gorm:"type:decimal(20,10);not null;default:0"` // Internal cost, base currency.

	Billable bool   `gorm:"not null;default:true"` // Whether the work is billable.
	Note     string `gorm:"type:text"`             // Free-form description.

	ChargedTo string `gorm:"type:varchar(32);not null;default:'allocation'"` // Funding source for the credits.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
