package models

import "time"

// Customer represents a billed tenant of the portal.
type Customer struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name    string `gorm:"type:text;not null;index"` // Customer display name.
	Company string `gorm:"type:text"`                // Legal company name.
	Email   string `gorm:"type:text"`                // Billing contact email.

	PlanID   string `gorm:"type:varchar(64);not null;default:'starter'"` // Pricing tier identifier.
	Currency string `gorm:"type:varchar(8);not null;default:'EUR'"`      // Reporting currency code.

	MonthlyCreditAllocation *float64 `gorm:"type:decimal(20,10)"` // Allocation override; nil uses the plan default.
	InternalHourlyCost      float64  `gorm:"type:decimal(20,10);not null;default:0"` // Internal delivery cost per hour, base currency.

	Active bool `gorm:"not null;default:true"` // Whether the customer is being served.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
