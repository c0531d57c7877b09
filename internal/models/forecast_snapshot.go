package models

import (
	"time"

	"gorm.io/datatypes"
)

// ForecastSnapshot persists a computed forecast for a customer period so
// dashboards can show the last known picture without recomputing.
type ForecastSnapshot struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;index"`        // Forecasted customer ID.
	Customer   *Customer `gorm:"foreignKey:CustomerID"` // Related customer record.

	PeriodStart time.Time `gorm:"not null;index"` // Reporting period start.
	PeriodEnd   time.Time `gorm:"not null"`       // Reporting period end.

	DailyRate        float64 `gorm:"type:decimal(20,10);not null;default:0"` // Observed daily burn.
	ProjectedTotal   float64 `gorm:"type:decimal(20,10);not null;default:0"` // Projected period consumption.
	ProjectedBalance float64 `gorm:"type:decimal(20,10);not null;default:0"` // Projected balance at period end.

	RiskLevel   string         `gorm:"type:varchar(16);not null;index"`  // Risk level name.
	RiskFactors datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Risk factor strings in JSON.
	Action      string         `gorm:"type:varchar(32);not null"`        // Recommended action identifier.

	Revenue       float64 `gorm:"type:decimal(20,10);not null;default:0"` // Period revenue, base currency.
	Margin        float64 `gorm:"type:decimal(20,10);not null;default:0"` // Period gross margin.
	MarginPercent float64 `gorm:"type:decimal(20,10);not null;default:0"` // Margin percentage.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
